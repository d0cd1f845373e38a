package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vucems/campus-events-api/internal/models"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// ErrDuplicateRegistration is returned when the (event, student) pair
// already has a registration row.
var ErrDuplicateRegistration = errors.New("registration already exists for event and student")

// RegistrationRepository handles persistence of event registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create persists a new registration. The unique constraint on
// (event_id, student_id) is the authoritative duplicate guard.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if registration.RegisteredAt.IsZero() {
		registration.RegisteredAt = time.Now().UTC()
	}
	const query = `INSERT INTO event_registrations (id, event_id, student_id, registered_at)
        VALUES (:id, :event_id, :student_id, :registered_at)`
	if _, err := r.db.NamedExecContext(ctx, query, registration); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateRegistration
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// Exists reports whether the student holds a registration for the event.
func (r *RegistrationRepository) Exists(ctx context.Context, eventID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM event_registrations WHERE event_id = $1 AND student_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, eventID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return true, nil
}

// CountByEvent returns the registration count for a single event.
func (r *RegistrationRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	const query = `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, eventID); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// CountByEvents returns a mapping of event id to registration count for the
// given ids in one grouped query. Ids with no registrations map to zero.
func (r *RegistrationRepository) CountByEvents(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(eventIDs))
	for _, id := range eventIDs {
		counts[id] = 0
	}
	if len(eventIDs) == 0 {
		return counts, nil
	}

	query, args, err := sqlx.In(`SELECT event_id, COUNT(*) AS count FROM event_registrations WHERE event_id IN (?) GROUP BY event_id`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count registrations by event: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		var count int
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, fmt.Errorf("scan registration count: %w", err)
		}
		counts[eventID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registration counts: %w", err)
	}
	return counts, nil
}

// ListDetailByStudent returns the student's registrations joined with their
// events, newest registration first.
func (r *RegistrationRepository) ListDetailByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error) {
	const query = `SELECT r.id, r.event_id, r.student_id, r.registered_at,
        e.id AS "event.id", e.title AS "event.title", e.description AS "event.description",
        e.category AS "event.category", e.event_date AS "event.event_date", e.event_time AS "event.event_time",
        e.venue AS "event.venue", e.venue_type AS "event.venue_type", e.capacity AS "event.capacity",
        e.status AS "event.status", e.organizer_id AS "event.organizer_id", e.created_at AS "event.created_at"
        FROM event_registrations r
        JOIN events e ON e.id = r.event_id
        WHERE r.student_id = $1
        ORDER BY r.registered_at DESC`
	var details []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID); err != nil {
		return nil, fmt.Errorf("list student registrations: %w", err)
	}
	return details, nil
}

// ListAttendees returns the event's registrations joined with student
// profiles and account emails, ordered by registration time.
func (r *RegistrationRepository) ListAttendees(ctx context.Context, eventID string) ([]models.AttendeeDetail, error) {
	const query = `SELECT r.id, r.event_id, r.student_id, r.registered_at,
        p.full_name AS student_name, u.email AS student_email
        FROM event_registrations r
        JOIN profiles p ON p.id = r.student_id
        JOIN users u ON u.id = r.student_id
        WHERE r.event_id = $1
        ORDER BY r.registered_at ASC`
	var attendees []models.AttendeeDetail
	if err := r.db.SelectContext(ctx, &attendees, query, eventID); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return attendees, nil
}
