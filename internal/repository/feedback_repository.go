package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vucems/campus-events-api/internal/models"
)

// FeedbackRepository handles persistence of event feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// FindByEventAndStudent returns the feedback row for the pair, or
// sql.ErrNoRows when none exists.
func (r *FeedbackRepository) FindByEventAndStudent(ctx context.Context, eventID, studentID string) (*models.Feedback, error) {
	const query = `SELECT id, event_id, student_id, rating, comment, created_at, updated_at
        FROM event_feedback WHERE event_id = $1 AND student_id = $2`
	var feedback models.Feedback
	if err := r.db.GetContext(ctx, &feedback, query, eventID, studentID); err != nil {
		return nil, err
	}
	return &feedback, nil
}

// Upsert inserts feedback for the (event, student) pair or, when a row
// already exists, replaces its rating and comment. A single statement so
// concurrent submissions cannot produce two rows.
func (r *FeedbackRepository) Upsert(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = now
	}
	feedback.UpdatedAt = now

	const query = `INSERT INTO event_feedback (id, event_id, student_id, rating, comment, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (event_id, student_id)
        DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		feedback.ID, feedback.EventID, feedback.StudentID, feedback.Rating, feedback.Comment, feedback.CreatedAt, feedback.UpdatedAt)
	if err := row.Scan(&feedback.ID, &feedback.CreatedAt); err != nil {
		return fmt.Errorf("upsert feedback: %w", err)
	}
	return nil
}
