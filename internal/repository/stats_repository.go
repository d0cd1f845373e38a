package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// StatsRepository serves the system-wide aggregates behind the admin
// dashboard.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountUsers returns the total number of user accounts.
func (r *StatsRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// CountEvents returns the total number of events.
func (r *StatsRepository) CountEvents(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// CountRegistrations returns the total number of registrations.
func (r *StatsRepository) CountRegistrations(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM event_registrations`); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// AverageRating returns the mean feedback rating, zero when no feedback
// exists.
func (r *StatsRepository) AverageRating(ctx context.Context) (float64, error) {
	var avg float64
	if err := r.db.GetContext(ctx, &avg, `SELECT COALESCE(AVG(rating), 0) FROM event_feedback`); err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}
