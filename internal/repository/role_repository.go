package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vucems/campus-events-api/internal/models"
)

// RoleRepository handles persistence of role assignments.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository constructs the repository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// ListByUser returns every role row assigned to the user. The lookup
// expects at most one; callers decide how to treat zero or multiple rows.
func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]models.RoleAssignment, error) {
	const query = `SELECT id, user_id, role FROM user_roles WHERE user_id = $1`
	var assignments []models.RoleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	return assignments, nil
}

// Create persists a role assignment for a user.
func (r *RoleRepository) Create(ctx context.Context, assignment *models.RoleAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	const query = `INSERT INTO user_roles (id, user_id, role) VALUES (:id, :user_id, :role)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create role assignment: %w", err)
	}
	return nil
}
