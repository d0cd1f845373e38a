package service

import (
	"context"

	"github.com/vucems/campus-events-api/internal/models"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

type roleLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.RoleAssignment, error)
}

// RoleService resolves the single role assigned to a user. Zero rows and
// multiple rows are surfaced as distinct error kinds instead of being
// silently ignored.
type RoleService struct {
	roles roleLister
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles roleLister) *RoleService {
	return &RoleService{roles: roles}
}

// Resolve returns the user's role.
func (s *RoleService) Resolve(ctx context.Context, userID string) (models.UserRole, error) {
	assignments, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role assignment")
	}
	switch len(assignments) {
	case 0:
		return "", appErrors.ErrRoleNotFound
	case 1:
		return assignments[0].Role, nil
	default:
		return "", appErrors.ErrAmbiguousRole
	}
}
