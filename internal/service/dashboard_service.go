package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/vucems/campus-events-api/internal/dto"
	"github.com/vucems/campus-events-api/internal/models"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

const adminStatsCacheKey = "dashboard:admin:stats"

type studentRegistrationLister interface {
	ListDetailByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error)
}

type statsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountEvents(ctx context.Context) (int, error)
	CountRegistrations(ctx context.Context) (int, error)
	AverageRating(ctx context.Context) (float64, error)
}

// DashboardService dispatches on the caller's resolved role and assembles
// the matching dashboard variant.
type DashboardService struct {
	roles         *RoleService
	events        eventRepository
	counts        registrationCounter
	registrations studentRegistrationLister
	stats         statsRepository
	cache         *CacheService
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewDashboardService constructs DashboardService. cache may be nil,
// disabling admin stats caching.
func NewDashboardService(
	roles *RoleService,
	events eventRepository,
	counts registrationCounter,
	registrations studentRegistrationLister,
	stats statsRepository,
	cache *CacheService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		roles:         roles,
		events:        events,
		counts:        counts,
		registrations: registrations,
		stats:         stats,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

// Load resolves the caller's role and returns the variant for it. A user
// with no role assignment gets ErrRoleNotFound rather than an empty page.
func (s *DashboardService) Load(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	role, err := s.roles.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleStudent:
		student, err := s.loadStudent(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &dto.DashboardResponse{Role: role, Student: student}, nil
	case models.RoleOrganizer:
		organizer, err := s.loadOrganizer(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &dto.DashboardResponse{Role: role, Organizer: organizer}, nil
	case models.RoleAdmin:
		admin, err := s.loadAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return &dto.DashboardResponse{Role: role, Admin: admin}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrRoleNotFound, "unknown role assignment")
	}
}

func (s *DashboardService) loadStudent(ctx context.Context, studentID string) (*dto.StudentDashboard, error) {
	details, err := s.registrations.ListDetailByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}

	events := make([]models.Event, len(details))
	for i, d := range details {
		events[i] = d.Event
	}
	summaries, err := s.summarize(ctx, events)
	if err != nil {
		return nil, err
	}

	dashboard := &dto.StudentDashboard{
		Registered: []dto.EventSummary{},
		Past:       []dto.EventSummary{},
	}
	for _, summary := range summaries {
		if summary.Status == models.EventStatusCompleted {
			dashboard.Past = append(dashboard.Past, summary)
		} else {
			dashboard.Registered = append(dashboard.Registered, summary)
		}
	}
	return dashboard, nil
}

func (s *DashboardService) loadOrganizer(ctx context.Context, organizerID string) (*dto.OrganizerDashboard, error) {
	events, err := s.events.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load organizer events")
	}
	summaries, err := s.summarize(ctx, events)
	if err != nil {
		return nil, err
	}

	dashboard := &dto.OrganizerDashboard{
		Upcoming: []dto.EventSummary{},
		Past:     []dto.EventSummary{},
	}
	for _, summary := range summaries {
		if summary.Status == models.EventStatusCompleted {
			dashboard.Past = append(dashboard.Past, summary)
		} else {
			dashboard.Upcoming = append(dashboard.Upcoming, summary)
		}
	}
	return dashboard, nil
}

func (s *DashboardService) loadAdmin(ctx context.Context) (*dto.AdminDashboard, error) {
	if s.cache != nil {
		var cached dto.AdminDashboard
		if s.cache.Get(ctx, adminStatsCacheKey, &cached) {
			return &cached, nil
		}
	}

	users, err := s.stats.CountUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	events, err := s.stats.CountEvents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count events")
	}
	registrations, err := s.stats.CountRegistrations(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	rating, err := s.stats.AverageRating(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to average ratings")
	}

	dashboard := &dto.AdminDashboard{
		TotalUsers:         users,
		TotalEvents:        events,
		TotalRegistrations: registrations,
		AverageRating:      math.Round(rating*10) / 10,
	}

	if s.cache != nil {
		s.cache.Set(ctx, adminStatsCacheKey, dashboard, s.cacheTTL)
	}
	return dashboard, nil
}

func (s *DashboardService) summarize(ctx context.Context, events []models.Event) ([]dto.EventSummary, error) {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	counts, err := s.counts.CountByEvents(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}

	summaries := make([]dto.EventSummary, len(events))
	for i, e := range events {
		count := counts[e.ID]
		summaries[i] = dto.EventSummary{
			Event:             e,
			RegistrationCount: count,
			Full:              count >= e.Capacity,
		}
	}
	return summaries, nil
}
