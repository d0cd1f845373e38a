package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/vucems/campus-events-api/internal/dto"
	"github.com/vucems/campus-events-api/internal/models"
	"github.com/vucems/campus-events-api/internal/repository"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

type registrationRepository interface {
	Create(ctx context.Context, registration *models.Registration) error
	Exists(ctx context.Context, eventID, studentID string) (bool, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
}

type profileFinder interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

type feedbackFinder interface {
	FindByEventAndStudent(ctx context.Context, eventID, studentID string) (*models.Feedback, error)
}

// RegistrationService owns the register workflow and the event detail view.
type RegistrationService struct {
	events        eventRepository
	registrations registrationRepository
	profiles      profileFinder
	feedback      feedbackFinder
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(
	events eventRepository,
	registrations registrationRepository,
	profiles profileFinder,
	feedback feedbackFinder,
	metrics *MetricsService,
	logger *zap.Logger,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		events:        events,
		registrations: registrations,
		profiles:      profiles,
		feedback:      feedback,
		metrics:       metrics,
		logger:        logger,
	}
}

// Context assembles the detail view for one event. studentID may be empty
// for anonymous callers, in which case Registered and Feedback stay zero.
func (s *RegistrationService) Context(ctx context.Context, eventID, studentID string) (*dto.EventContext, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	result := &dto.EventContext{Event: *event}

	// Organizer name is decorative; a missing profile must not sink the view.
	if profile, err := s.profiles.FindByID(ctx, event.OrganizerID); err == nil {
		result.OrganizerName = profile.FullName
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("failed to load organizer profile",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	count, err := s.registrations.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	result.RegistrationCount = count
	result.Full = count >= event.Capacity

	if studentID != "" {
		registered, err := s.registrations.Exists(ctx, eventID, studentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
		}
		result.Registered = registered

		if registered {
			feedback, err := s.feedback.FindByEventAndStudent(ctx, eventID, studentID)
			switch {
			case err == nil:
				result.Feedback = feedback
			case errors.Is(err, sql.ErrNoRows):
				// no feedback yet
			default:
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback")
			}
		}
	}

	return result, nil
}

// Register enrolls the student on an upcoming event. Capacity is checked
// before inserting; the unique constraint backstops concurrent duplicates.
func (s *RegistrationService) Register(ctx context.Context, eventID, studentID string) (*dto.EventContext, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.Status != models.EventStatusUpcoming {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "event is not open for registration")
	}

	registered, err := s.registrations.Exists(ctx, eventID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if registered {
		return nil, appErrors.Clone(appErrors.ErrAlreadyRegistered, "")
	}

	count, err := s.registrations.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	if count >= event.Capacity {
		return nil, appErrors.Clone(appErrors.ErrEventFull, "")
	}

	registration := &models.Registration{EventID: eventID, StudentID: studentID}
	if err := s.registrations.Create(ctx, registration); err != nil {
		if errors.Is(err, repository.ErrDuplicateRegistration) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyRegistered, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	s.logger.Info("student registered for event",
		zap.String("event_id", eventID),
		zap.String("student_id", studentID))

	return s.Context(ctx, eventID, studentID)
}
