package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vucems/campus-events-api/internal/models"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

type feedbackRepository interface {
	FindByEventAndStudent(ctx context.Context, eventID, studentID string) (*models.Feedback, error)
	Upsert(ctx context.Context, feedback *models.Feedback) error
}

// SubmitFeedbackRequest is the feedback submission payload.
type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// FeedbackService owns feedback submission. Resubmitting replaces the
// student's previous rating and comment for the event.
type FeedbackService struct {
	events        eventRepository
	registrations registrationRepository
	feedback      feedbackRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewFeedbackService constructs FeedbackService.
func NewFeedbackService(
	events eventRepository,
	registrations registrationRepository,
	feedback feedbackRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		events:        events,
		registrations: registrations,
		feedback:      feedback,
		validator:     validate,
		logger:        logger,
	}
}

// Submit validates and stores the student's feedback for an event they are
// registered on.
func (s *FeedbackService) Submit(ctx context.Context, eventID, studentID string, req SubmitFeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	registered, err := s.registrations.Exists(ctx, eventID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if !registered {
		return nil, appErrors.Clone(appErrors.ErrNotRegistered, "")
	}

	feedback := &models.Feedback{
		EventID:   eventID,
		StudentID: studentID,
		Rating:    req.Rating,
	}
	if comment := strings.TrimSpace(req.Comment); comment != "" {
		feedback.Comment = &comment
	}

	if err := s.feedback.Upsert(ctx, feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save feedback")
	}

	s.logger.Info("feedback saved",
		zap.String("event_id", eventID),
		zap.String("student_id", studentID),
		zap.Int("rating", req.Rating))
	return feedback, nil
}
