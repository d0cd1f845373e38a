package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vucems/campus-events-api/internal/dto"
	"github.com/vucems/campus-events-api/internal/models"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

type eventRepository interface {
	ListUpcoming(ctx context.Context) ([]models.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, id string, status models.EventStatus) error
}

type registrationCounter interface {
	CountByEvents(ctx context.Context, eventIDs []string) (map[string]int, error)
}

// CreateEventRequest describes event creation input.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required,oneof=academic sports cultural workshop seminar other"`
	EventDate   string `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventTime   string `json:"event_time" validate:"required,datetime=15:04"`
	Venue       string `json:"venue" validate:"required"`
	VenueType   string `json:"venue_type" validate:"required,oneof=physical virtual"`
	Capacity    int    `json:"capacity" validate:"required,min=1"`
}

// BrowseFilter captures browse-view filtering. Category is exact match,
// Search is a case-insensitive substring over title and description; the
// two filters commute.
type BrowseFilter struct {
	Search   string
	Category models.EventCategory
}

// EventService orchestrates event browse, creation, and lifecycle.
type EventService struct {
	repo      eventRepository
	counts    registrationCounter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs EventService.
func NewEventService(repo eventRepository, counts registrationCounter, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, counts: counts, validator: validate, logger: logger}
}

// Browse returns upcoming events ordered by date ascending, filtered and
// decorated with registration counts.
func (s *EventService) Browse(ctx context.Context, filter BrowseFilter) ([]dto.EventSummary, error) {
	events, err := s.repo.ListUpcoming(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	events = FilterEvents(events, filter)

	summaries, err := s.decorate(ctx, events)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Get returns a single event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// Create validates and persists a new event. The creating user becomes the
// organizer and status is fixed to upcoming.
func (s *EventService) Create(ctx context.Context, organizerID string, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event_date must be YYYY-MM-DD")
	}

	event := &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    models.EventCategory(req.Category),
		EventDate:   eventDate,
		EventTime:   req.EventTime,
		Venue:       strings.TrimSpace(req.Venue),
		VenueType:   models.VenueType(req.VenueType),
		Capacity:    req.Capacity,
		Status:      models.EventStatusUpcoming,
		OrganizerID: organizerID,
	}
	if event.Title == "" || event.Description == "" || event.Venue == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title, description and venue must not be blank")
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return event, nil
}

// Complete transitions an upcoming event to completed. Only the owning
// organizer may do so.
func (s *EventService) Complete(ctx context.Context, eventID, callerID string) (*models.Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the organizer may complete this event")
	}
	if event.Status != models.EventStatusUpcoming {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "event is not upcoming")
	}
	if err := s.repo.UpdateStatus(ctx, eventID, models.EventStatusCompleted); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event status")
	}
	event.Status = models.EventStatusCompleted
	return event, nil
}

func (s *EventService) decorate(ctx context.Context, events []models.Event) ([]dto.EventSummary, error) {
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

// FilterEvents applies the browse filter in memory. An event matches the
// search when either title or description contains the query, ignoring case.
func FilterEvents(events []models.Event, filter BrowseFilter) []models.Event {
	filtered := events

	if query := strings.ToLower(strings.TrimSpace(filter.Search)); query != "" {
		matched := make([]models.Event, 0, len(filtered))
		for _, e := range filtered {
			if strings.Contains(strings.ToLower(e.Title), query) ||
				strings.Contains(strings.ToLower(e.Description), query) {
				matched = append(matched, e)
			}
		}
		filtered = matched
	}

	if filter.Category != "" {
		matched := make([]models.Event, 0, len(filtered))
		for _, e := range filtered {
			if e.Category == filter.Category {
				matched = append(matched, e)
			}
		}
		filtered = matched
	}

	return filtered
}
