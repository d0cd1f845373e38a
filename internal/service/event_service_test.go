package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vucems/campus-events-api/internal/models"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

type mockEventRepo struct {
	upcoming    []models.Event
	byOrganizer []models.Event
	byID        map[string]*models.Event
	created     []*models.Event
	statusSets  map[string]models.EventStatus
	listErr     error
	createErr   error
}

func (m *mockEventRepo) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.upcoming, nil
}

func (m *mockEventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error) {
	return m.byOrganizer, nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	event, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return event, nil
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, event)
	return nil
}

func (m *mockEventRepo) UpdateStatus(ctx context.Context, id string, status models.EventStatus) error {
	if m.statusSets == nil {
		m.statusSets = make(map[string]models.EventStatus)
	}
	m.statusSets[id] = status
	return nil
}

type mockCounter struct {
	counts map[string]int
	err    error
}

func (m *mockCounter) CountByEvents(ctx context.Context, eventIDs []string) (map[string]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make(map[string]int, len(eventIDs))
	for _, id := range eventIDs {
		result[id] = m.counts[id]
	}
	return result, nil
}

func browseFixtures() []models.Event {
	return []models.Event{
		{ID: "ev-1", Title: "Robotics Workshop", Description: "Hands-on Arduino session", Category: models.CategoryWorkshop},
		{ID: "ev-2", Title: "Spring Concert", Description: "Live music on the quad", Category: models.CategoryCultural},
		{ID: "ev-3", Title: "ML Seminar", Description: "Workshop on neural networks", Category: models.CategorySeminar},
	}
}

func TestFilterEventsSearchIsCaseInsensitive(t *testing.T) {
	events := browseFixtures()

	matched := FilterEvents(events, BrowseFilter{Search: "WORKSHOP"})
	require.Len(t, matched, 2)
	assert.Equal(t, "ev-1", matched[0].ID)
	assert.Equal(t, "ev-3", matched[1].ID)

	matched = FilterEvents(events, BrowseFilter{Search: "concert"})
	require.Len(t, matched, 1)
	assert.Equal(t, "ev-2", matched[0].ID)
}

func TestFilterEventsSearchCoversDescription(t *testing.T) {
	matched := FilterEvents(browseFixtures(), BrowseFilter{Search: "neural"})
	require.Len(t, matched, 1)
	assert.Equal(t, "ev-3", matched[0].ID)
}

func TestFilterEventsCommute(t *testing.T) {
	events := browseFixtures()
	filter := BrowseFilter{Search: "workshop", Category: models.CategorySeminar}

	searchFirst := FilterEvents(FilterEvents(events, BrowseFilter{Search: filter.Search}), BrowseFilter{Category: filter.Category})
	categoryFirst := FilterEvents(FilterEvents(events, BrowseFilter{Category: filter.Category}), BrowseFilter{Search: filter.Search})
	combined := FilterEvents(events, filter)

	assert.Equal(t, searchFirst, categoryFirst)
	assert.Equal(t, searchFirst, combined)
	require.Len(t, combined, 1)
	assert.Equal(t, "ev-3", combined[0].ID)
}

func TestEventServiceBrowseDecoratesCounts(t *testing.T) {
	events := []models.Event{
		{ID: "ev-1", Title: "Hackathon", Capacity: 2},
		{ID: "ev-2", Title: "Seminar", Capacity: 100},
	}
	repo := &mockEventRepo{upcoming: events}
	counter := &mockCounter{counts: map[string]int{"ev-1": 2, "ev-2": 10}}
	svc := NewEventService(repo, counter, nil, nil)

	summaries, err := svc.Browse(context.Background(), BrowseFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 2, summaries[0].RegistrationCount)
	assert.True(t, summaries[0].Full)
	assert.Equal(t, 10, summaries[1].RegistrationCount)
	assert.False(t, summaries[1].Full)
}

func TestEventServiceBrowseRepoError(t *testing.T) {
	repo := &mockEventRepo{listErr: errors.New("boom")}
	svc := NewEventService(repo, &mockCounter{}, nil, nil)

	_, err := svc.Browse(context.Background(), BrowseFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func validCreateRequest() CreateEventRequest {
	return CreateEventRequest{
		Title:       "Career Fair",
		Description: "Meet recruiters from local companies",
		Category:    "other",
		EventDate:   "2026-10-15",
		EventTime:   "10:00",
		Venue:       "Main Quad",
		VenueType:   "physical",
		Capacity:    300,
	}
}

func TestEventServiceCreate(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, &mockCounter{}, nil, nil)

	event, err := svc.Create(context.Background(), "org-1", validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusUpcoming, event.Status)
	assert.Equal(t, "org-1", event.OrganizerID)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), event.EventDate)
	require.Len(t, repo.created, 1)
}

func TestEventServiceCreateRejectsInvalidPayloads(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, &mockCounter{}, nil, nil)

	cases := map[string]func(*CreateEventRequest){
		"unknown category": func(r *CreateEventRequest) { r.Category = "party" },
		"bad date":         func(r *CreateEventRequest) { r.EventDate = "15/10/2026" },
		"bad time":         func(r *CreateEventRequest) { r.EventTime = "10am" },
		"zero capacity":    func(r *CreateEventRequest) { r.Capacity = 0 },
		"bad venue type":   func(r *CreateEventRequest) { r.VenueType = "hybrid" },
		"missing title":    func(r *CreateEventRequest) { r.Title = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validCreateRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), "org-1", req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestEventServiceComplete(t *testing.T) {
	event := &models.Event{ID: "ev-1", Status: models.EventStatusUpcoming, OrganizerID: "org-1"}
	repo := &mockEventRepo{byID: map[string]*models.Event{"ev-1": event}}
	svc := NewEventService(repo, &mockCounter{}, nil, nil)

	completed, err := svc.Complete(context.Background(), "ev-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, completed.Status)
	assert.Equal(t, models.EventStatusCompleted, repo.statusSets["ev-1"])
}

func TestEventServiceCompleteForbiddenForNonOwner(t *testing.T) {
	event := &models.Event{ID: "ev-1", Status: models.EventStatusUpcoming, OrganizerID: "org-1"}
	repo := &mockEventRepo{byID: map[string]*models.Event{"ev-1": event}}
	svc := NewEventService(repo, &mockCounter{}, nil, nil)

	_, err := svc.Complete(context.Background(), "ev-1", "org-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEventServiceCompleteRequiresUpcoming(t *testing.T) {
	event := &models.Event{ID: "ev-1", Status: models.EventStatusCompleted, OrganizerID: "org-1"}
	repo := &mockEventRepo{byID: map[string]*models.Event{"ev-1": event}}
	svc := NewEventService(repo, &mockCounter{}, nil, nil)

	_, err := svc.Complete(context.Background(), "ev-1", "org-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
