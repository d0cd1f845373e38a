package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vucems/campus-events-api/internal/middleware"
	"github.com/vucems/campus-events-api/internal/models"
	"github.com/vucems/campus-events-api/internal/service"
)

type fakeRegistrationStore struct {
	exists map[string]bool
	count  int
}

func (f *fakeRegistrationStore) Create(ctx context.Context, registration *models.Registration) error {
	return nil
}

func (f *fakeRegistrationStore) Exists(ctx context.Context, eventID, studentID string) (bool, error) {
	return f.exists[eventID+"/"+studentID], nil
}

func (f *fakeRegistrationStore) CountByEvent(ctx context.Context, eventID string) (int, error) {
	return f.count, nil
}

type fakeProfileStore struct{}

func (fakeProfileStore) FindByID(context.Context, string) (*models.Profile, error) {
	return nil, sql.ErrNoRows
}

type fakeFeedbackStore struct{}

func (fakeFeedbackStore) FindByEventAndStudent(context.Context, string, string) (*models.Feedback, error) {
	return nil, sql.ErrNoRows
}

func (fakeFeedbackStore) Upsert(context.Context, *models.Feedback) error { return nil }

func newEventHandler(events *fakeEventStore, counts map[string]int) *EventHandler {
	counter := &fakeCounter{counts: counts}
	registrations := &fakeRegistrationStore{}
	eventSvc := service.NewEventService(events, counter, nil, nil)
	registrationSvc := service.NewRegistrationService(events, registrations, fakeProfileStore{}, fakeFeedbackStore{}, nil, nil)
	feedbackSvc := service.NewFeedbackService(events, registrations, fakeFeedbackStore{}, nil, nil)
	exportSvc := service.NewExportService(events, fakeAttendeeStore{}, nil)
	return NewEventHandler(eventSvc, registrationSvc, feedbackSvc, exportSvc)
}

type fakeAttendeeStore struct{}

func (fakeAttendeeStore) ListAttendees(context.Context, string) ([]models.AttendeeDetail, error) {
	return nil, nil
}

func TestEventHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := &fakeEventStore{upcoming: []models.Event{
		{ID: "ev-1", Title: "Hackathon", Capacity: 2},
	}}
	handler := newEventHandler(events, map[string]int{"ev-1": 2})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/events", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, true, envelope.Data[0]["full"])
	assert.Equal(t, float64(2), envelope.Data[0]["registration_count"])
}

func TestEventHandlerListRejectsUnknownCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEventHandler(&fakeEventStore{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/events?category=party", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEventHandler(&fakeEventStore{byID: map[string]*models.Event{}}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/events/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventHandlerRegisterRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEventHandler(&fakeEventStore{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/events/ev-1/register", nil)
	c.Params = gin.Params{{Key: "id", Value: "ev-1"}}

	handler.Register(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventHandlerRegisterFullEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := &fakeEventStore{byID: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Status: models.EventStatusUpcoming, Capacity: 0},
	}}
	handler := newEventHandler(events, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/events/ev-1/register", nil)
	c.Params = gin.Params{{Key: "id", Value: "ev-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})

	handler.Register(c)

	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "EVENT_FULL", envelope.Error["code"])
}

func TestEventHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEventHandler(&fakeEventStore{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("not json"))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "org-1", Role: models.RoleOrganizer})

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerSubmitFeedbackNotRegistered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := &fakeEventStore{byID: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Status: models.EventStatusCompleted, Capacity: 10},
	}}
	handler := newEventHandler(events, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/events/ev-1/feedback", strings.NewReader(`{"rating":4}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "ev-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})

	handler.SubmitFeedback(c)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}
