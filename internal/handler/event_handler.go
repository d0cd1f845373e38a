package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vucems/campus-events-api/internal/models"
	"github.com/vucems/campus-events-api/internal/service"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
	"github.com/vucems/campus-events-api/pkg/response"
)

// EventHandler wires HTTP endpoints to the event, registration, feedback
// and export services.
type EventHandler struct {
	events        *service.EventService
	registrations *service.RegistrationService
	feedback      *service.FeedbackService
	exports       *service.ExportService
}

// NewEventHandler creates a new handler.
func NewEventHandler(
	events *service.EventService,
	registrations *service.RegistrationService,
	feedback *service.FeedbackService,
	exports *service.ExportService,
) *EventHandler {
	return &EventHandler{
		events:        events,
		registrations: registrations,
		feedback:      feedback,
		exports:       exports,
	}
}

// List godoc
// @Summary Browse upcoming events
// @Description List upcoming events ordered by date, with optional search and category filters
// @Tags Events
// @Produce json
// @Param search query string false "Case-insensitive substring over title and description"
// @Param category query string false "Exact category filter"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	filter := service.BrowseFilter{
		Search:   c.Query("search"),
		Category: models.EventCategory(c.Query("category")),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown category"))
		return
	}

	events, err := h.events.Browse(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, events, nil)
}

// Get godoc
// @Summary Event detail
// @Description Return an event with organizer name, live count and, for authenticated callers, registration and feedback state
// @Tags Events
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	studentID := ""
	if claims, ok := claimsFromContext(c); ok {
		studentID = claims.UserID
	}

	detail, err := h.registrations.Context(c.Request.Context(), c.Param("id"), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create event
// @Description Create an upcoming event owned by the caller
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	event, err := h.events.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// Complete godoc
// @Summary Complete event
// @Description Transition an upcoming event to completed; organizer only
// @Tags Events
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /events/{id}/complete [post]
func (h *EventHandler) Complete(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	event, err := h.events.Complete(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, event, nil)
}

// Register godoc
// @Summary Register for event
// @Description Enroll the caller on an upcoming event with free capacity
// @Tags Registrations
// @Produce json
// @Param id path string true "Event id"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /events/{id}/register [post]
func (h *EventHandler) Register(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.registrations.Register(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, detail)
}

// SubmitFeedback godoc
// @Summary Submit event feedback
// @Description Save or replace the caller's rating and comment for an event they attended
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Event id"
// @Param payload body service.SubmitFeedbackRequest true "Feedback payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /events/{id}/feedback [put]
func (h *EventHandler) SubmitFeedback(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}

	feedback, err := h.feedback.Submit(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, feedback, nil)
}

// ExportAttendees godoc
// @Summary Export attendee roster
// @Description Download the event's attendee list as CSV or PDF
// @Tags Events
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Event id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id}/attendees/export [get]
func (h *EventHandler) ExportAttendees(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", "csv")
	result, err := h.exports.Attendees(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
