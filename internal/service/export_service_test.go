package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vucems/campus-events-api/internal/models"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

type mockAttendeeLister struct {
	attendees []models.AttendeeDetail
}

func (m *mockAttendeeLister) ListAttendees(ctx context.Context, eventID string) ([]models.AttendeeDetail, error) {
	return m.attendees, nil
}

func newExportFixture() (*ExportService, *mockEventRepo) {
	event := &models.Event{ID: "ev-1", Title: "Hackathon", OrganizerID: "org-1", Capacity: 10}
	events := &mockEventRepo{byID: map[string]*models.Event{"ev-1": event}}
	attendees := &mockAttendeeLister{attendees: []models.AttendeeDetail{
		{
			Registration: models.Registration{ID: "reg-1", EventID: "ev-1", StudentID: "stu-1", RegisteredAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)},
			StudentName:  "Sam Student",
			StudentEmail: "sam@campus.edu",
		},
	}}
	return NewExportService(events, attendees, nil), events
}

func TestExportServiceAttendeesCSV(t *testing.T) {
	svc, _ := newExportFixture()

	result, err := svc.Attendees(context.Background(), "ev-1", "org-1", models.RoleOrganizer, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "attendees-ev-1.csv", result.Filename)

	body := string(result.Data)
	assert.True(t, strings.HasPrefix(body, "Name,Email,Registered At"))
	assert.Contains(t, body, "Sam Student,sam@campus.edu,2026-09-01 10:00")
}

func TestExportServiceAttendeesPDF(t *testing.T) {
	svc, _ := newExportFixture()

	result, err := svc.Attendees(context.Background(), "ev-1", "org-1", models.RoleOrganizer, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportServiceForbiddenForOtherOrganizer(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Attendees(context.Background(), "ev-1", "org-2", models.RoleOrganizer, "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestExportServiceAdminMayExportAnyEvent(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Attendees(context.Background(), "ev-1", "admin-1", models.RoleAdmin, "csv")
	require.NoError(t, err)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Attendees(context.Background(), "ev-1", "org-1", models.RoleOrganizer, "xml")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
