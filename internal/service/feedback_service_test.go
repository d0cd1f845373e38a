package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vucems/campus-events-api/internal/models"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

type mockFeedbackRepo struct {
	rows    map[string]*models.Feedback
	upserts int
}

func (m *mockFeedbackRepo) FindByEventAndStudent(ctx context.Context, eventID, studentID string) (*models.Feedback, error) {
	feedback, ok := m.rows[regKey(eventID, studentID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return feedback, nil
}

func (m *mockFeedbackRepo) Upsert(ctx context.Context, feedback *models.Feedback) error {
	m.upserts++
	if m.rows == nil {
		m.rows = make(map[string]*models.Feedback)
	}
	key := regKey(feedback.EventID, feedback.StudentID)
	if existing, ok := m.rows[key]; ok {
		feedback.ID = existing.ID
		feedback.CreatedAt = existing.CreatedAt
	} else if feedback.ID == "" {
		feedback.ID = "fb-1"
	}
	m.rows[key] = feedback
	return nil
}

func newFeedbackFixture(registered bool) (*FeedbackService, *mockFeedbackRepo) {
	event := &models.Event{ID: "ev-1", Status: models.EventStatusCompleted, Capacity: 10}
	events := &mockEventRepo{byID: map[string]*models.Event{"ev-1": event}}
	registrations := &mockRegistrationRepo{}
	if registered {
		registrations.exists = map[string]bool{regKey("ev-1", "stu-1"): true}
	}
	repo := &mockFeedbackRepo{}
	return NewFeedbackService(events, registrations, repo, nil, nil), repo
}

func TestFeedbackServiceSubmit(t *testing.T) {
	svc, repo := newFeedbackFixture(true)

	feedback, err := svc.Submit(context.Background(), "ev-1", "stu-1", SubmitFeedbackRequest{Rating: 5, Comment: "  great event  "})
	require.NoError(t, err)
	assert.Equal(t, 5, feedback.Rating)
	require.NotNil(t, feedback.Comment)
	assert.Equal(t, "great event", *feedback.Comment)
	assert.Equal(t, 1, repo.upserts)
}

func TestFeedbackServiceResubmitReplaces(t *testing.T) {
	svc, repo := newFeedbackFixture(true)

	first, err := svc.Submit(context.Background(), "ev-1", "stu-1", SubmitFeedbackRequest{Rating: 5})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), "ev-1", "stu-1", SubmitFeedbackRequest{Rating: 2, Comment: "changed my mind"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Rating)
	assert.Equal(t, 2, repo.upserts)
	require.Len(t, repo.rows, 1)
	assert.Equal(t, 2, repo.rows[regKey("ev-1", "stu-1")].Rating)
}

func TestFeedbackServiceRejectsOutOfRangeRating(t *testing.T) {
	svc, repo := newFeedbackFixture(true)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), "ev-1", "stu-1", SubmitFeedbackRequest{Rating: rating})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	assert.Equal(t, 0, repo.upserts)
}

func TestFeedbackServiceRequiresRegistration(t *testing.T) {
	svc, repo := newFeedbackFixture(false)

	_, err := svc.Submit(context.Background(), "ev-1", "stu-1", SubmitFeedbackRequest{Rating: 4})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotRegistered.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, repo.upserts)
}

func TestFeedbackServiceUnknownEvent(t *testing.T) {
	svc, _ := newFeedbackFixture(true)

	_, err := svc.Submit(context.Background(), "missing", "stu-1", SubmitFeedbackRequest{Rating: 4})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFeedbackServiceBlankCommentStoredAsNull(t *testing.T) {
	svc, _ := newFeedbackFixture(true)

	feedback, err := svc.Submit(context.Background(), "ev-1", "stu-1", SubmitFeedbackRequest{Rating: 3, Comment: "   "})
	require.NoError(t, err)
	assert.Nil(t, feedback.Comment)
}
