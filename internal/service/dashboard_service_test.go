package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vucems/campus-events-api/internal/models"
	appErrors "github.com/vucems/campus-events-api/pkg/errors"
)

type mockStudentLister struct {
	details []models.RegistrationDetail
}

func (m *mockStudentLister) ListDetailByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error) {
	return m.details, nil
}

type mockStatsRepo struct {
	users         int
	events        int
	registrations int
	rating        float64
	statsCalls    int
}

func (m *mockStatsRepo) CountUsers(ctx context.Context) (int, error) {
	m.statsCalls++
	return m.users, nil
}

func (m *mockStatsRepo) CountEvents(ctx context.Context) (int, error) {
	return m.events, nil
}

func (m *mockStatsRepo) CountRegistrations(ctx context.Context) (int, error) {
	return m.registrations, nil
}

func (m *mockStatsRepo) AverageRating(ctx context.Context) (float64, error) {
	return m.rating, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, key string) error {
	delete(s.store, key)
	return nil
}

func roleFixture(role models.UserRole) *RoleService {
	return NewRoleService(&mockRoleLister{assignments: map[string][]models.RoleAssignment{
		"user-1": {{ID: "ra-1", UserID: "user-1", Role: role}},
	}})
}

func TestDashboardServiceStudentSplitsByStatus(t *testing.T) {
	details := []models.RegistrationDetail{
		{Registration: models.Registration{ID: "reg-1", EventID: "ev-1", StudentID: "user-1"}, Event: models.Event{ID: "ev-1", Title: "Hackathon", Status: models.EventStatusUpcoming, Capacity: 10}},
		{Registration: models.Registration{ID: "reg-2", EventID: "ev-2", StudentID: "user-1"}, Event: models.Event{ID: "ev-2", Title: "Old Seminar", Status: models.EventStatusCompleted, Capacity: 50}},
	}
	svc := NewDashboardService(
		roleFixture(models.RoleStudent),
		&mockEventRepo{},
		&mockCounter{counts: map[string]int{"ev-1": 10, "ev-2": 20}},
		&mockStudentLister{details: details},
		&mockStatsRepo{},
		nil, 0, nil,
	)

	dashboard, err := svc.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, dashboard.Role)
	require.NotNil(t, dashboard.Student)
	assert.Nil(t, dashboard.Organizer)
	assert.Nil(t, dashboard.Admin)

	require.Len(t, dashboard.Student.Registered, 1)
	assert.Equal(t, "ev-1", dashboard.Student.Registered[0].ID)
	assert.True(t, dashboard.Student.Registered[0].Full)
	require.Len(t, dashboard.Student.Past, 1)
	assert.Equal(t, "ev-2", dashboard.Student.Past[0].ID)
}

func TestDashboardServiceOrganizerSplitsByStatus(t *testing.T) {
	events := []models.Event{
		{ID: "ev-1", Title: "Next Workshop", Status: models.EventStatusUpcoming, Capacity: 30},
		{ID: "ev-2", Title: "Past Fair", Status: models.EventStatusCompleted, Capacity: 100},
	}
	svc := NewDashboardService(
		roleFixture(models.RoleOrganizer),
		&mockEventRepo{byOrganizer: events},
		&mockCounter{counts: map[string]int{"ev-1": 12}},
		&mockStudentLister{},
		&mockStatsRepo{},
		nil, 0, nil,
	)

	dashboard, err := svc.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, dashboard.Organizer)
	require.Len(t, dashboard.Organizer.Upcoming, 1)
	assert.Equal(t, 12, dashboard.Organizer.Upcoming[0].RegistrationCount)
	require.Len(t, dashboard.Organizer.Past, 1)
}

func TestDashboardServiceAdminRoundsRating(t *testing.T) {
	stats := &mockStatsRepo{users: 42, events: 7, registrations: 120, rating: 4.2615}
	svc := NewDashboardService(
		roleFixture(models.RoleAdmin),
		&mockEventRepo{},
		&mockCounter{},
		&mockStudentLister{},
		stats,
		nil, 0, nil,
	)

	dashboard, err := svc.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, dashboard.Admin)
	assert.Equal(t, 42, dashboard.Admin.TotalUsers)
	assert.Equal(t, 7, dashboard.Admin.TotalEvents)
	assert.Equal(t, 120, dashboard.Admin.TotalRegistrations)
	assert.Equal(t, 4.3, dashboard.Admin.AverageRating)
}

func TestDashboardServiceAdminStatsCached(t *testing.T) {
	stats := &mockStatsRepo{users: 10, rating: 3.5}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, nil)
	svc := NewDashboardService(
		roleFixture(models.RoleAdmin),
		&mockEventRepo{},
		&mockCounter{},
		&mockStudentLister{},
		stats,
		cacheSvc, time.Minute, nil,
	)

	first, err := svc.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.statsCalls)

	second, err := svc.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.statsCalls)
	assert.Equal(t, first.Admin, second.Admin)
}

func TestDashboardServiceNoRole(t *testing.T) {
	svc := NewDashboardService(
		NewRoleService(&mockRoleLister{}),
		&mockEventRepo{},
		&mockCounter{},
		&mockStudentLister{},
		&mockStatsRepo{},
		nil, 0, nil,
	)

	_, err := svc.Load(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRoleNotFound.Code, appErrors.FromError(err).Code)
}
