package dto

import "github.com/vucems/campus-events-api/internal/models"

// DashboardResponse is a tagged union over the role variants: exactly one
// of the variant sections is populated, matching the Role field.
type DashboardResponse struct {
	Role      models.UserRole     `json:"role"`
	Student   *StudentDashboard   `json:"student,omitempty"`
	Organizer *OrganizerDashboard `json:"organizer,omitempty"`
	Admin     *AdminDashboard     `json:"admin,omitempty"`
}

// StudentDashboard lists the caller's registered upcoming events and
// attended past events, newest registration first.
type StudentDashboard struct {
	Registered []EventSummary `json:"registered"`
	Past       []EventSummary `json:"past"`
}

// OrganizerDashboard splits the caller's own events by lifecycle status,
// newest created first.
type OrganizerDashboard struct {
	Upcoming []EventSummary `json:"upcoming"`
	Past     []EventSummary `json:"past"`
}

// AdminDashboard carries system-wide aggregate statistics.
type AdminDashboard struct {
	TotalUsers         int     `json:"total_users"`
	TotalEvents        int     `json:"total_events"`
	TotalRegistrations int     `json:"total_registrations"`
	AverageRating      float64 `json:"average_rating"`
}
