package dto

import "github.com/vucems/campus-events-api/internal/models"

// EventSummary is an event row decorated with its live registration count.
type EventSummary struct {
	models.Event
	RegistrationCount int  `json:"registration_count"`
	Full              bool `json:"full"`
}

// EventContext is the detail-view payload: the event, its organizer's
// display name, the live count and, for authenticated callers, whether
// they are registered and any feedback they left.
type EventContext struct {
	Event             models.Event     `json:"event"`
	OrganizerName     string           `json:"organizer_name,omitempty"`
	RegistrationCount int              `json:"registration_count"`
	Full              bool             `json:"full"`
	Registered        bool             `json:"registered"`
	Feedback          *models.Feedback `json:"feedback,omitempty"`
}
