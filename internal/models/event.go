package models

import "time"

// EventCategory enumerates the fixed set of event categories.
type EventCategory string

const (
	CategoryAcademic EventCategory = "academic"
	CategorySports   EventCategory = "sports"
	CategoryCultural EventCategory = "cultural"
	CategoryWorkshop EventCategory = "workshop"
	CategorySeminar  EventCategory = "seminar"
	CategoryOther    EventCategory = "other"
)

// Valid reports whether the category is one of the known values.
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryAcademic, CategorySports, CategoryCultural, CategoryWorkshop, CategorySeminar, CategoryOther:
		return true
	}
	return false
}

// VenueType distinguishes physical venues from virtual ones.
type VenueType string

const (
	VenuePhysical VenueType = "physical"
	VenueVirtual  VenueType = "virtual"
)

// Valid reports whether the venue type is a known value.
func (v VenueType) Valid() bool {
	return v == VenuePhysical || v == VenueVirtual
}

// EventStatus captures the event lifecycle.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
)

// Event represents a campus event stored in the events table.
type Event struct {
	ID          string        `db:"id" json:"id"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description"`
	Category    EventCategory `db:"category" json:"category"`
	EventDate   time.Time     `db:"event_date" json:"event_date"`
	EventTime   string        `db:"event_time" json:"event_time"`
	Venue       string        `db:"venue" json:"venue"`
	VenueType   VenueType     `db:"venue_type" json:"venue_type"`
	Capacity    int           `db:"capacity" json:"capacity"`
	Status      EventStatus   `db:"status" json:"status"`
	OrganizerID string        `db:"organizer_id" json:"organizer_id"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}
