package models

import "time"

// Profile is the display identity for a user, shown e.g. as an
// event's organizer name.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
