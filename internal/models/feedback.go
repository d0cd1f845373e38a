package models

import "time"

// Feedback is a rating plus optional comment from a registered student.
// At most one row exists per (event_id, student_id); repeated submissions
// update the existing row.
type Feedback struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
