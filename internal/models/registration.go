package models

import "time"

// Registration links one student to one event. The database enforces
// uniqueness of the (event_id, student_id) pair.
type Registration struct {
	ID           string    `db:"id" json:"id"`
	EventID      string    `db:"event_id" json:"event_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// RegistrationDetail is a registration joined with its event row.
type RegistrationDetail struct {
	Registration
	Event Event `db:"event" json:"event"`
}

// AttendeeDetail is a registration joined with the student's profile,
// used for organizer roster exports.
type AttendeeDetail struct {
	Registration
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}
