// Command seed creates the database schema and, optionally, demo accounts
// and events for local development.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vucems/campus-events-api/internal/models"
	"github.com/vucems/campus-events-api/internal/repository"
	"github.com/vucems/campus-events-api/pkg/config"
	"github.com/vucems/campus-events-api/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    last_login TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profiles (
    id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    full_name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_roles (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role TEXT NOT NULL CHECK (role IN ('student', 'organizer', 'admin')),
    UNIQUE (user_id, role)
);

CREATE TABLE IF NOT EXISTS events (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('academic', 'sports', 'cultural', 'workshop', 'seminar', 'other')),
    event_date DATE NOT NULL,
    event_time TEXT NOT NULL,
    venue TEXT NOT NULL,
    venue_type TEXT NOT NULL CHECK (venue_type IN ('physical', 'virtual')),
    capacity INTEGER NOT NULL CHECK (capacity >= 1),
    status TEXT NOT NULL DEFAULT 'upcoming' CHECK (status IN ('upcoming', 'completed')),
    organizer_id UUID NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS event_registrations (
    id UUID PRIMARY KEY,
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    student_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (event_id, student_id)
);

CREATE TABLE IF NOT EXISTS event_feedback (
    id UUID PRIMARY KEY,
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    student_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    comment TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (event_id, student_id)
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token TEXT NOT NULL UNIQUE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    revoked BOOLEAN NOT NULL DEFAULT FALSE,
    revoked_at TIMESTAMPTZ,
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_events_status_date ON events (status, event_date);
CREATE INDEX IF NOT EXISTS idx_registrations_student ON event_registrations (student_id);
`

func main() {
	var (
		withDemo bool
		timeout  time.Duration
	)
	flag.BoolVar(&withDemo, "demo", false, "seed demo accounts and events")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}
	log.Println("schema applied")

	if !withDemo {
		return
	}

	users := repository.NewUserRepository(db)
	events := repository.NewEventRepository(db)

	organizer, err := seedUser(ctx, users, "organizer@campus.edu", "Dana Organizer", models.RoleOrganizer)
	if err != nil {
		log.Fatalf("failed to seed organizer: %v", err)
	}
	if _, err := seedUser(ctx, users, "student@campus.edu", "Sam Student", models.RoleStudent); err != nil {
		log.Fatalf("failed to seed student: %v", err)
	}
	if _, err := seedUser(ctx, users, "admin@campus.edu", "Alex Admin", models.RoleAdmin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	demoEvents := []models.Event{
		{
			Title:       "Intro to Distributed Systems",
			Description: "Guest lecture covering consensus and replication basics.",
			Category:    models.CategorySeminar,
			EventDate:   time.Now().AddDate(0, 0, 14),
			EventTime:   "14:00",
			Venue:       "Auditorium B",
			VenueType:   models.VenuePhysical,
			Capacity:    120,
			Status:      models.EventStatusUpcoming,
			OrganizerID: organizer,
		},
		{
			Title:       "Campus Hackathon",
			Description: "24-hour build sprint, teams of up to four.",
			Category:    models.CategoryWorkshop,
			EventDate:   time.Now().AddDate(0, 1, 0),
			EventTime:   "09:00",
			Venue:       "Engineering Hall",
			VenueType:   models.VenuePhysical,
			Capacity:    80,
			Status:      models.EventStatusUpcoming,
			OrganizerID: organizer,
		},
	}
	for i := range demoEvents {
		if err := events.Create(ctx, &demoEvents[i]); err != nil {
			log.Fatalf("failed to seed event %q: %v", demoEvents[i].Title, err)
		}
	}
	log.Printf("seeded %d demo events", len(demoEvents))
}

func seedUser(ctx context.Context, users *repository.UserRepository, email, name string, role models.UserRole) (string, error) {
	if existing, err := users.FindByEmail(ctx, email); err == nil {
		return existing.ID, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     name,
		Active:       true,
	}
	if err := users.CreateWithProfileAndRole(ctx, user, role); err != nil {
		return "", err
	}
	log.Printf("seeded %s (%s)", email, role)
	return user.ID, nil
}
