package domain

import "time"

// EntrySurface identifies which login entry point opened a session.
type EntrySurface string

const (
	SurfaceStudent EntrySurface = "student"
	SurfaceStaff   EntrySurface = "staff"
)

// Session is an authenticated login, bound to one user and one surface.
type Session struct {
	ID        string
	UserID    string
	Role      Role
	Surface   EntrySurface
	IssuedAt  time.Time
	ExpiresAt time.Time
}
