package dto

import (
	"time"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// LoginRequest payload shared by both login surfaces.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Redirect  string       `json:"redirect"`
	User      UserResponse `json:"user"`
}

// MeResponse describes the current session.
type MeResponse struct {
	User      UserResponse        `json:"user"`
	SessionID string              `json:"session_id"`
	Surface   domain.EntrySurface `json:"surface"`
	ExpiresAt time.Time           `json:"expires_at"`
}
