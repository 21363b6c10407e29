package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleModerator grants catalog management access.
	RoleModerator Role = "moderator"
	// RoleMember grants standard user access.
	RoleMember Role = "member"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleModerator || r == RoleMember
}

// User represents an authenticated user account in the system.
type User struct {
	Entity
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"` // moderator or member
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// IsModerator returns true if the user can manage the shared catalog.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// Name returns the best available name to display for the user.
// Prefers DisplayName, falls back to email.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Session represents an active user session with refresh token.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
