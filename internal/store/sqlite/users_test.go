package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	user := &domain.User{
		Entity:       domain.Entity{ID: "user-1", CreatedAt: now, UpdatedAt: now},
		Email:        "anna@example.com",
		PasswordHash: "$argon2id$hash",
		DisplayName:  "Anna",
		Role:         domain.RoleModerator,
		LastLoginAt:  now,
	}

	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}

	if got.Email != user.Email {
		t.Errorf("Email: got %q, want %q", got.Email, user.Email)
	}
	if got.DisplayName != user.DisplayName {
		t.Errorf("DisplayName: got %q, want %q", got.DisplayName, user.DisplayName)
	}
	if got.Role != domain.RoleModerator {
		t.Errorf("Role: got %q, want moderator", got.Role)
	}
	if got.PasswordHash != user.PasswordHash {
		t.Errorf("PasswordHash: got %q, want %q", got.PasswordHash, user.PasswordHash)
	}
	if got.CreatedAt.Unix() != user.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, user.CreatedAt)
	}
	if got.LastLoginAt.Unix() != user.LastLoginAt.Unix() {
		t.Errorf("LastLoginAt: got %v, want %v", got.LastLoginAt, user.LastLoginAt)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")

	got, err := s.GetUserByEmail(ctx, "USER-1@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID: got %q, want user-1", got.ID)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")

	now := time.Now()
	dup := &domain.User{
		Entity:       domain.Entity{ID: "user-2", CreatedAt: now, UpdatedAt: now},
		Email:        "USER-1@example.com", // Same email, different case
		PasswordHash: "$argon2id$hash",
		Role:         domain.RoleMember,
	}

	err := s.CreateUser(ctx, dup)
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.ErrAlreadyExists.Code {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "nonexistent")
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.ErrNotFound.Code {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")

	user, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}

	user.DisplayName = "Updated Name"
	user.Role = domain.RoleModerator
	user.Touch()

	if err := s.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.DisplayName != "Updated Name" {
		t.Errorf("DisplayName: got %q", got.DisplayName)
	}
	if got.Role != domain.RoleModerator {
		t.Errorf("Role: got %q", got.Role)
	}
}

func TestCountUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 0 {
		t.Errorf("count: got %d, want 0", count)
	}

	insertTestUser(t, s, "user-1")
	insertTestUser(t, s, "user-2")

	count, err = s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 2 {
		t.Errorf("count: got %d, want 2", count)
	}
}

func TestSessions_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")

	now := time.Now()
	sess := &domain.Session{
		ID:               "session-1",
		UserID:           "user-1",
		RefreshTokenHash: "abc123",
		ExpiresAt:        now.Add(time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByRefreshToken(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID: got %q", got.UserID)
	}

	if err := s.DeleteSession(ctx, "session-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	_, err = s.GetSessionByRefreshToken(ctx, "abc123")
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.ErrNotFound.Code {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1")

	now := time.Now()
	expired := &domain.Session{
		ID:               "session-old",
		UserID:           "user-1",
		RefreshTokenHash: "old",
		ExpiresAt:        now.Add(-time.Hour),
		CreatedAt:        now.Add(-2 * time.Hour),
		LastSeenAt:       now.Add(-2 * time.Hour),
	}
	live := &domain.Session{
		ID:               "session-live",
		UserID:           "user-1",
		RefreshTokenHash: "live",
		ExpiresAt:        now.Add(time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.CreateSession(ctx, live); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "live"); err != nil {
		t.Errorf("live session should survive: %v", err)
	}
}
