package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readroomapp/readroom-server/internal/auth"
	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/id"
	"github.com/readroomapp/readroom-server/internal/media/images"
	"github.com/readroomapp/readroom-server/internal/store"
	"github.com/readroomapp/readroom-server/internal/store/sqlite"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// newTestStore opens a throwaway sqlite store.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestCovers creates a throwaway cover storage.
func newTestCovers(t *testing.T) *images.Storage {
	t.Helper()

	covers, err := images.NewStorage(filepath.Join(t.TempDir(), "covers"))
	require.NoError(t, err)
	return covers
}

// createTestUser inserts a user with the given role.
func createTestUser(t *testing.T, s store.Store, email string, role domain.Role) *domain.User {
	t.Helper()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	user.InitTimestamps()

	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// createTestBook inserts a catalog book.
func createTestBook(t *testing.T, s store.Store, title, author string) *domain.Book {
	t.Helper()

	bookID, err := id.Generate("book")
	require.NoError(t, err)

	book := &domain.Book{
		Entity: domain.Entity{ID: bookID},
		Title:  title,
		Author: author,
	}
	book.InitTimestamps()

	require.NoError(t, s.CreateBook(context.Background(), book))
	return book
}

// createTestShelf inserts a shelf for a user.
func createTestShelf(t *testing.T, s store.Store, ownerID, name string, isDefault bool) *domain.Shelf {
	t.Helper()

	shelfID, err := id.Generate("shelf")
	require.NoError(t, err)

	shelf := &domain.Shelf{
		Entity:    domain.Entity{ID: shelfID},
		OwnerID:   ownerID,
		Name:      name,
		IsDefault: isDefault,
	}
	shelf.InitTimestamps()

	require.NoError(t, s.CreateShelf(context.Background(), shelf))
	return shelf
}

// newAuthStack wires the auth, session and token services over a store.
func newAuthStack(t *testing.T, s store.Store) *AuthService {
	t.Helper()

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	sessionService := NewSessionService(s, tokenService, testLogger())
	return NewAuthService(s, tokenService, sessionService, testLogger())
}
