package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/readroomapp/readroom-server/internal/auth"
	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/media/images"
	"github.com/readroomapp/readroom-server/internal/service"
	"github.com/readroomapp/readroom-server/internal/store"
	"github.com/readroomapp/readroom-server/internal/store/sqlite"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store store.Store
}

// setupTestServer creates a server backed by a throwaway sqlite store.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	covers, err := images.NewStorage(filepath.Join(tmpDir, "covers"))
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, logger)

	services := &Services{
		Auth:    authService,
		Session: sessionService,
		Catalog: service.NewCatalogService(st, covers, logger),
		Shelf:   service.NewShelfService(st, logger),
		Library: service.NewLibraryService(st, logger),
		Review:  service.NewReviewService(st, logger),
		Genre:   service.NewGenreService(st, logger),
		Tag:     service.NewTagService(st, logger),
	}

	s := NewServer(st, services, covers, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		store:  st,
	}
}

// registerTestUser registers a member through the API and returns its token
// and user ID.
func (ts *testServer) registerTestUser(t *testing.T, email string) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        email,
		"password":     "correct horse battery staple",
		"display_name": "Czytelnik",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	return envelope.Data.AccessToken, envelope.Data.User.ID
}

// registerTestModerator registers a user and promotes it to moderator.
func (ts *testServer) registerTestModerator(t *testing.T, email string) (token string, userID string) {
	t.Helper()

	token, userID = ts.registerTestUser(t, email)

	ctx := context.Background()
	user, err := ts.store.GetUser(ctx, userID)
	require.NoError(t, err)
	user.Role = domain.RoleModerator
	require.NoError(t, ts.store.UpdateUser(ctx, user))

	return token, userID
}

// createTestBook creates a catalog book directly through the moderator API.
func (ts *testServer) createTestBook(t *testing.T, moderatorToken, title, author string) BookResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/books",
		"Authorization: Bearer "+moderatorToken,
		map[string]any{
			"title":  title,
			"author": author,
		})
	require.Equal(t, http.StatusOK, resp.Code, "Create book failed: %s", resp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}
