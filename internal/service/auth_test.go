package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readroomapp/readroom-server/internal/domain"
	domainerrors "github.com/readroomapp/readroom-server/internal/errors"
)

func TestAuthService_Register(t *testing.T) {
	s := newTestStore(t)
	authService := newAuthStack(t, s)
	ctx := context.Background()

	resp, err := authService.Register(ctx, RegisterRequest{
		Email:       "anna@example.com",
		Password:    "correct horse battery staple",
		DisplayName: "Anna",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "anna@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleMember, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	// The standard shelves are seeded in display order.
	shelves, err := s.ListShelvesByOwner(ctx, resp.User.ID)
	require.NoError(t, err)
	require.Len(t, shelves, 4)

	wantNames := []string{
		domain.ShelfNameToRead,
		domain.ShelfNameReading,
		domain.ShelfNameRead,
		domain.ShelfNameFavorites,
	}
	defaults := 0
	for i, shelf := range shelves {
		assert.Equal(t, wantNames[i], shelf.Name)
		if shelf.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 3, defaults)
	assert.False(t, shelves[3].IsDefault, "Ulubione is not a default shelf")
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	authService := newAuthStack(t, s)
	ctx := context.Background()

	req := RegisterRequest{
		Email:    "anna@example.com",
		Password: "correct horse battery staple",
	}
	_, err := authService.Register(ctx, req)
	require.NoError(t, err)

	_, err = authService.Register(ctx, req)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeConflict, domainErr.Code)

	// Email matching is case-insensitive.
	req.Email = "ANNA@example.com"
	_, err = authService.Register(ctx, req)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeConflict, domainErr.Code)
}

func TestAuthService_Register_Validation(t *testing.T) {
	s := newTestStore(t)
	authService := newAuthStack(t, s)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "correct horse battery staple"}},
		{"invalid email", RegisterRequest{Email: "not-an-email", Password: "correct horse battery staple"}},
		{"short password", RegisterRequest{Email: "anna@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Register(context.Background(), tt.req)
			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	s := newTestStore(t)
	authService := newAuthStack(t, s)
	ctx := context.Background()

	_, err := authService.Register(ctx, RegisterRequest{
		Email:    "anna@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	resp, err := authService.Login(ctx, LoginRequest{
		Email:    "anna@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.False(t, resp.User.LastLoginAt.IsZero())

	// Access token round-trips through verification.
	claims, err := authService.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "anna@example.com", claims.Email)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	s := newTestStore(t)
	authService := newAuthStack(t, s)
	ctx := context.Background()

	_, err := authService.Register(ctx, RegisterRequest{
		Email:    "anna@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "anna@example.com", Password: "wrong password entirely"}},
		{"unknown email", LoginRequest{Email: "nobody@example.com", Password: "correct horse battery staple"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Login(context.Background(), tt.req)
			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
		})
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	s := newTestStore(t)
	authService := newAuthStack(t, s)
	ctx := context.Background()

	registered, err := authService.Register(ctx, RegisterRequest{
		Email:    "anna@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	refreshed, err := authService.Refresh(ctx, RefreshRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)

	// The old token is no longer accepted.
	_, err = authService.Refresh(ctx, RefreshRequest{RefreshToken: registered.RefreshToken})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeTokenExpired, domainErr.Code)
}

func TestAuthService_Logout(t *testing.T) {
	s := newTestStore(t)
	authService := newAuthStack(t, s)
	ctx := context.Background()

	registered, err := authService.Register(ctx, RegisterRequest{
		Email:    "anna@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, registered.RefreshToken))

	_, err = authService.Refresh(ctx, RefreshRequest{RefreshToken: registered.RefreshToken})
	assert.Error(t, err)

	// Logging out again is a no-op.
	assert.NoError(t, authService.Logout(ctx, registered.RefreshToken))
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	s := newTestStore(t)
	authService := newAuthStack(t, s)
	ctx := context.Background()

	require.NoError(t, authService.EnsureAdmin(ctx, "admin@example.com", "correct horse battery staple"))

	admin, err := s.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, admin.Role)
	assert.True(t, admin.IsModerator())

	shelves, err := s.ListShelvesByOwner(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, shelves, 4)

	// Running again is idempotent.
	require.NoError(t, authService.EnsureAdmin(ctx, "admin@example.com", "correct horse battery staple"))

	// Blank credentials disable seeding.
	require.NoError(t, authService.EnsureAdmin(ctx, "", ""))
}
