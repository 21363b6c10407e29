package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readroomapp/readroom-server/internal/domain"
	domainerrors "github.com/readroomapp/readroom-server/internal/errors"
)

func TestTagService_CreateTag_NormalizesSlug(t *testing.T) {
	s := newTestStore(t)
	tagService := NewTagService(s, testLogger())
	ctx := context.Background()

	tag, err := tagService.CreateTag(ctx, CreateTagRequest{Name: "Literatura Piękna"})
	require.NoError(t, err)
	assert.Equal(t, "literatura-piekna", tag.Slug)
}

func TestTagService_CreateTag_ExistingReturnsStored(t *testing.T) {
	s := newTestStore(t)
	tagService := NewTagService(s, testLogger())
	ctx := context.Background()

	first, err := tagService.CreateTag(ctx, CreateTagRequest{Name: "pozytywizm"})
	require.NoError(t, err)

	second, err := tagService.CreateTag(ctx, CreateTagRequest{Name: "Pozytywizm"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	tags, err := tagService.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestTagService_DeleteTag_ModeratorOnly(t *testing.T) {
	s := newTestStore(t)
	tagService := NewTagService(s, testLogger())
	ctx := context.Background()

	moderator := createTestUser(t, s, "mod@example.com", domain.RoleModerator)
	member := createTestUser(t, s, "anna@example.com", domain.RoleMember)

	tag, err := tagService.CreateTag(ctx, CreateTagRequest{Name: "pozytywizm"})
	require.NoError(t, err)

	err = tagService.DeleteTag(ctx, member, tag.ID)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)

	require.NoError(t, tagService.DeleteTag(ctx, moderator, tag.ID))
}

func TestGenreService_CreateGenre(t *testing.T) {
	s := newTestStore(t)
	genreService := NewGenreService(s, testLogger())
	ctx := context.Background()

	moderator := createTestUser(t, s, "mod@example.com", domain.RoleModerator)
	member := createTestUser(t, s, "anna@example.com", domain.RoleMember)

	genre, err := genreService.CreateGenre(ctx, moderator, CreateGenreRequest{
		Name:        "Powieść Historyczna",
		Description: "Osadzona w przeszłości",
	})
	require.NoError(t, err)
	assert.Equal(t, "powiesc-historyczna", genre.Slug)

	// Members cannot manage genres.
	_, err = genreService.CreateGenre(ctx, member, CreateGenreRequest{Name: "Romans"})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)

	// Duplicate slug conflicts.
	_, err = genreService.CreateGenre(ctx, moderator, CreateGenreRequest{Name: "powieść historyczna"})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeConflict, domainErr.Code)
}

func TestGenreService_DeleteGenre_BooksKeepOtherGenres(t *testing.T) {
	s := newTestStore(t)
	genreService := NewGenreService(s, testLogger())
	catalogService := newCatalogService(t, s)
	ctx := context.Background()

	moderator := createTestUser(t, s, "mod@example.com", domain.RoleModerator)

	fiction, err := genreService.CreateGenre(ctx, moderator, CreateGenreRequest{Name: "Powieść"})
	require.NoError(t, err)
	classic, err := genreService.CreateGenre(ctx, moderator, CreateGenreRequest{Name: "Klasyka"})
	require.NoError(t, err)

	book, err := catalogService.CreateBook(ctx, moderator, CreateBookRequest{
		Title:    "Lalka",
		Author:   "Bolesław Prus",
		GenreIDs: []string{fiction.ID, classic.ID},
	})
	require.NoError(t, err)

	require.NoError(t, genreService.DeleteGenre(ctx, moderator, classic.ID))

	got, err := catalogService.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{fiction.ID}, got.GenreIDs)
}
