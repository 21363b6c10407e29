package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTag_NormalizesName(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "anna@example.com")

	resp := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{
		"name": "Literatura Piękna",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[TagResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "literatura-piekna", envelope.Data.Slug)
}

func TestCreateTag_ExistingReturnsStored(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "anna@example.com")

	first := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "slow burn"})
	require.Equal(t, http.StatusOK, first.Code)

	var created testEnvelope[TagResponse]
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &created))

	second := ts.api.Post("/api/v1/tags", bearer(token), map[string]any{"name": "Slow Burn"})
	require.Equal(t, http.StatusOK, second.Code)

	var repeated testEnvelope[TagResponse]
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &repeated))
	assert.Equal(t, created.Data.ID, repeated.Data.ID)

	list := ts.api.Get("/api/v1/tags", bearer(token))
	require.Equal(t, http.StatusOK, list.Code)

	var tags testEnvelope[ListTagsResponse]
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &tags))
	assert.Len(t, tags.Data.Tags, 1)
}

func TestDeleteTag_ModeratorOnly(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	memberToken, _ := ts.registerTestUser(t, "anna@example.com")

	created := ts.api.Post("/api/v1/tags", bearer(memberToken), map[string]any{"name": "dystopia"})
	require.Equal(t, http.StatusOK, created.Code)

	var envelope testEnvelope[TagResponse]
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &envelope))

	denied := ts.api.Delete("/api/v1/tags/"+envelope.Data.ID, bearer(memberToken))
	assert.Equal(t, http.StatusForbidden, denied.Code)

	allowed := ts.api.Delete("/api/v1/tags/"+envelope.Data.ID, bearer(modToken))
	assert.Equal(t, http.StatusOK, allowed.Code)
}

func TestCreateGenre_ModeratorOnly(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	memberToken, _ := ts.registerTestUser(t, "anna@example.com")

	denied := ts.api.Post("/api/v1/genres", bearer(memberToken), map[string]any{
		"name": "Powieść Historyczna",
	})
	assert.Equal(t, http.StatusForbidden, denied.Code)

	resp := ts.api.Post("/api/v1/genres", bearer(modToken), map[string]any{
		"name": "Powieść Historyczna",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[GenreResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "powiesc-historyczna", envelope.Data.Slug)
	assert.Equal(t, "Powieść Historyczna", envelope.Data.Name)
}

func TestCreateGenre_DuplicateSlug(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")

	first := ts.api.Post("/api/v1/genres", bearer(modToken), map[string]any{"name": "Fantastyka"})
	require.Equal(t, http.StatusOK, first.Code)

	second := ts.api.Post("/api/v1/genres", bearer(modToken), map[string]any{"name": "fantastyka"})
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestBookLinksGenreAndTag(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")

	genreResp := ts.api.Post("/api/v1/genres", bearer(modToken), map[string]any{"name": "Science Fiction"})
	require.Equal(t, http.StatusOK, genreResp.Code)
	var genre testEnvelope[GenreResponse]
	require.NoError(t, json.Unmarshal(genreResp.Body.Bytes(), &genre))

	tagResp := ts.api.Post("/api/v1/tags", bearer(modToken), map[string]any{"name": "pierwszy kontakt"})
	require.Equal(t, http.StatusOK, tagResp.Code)
	var tag testEnvelope[TagResponse]
	require.NoError(t, json.Unmarshal(tagResp.Body.Bytes(), &tag))

	bookResp := ts.api.Post("/api/v1/books", bearer(modToken), map[string]any{
		"title":     "Solaris",
		"author":    "Stanisław Lem",
		"genre_ids": []string{genre.Data.ID},
		"tag_ids":   []string{tag.Data.ID},
	})
	require.Equal(t, http.StatusOK, bookResp.Code, bookResp.Body.String())

	var book testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(bookResp.Body.Bytes(), &book))
	assert.Equal(t, []string{genre.Data.ID}, book.Data.GenreIDs)
	assert.Equal(t, []string{tag.Data.ID}, book.Data.TagIDs)
}

func TestCreateBook_UnknownGenre(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")

	resp := ts.api.Post("/api/v1/books", bearer(modToken), map[string]any{
		"title":     "Solaris",
		"author":    "Stanisław Lem",
		"genre_ids": []string{"genre_missing"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
