package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReview_Roundtrip(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	token, userID := ts.registerTestUser(t, "anna@example.com")
	book := ts.createTestBook(t, modToken, "Lalka", "Bolesław Prus")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", bearer(token), map[string]any{
		"rating": 5,
		"text":   "Wybitna powieść o Warszawie i obsesji.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.UserID)
	assert.Equal(t, 5, envelope.Data.Rating)

	mine := ts.api.Get("/api/v1/books/"+book.ID+"/reviews/me", bearer(token))
	assert.Equal(t, http.StatusOK, mine.Code)
}

func TestAddReview_OncePerBook(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	token, _ := ts.registerTestUser(t, "anna@example.com")
	book := ts.createTestBook(t, modToken, "Lalka", "Bolesław Prus")

	first := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", bearer(token), map[string]any{
		"rating": 4,
		"text":   "Bardzo dobra lektura na jesień.",
	})
	require.Equal(t, http.StatusOK, first.Code)

	second := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", bearer(token), map[string]any{
		"rating": 2,
		"text":   "Jednak zmieniam zdanie po namyśle.",
	})
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestAddReview_Validation(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	token, _ := ts.registerTestUser(t, "anna@example.com")
	book := ts.createTestBook(t, modToken, "Lalka", "Bolesław Prus")

	tests := []struct {
		name   string
		rating int
		text   string
	}{
		{"rating too high", 6, "Tekst o właściwej długości."},
		{"rating too low", 0, "Tekst o właściwej długości."},
		{"text too short", 3, "Za krótko"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", bearer(token), map[string]any{
				"rating": tt.rating,
				"text":   tt.text,
			})
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestListReviews_NewestFirstWithAuthors(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	annaToken, _ := ts.registerTestUser(t, "anna@example.com")
	piotrToken, _ := ts.registerTestUser(t, "piotr@example.com")
	book := ts.createTestBook(t, modToken, "Lalka", "Bolesław Prus")

	first := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", bearer(annaToken), map[string]any{
		"rating": 5,
		"text":   "Arcydzieło polskiego realizmu.",
	})
	require.Equal(t, http.StatusOK, first.Code)

	second := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", bearer(piotrToken), map[string]any{
		"rating": 3,
		"text":   "Dobra, ale zbyt rozwlekła jak dla mnie.",
	})
	require.Equal(t, http.StatusOK, second.Code)

	resp := ts.api.Get("/api/v1/books/"+book.ID+"/reviews", bearer(annaToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListReviewsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Reviews, 2)
	for _, review := range envelope.Data.Reviews {
		assert.NotEmpty(t, review.AuthorName)
	}
}

func TestBookRating_AggregatesReviews(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	annaToken, _ := ts.registerTestUser(t, "anna@example.com")
	piotrToken, _ := ts.registerTestUser(t, "piotr@example.com")
	book := ts.createTestBook(t, modToken, "Lalka", "Bolesław Prus")

	for token, rating := range map[string]int{annaToken: 3, piotrToken: 5} {
		resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", bearer(token), map[string]any{
			"rating": rating,
			"text":   "Ocena wystawiona po lekturze całości.",
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/books/"+book.ID+"/rating", bearer(annaToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[RatingSummaryResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 4.0, envelope.Data.AverageRating)
	assert.Equal(t, 2, envelope.Data.ReviewCount)

	// The aggregate also shows up on the book itself.
	bookResp := ts.api.Get("/api/v1/books/"+book.ID, bearer(annaToken))
	require.Equal(t, http.StatusOK, bookResp.Code)

	var bookEnvelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(bookResp.Body.Bytes(), &bookEnvelope))
	assert.Equal(t, 4.0, bookEnvelope.Data.AverageRating)
	assert.Equal(t, 2, bookEnvelope.Data.ReviewCount)
}

func TestBookRating_Empty(t *testing.T) {
	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	book := ts.createTestBook(t, modToken, "Lalka", "Bolesław Prus")

	resp := ts.api.Get("/api/v1/books/"+book.ID+"/rating", bearer(modToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[RatingSummaryResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Zero(t, envelope.Data.AverageRating)
	assert.Zero(t, envelope.Data.ReviewCount)
}
