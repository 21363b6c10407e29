package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// libraryFixture registers a moderator and a member, creates catalog books
// and returns the member context.
type libraryFixture struct {
	ts          *testServer
	memberToken string
	lalka       BookResponse
	quoVadis    BookResponse
	solaris     BookResponse
	shelves     []ShelfResponse
}

func setupLibraryFixture(t *testing.T) *libraryFixture {
	t.Helper()

	ts := setupTestServer(t)
	modToken, _ := ts.registerTestModerator(t, "mod@example.com")
	memberToken, _ := ts.registerTestUser(t, "anna@example.com")

	f := &libraryFixture{
		ts:          ts,
		memberToken: memberToken,
		lalka:       ts.createTestBook(t, modToken, "Lalka", "Bolesław Prus"),
		quoVadis:    ts.createTestBook(t, modToken, "Quo Vadis", "Henryk Sienkiewicz"),
		solaris:     ts.createTestBook(t, modToken, "Solaris", "Stanisław Lem"),
	}

	resp := ts.api.Get("/api/v1/shelves", bearer(memberToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListShelvesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	f.shelves = envelope.Data.Shelves

	return f
}

// shelfByName returns one of the member's seeded shelves.
func (f *libraryFixture) shelfByName(t *testing.T, name string) ShelfResponse {
	t.Helper()
	for _, shelf := range f.shelves {
		if shelf.Name == name {
			return shelf
		}
	}
	t.Fatalf("shelf %q not seeded", name)
	return ShelfResponse{}
}

// toRead returns the member's seeded to-read shelf.
func (f *libraryFixture) toRead(t *testing.T) ShelfResponse {
	t.Helper()
	return f.shelfByName(t, "Do przeczytania")
}

func (f *libraryFixture) addBook(t *testing.T, bookID, shelfID string) MembershipResponse {
	t.Helper()

	resp := f.ts.api.Post("/api/v1/library/books", bearer(f.memberToken), map[string]any{
		"book_id":  bookID,
		"shelf_id": shelfID,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[MembershipResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestAddBookToLibrary(t *testing.T) {
	f := setupLibraryFixture(t)
	shelf := f.toRead(t)

	membership := f.addBook(t, f.lalka.ID, shelf.ID)
	assert.Equal(t, f.lalka.ID, membership.BookID)
	assert.Equal(t, shelf.ID, membership.ShelfID)
	require.NotNil(t, membership.Book)
	assert.Equal(t, "Lalka", membership.Book.Title)
}

func TestAddBookToLibrary_Twice(t *testing.T) {
	f := setupLibraryFixture(t)
	f.addBook(t, f.lalka.ID, "")

	resp := f.ts.api.Post("/api/v1/library/books", bearer(f.memberToken), map[string]any{
		"book_id": f.lalka.ID,
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestAddBookToLibrary_UnknownBook(t *testing.T) {
	f := setupLibraryFixture(t)

	resp := f.ts.api.Post("/api/v1/library/books", bearer(f.memberToken), map[string]any{
		"book_id": "book_missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAddBookToLibrary_ForeignShelf(t *testing.T) {
	f := setupLibraryFixture(t)
	otherToken, _ := f.ts.registerTestUser(t, "piotr@example.com")

	var envelope testEnvelope[ListShelvesResponse]
	resp := f.ts.api.Get("/api/v1/shelves", bearer(otherToken))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	add := f.ts.api.Post("/api/v1/library/books", bearer(f.memberToken), map[string]any{
		"book_id":  f.lalka.ID,
		"shelf_id": envelope.Data.Shelves[0].ID,
	})
	assert.Equal(t, http.StatusForbidden, add.Code)
}

func TestShelveAndUnshelve(t *testing.T) {
	f := setupLibraryFixture(t)
	shelf := f.toRead(t)
	f.addBook(t, f.lalka.ID, "")

	resp := f.ts.api.Put("/api/v1/library/books/"+f.lalka.ID+"/shelf",
		bearer(f.memberToken),
		map[string]any{"shelf_id": shelf.ID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[MembershipResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, shelf.ID, envelope.Data.ShelfID)

	unshelve := f.ts.api.Put("/api/v1/library/books/"+f.lalka.ID+"/shelf",
		bearer(f.memberToken),
		map[string]any{"shelf_id": ""})
	require.Equal(t, http.StatusOK, unshelve.Code)

	var unshelved testEnvelope[MembershipResponse]
	require.NoError(t, json.Unmarshal(unshelve.Body.Bytes(), &unshelved))
	assert.Empty(t, unshelved.Data.ShelfID)
}

func TestRemoveBookFromLibrary(t *testing.T) {
	f := setupLibraryFixture(t)
	f.addBook(t, f.lalka.ID, "")

	resp := f.ts.api.Delete("/api/v1/library/books/"+f.lalka.ID, bearer(f.memberToken))
	require.Equal(t, http.StatusOK, resp.Code)

	get := f.ts.api.Get("/api/v1/library/books/"+f.lalka.ID, bearer(f.memberToken))
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func TestListLibrary_FilterSortSearch(t *testing.T) {
	f := setupLibraryFixture(t)
	shelf := f.toRead(t)
	f.addBook(t, f.solaris.ID, shelf.ID)
	f.addBook(t, f.lalka.ID, "")
	f.addBook(t, f.quoVadis.ID, "")

	t.Run("sorted by title", func(t *testing.T) {
		resp := f.ts.api.Get("/api/v1/library?sort=title", bearer(f.memberToken))
		require.Equal(t, http.StatusOK, resp.Code)

		var envelope testEnvelope[ListLibraryResponse]
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		require.Len(t, envelope.Data.Books, 3)
		assert.Equal(t, "Lalka", envelope.Data.Books[0].Book.Title)
		assert.Equal(t, "Quo Vadis", envelope.Data.Books[1].Book.Title)
	})

	t.Run("filtered by shelf", func(t *testing.T) {
		resp := f.ts.api.Get("/api/v1/library?shelf_id="+shelf.ID, bearer(f.memberToken))
		require.Equal(t, http.StatusOK, resp.Code)

		var envelope testEnvelope[ListLibraryResponse]
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		require.Len(t, envelope.Data.Books, 1)
		assert.Equal(t, "Solaris", envelope.Data.Books[0].Book.Title)
	})

	t.Run("searched by author", func(t *testing.T) {
		resp := f.ts.api.Get("/api/v1/library?q=lem", bearer(f.memberToken))
		require.Equal(t, http.StatusOK, resp.Code)

		var envelope testEnvelope[ListLibraryResponse]
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		require.Len(t, envelope.Data.Books, 1)
		assert.Equal(t, "Solaris", envelope.Data.Books[0].Book.Title)
	})

	t.Run("unknown sort rejected", func(t *testing.T) {
		resp := f.ts.api.Get("/api/v1/library?sort=publisher", bearer(f.memberToken))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestDeleteShelf_MovesBooksToToRead(t *testing.T) {
	f := setupLibraryFixture(t)

	createResp := f.ts.api.Post("/api/v1/shelves", bearer(f.memberToken), map[string]any{
		"name": "Kryminały",
	})
	require.Equal(t, http.StatusOK, createResp.Code)

	var created testEnvelope[ShelfResponse]
	require.NoError(t, json.Unmarshal(createResp.Body.Bytes(), &created))

	f.addBook(t, f.lalka.ID, created.Data.ID)

	deleteResp := f.ts.api.Delete("/api/v1/shelves/"+created.Data.ID, bearer(f.memberToken))
	require.Equal(t, http.StatusOK, deleteResp.Code, deleteResp.Body.String())

	get := f.ts.api.Get("/api/v1/library/books/"+f.lalka.ID, bearer(f.memberToken))
	require.Equal(t, http.StatusOK, get.Code)

	var membership testEnvelope[MembershipResponse]
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &membership))
	assert.Equal(t, f.toRead(t).ID, membership.Data.ShelfID)
}

func TestDeleteDefaultShelf_FallsBackToToRead(t *testing.T) {
	f := setupLibraryFixture(t)
	finished := f.shelfByName(t, "Przeczytane")

	membership := f.addBook(t, f.lalka.ID, "")
	assert.Empty(t, membership.ShelfID)

	moveResp := f.ts.api.Put("/api/v1/library/books/"+f.lalka.ID+"/shelf", bearer(f.memberToken), map[string]any{
		"shelf_id": finished.ID,
	})
	require.Equal(t, http.StatusOK, moveResp.Code)

	deleteResp := f.ts.api.Delete("/api/v1/shelves/"+finished.ID, bearer(f.memberToken))
	require.Equal(t, http.StatusOK, deleteResp.Code, deleteResp.Body.String())

	get := f.ts.api.Get("/api/v1/library/books/"+f.lalka.ID, bearer(f.memberToken))
	require.Equal(t, http.StatusOK, get.Code)

	var moved testEnvelope[MembershipResponse]
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &moved))
	assert.Equal(t, f.toRead(t).ID, moved.Data.ShelfID)
}

func TestCreateShelf_DuplicateName(t *testing.T) {
	f := setupLibraryFixture(t)

	first := f.ts.api.Post("/api/v1/shelves", bearer(f.memberToken), map[string]any{"name": "Kryminały"})
	require.Equal(t, http.StatusOK, first.Code)

	second := f.ts.api.Post("/api/v1/shelves", bearer(f.memberToken), map[string]any{"name": "Kryminały"})
	assert.Equal(t, http.StatusConflict, second.Code)
}
