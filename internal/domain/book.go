// Package domain contains the core business entities and domain logic for the ReadRoom book catalog.
package domain

// Book represents a book in the shared catalog.
type Book struct {
	Entity
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishYear   int      `json:"publish_year,omitempty"`
	Language      string   `json:"language,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	CoverPath     string   `json:"cover_path,omitempty"`
	GenreIDs      []string `json:"genre_ids,omitempty"`
	TagIDs        []string `json:"tag_ids,omitempty"`
	CreatedBy     string   `json:"created_by,omitempty"` // Moderator who added the book
	ReviewCount   int      `json:"review_count"`         // Denormalized, populated on read
	AverageRating float64  `json:"average_rating"`       // Denormalized, populated on read
}

// HasCover returns true if a cover image has been uploaded for this book.
func (b *Book) HasCover() bool {
	return b.CoverPath != ""
}

// BookSort enumerates the supported orderings for catalog listings.
type BookSort string

const (
	BookSortTitle  BookSort = "title"
	BookSortAuthor BookSort = "author"
	BookSortAdded  BookSort = "added"
)

// IsValid reports whether the sort key is one of the known values.
func (s BookSort) IsValid() bool {
	return s == BookSortTitle || s == BookSortAuthor || s == BookSortAdded
}

// BookFilter describes the selection, ordering and paging of a catalog
// listing.
type BookFilter struct {
	Query      string   // Case-insensitive substring match on title or author
	Sort       BookSort // Defaults to title
	Descending bool
	Offset     int
	Limit      int
}
