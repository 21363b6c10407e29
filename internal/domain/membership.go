package domain

// Membership links a book into a user's personal library, optionally placing
// it on one of the user's shelves. A user holds at most one membership per
// book; an empty ShelfID means the book is in the library but unshelved.
type Membership struct {
	Entity
	UserID  string `json:"user_id"`
	BookID  string `json:"book_id"`
	ShelfID string `json:"shelf_id,omitempty"` // Empty when unshelved

	// Book is the joined catalog entry, populated on list reads.
	Book *Book `json:"book,omitempty"`
}

// IsShelved returns true if the membership is placed on a shelf.
func (m *Membership) IsShelved() bool {
	return m.ShelfID != ""
}

// MembershipSort enumerates the supported orderings for library listings.
type MembershipSort string

const (
	MembershipSortTitle  MembershipSort = "title"
	MembershipSortAuthor MembershipSort = "author"
	MembershipSortAdded  MembershipSort = "added"
)

// IsValid reports whether the sort key is one of the known values.
func (s MembershipSort) IsValid() bool {
	return s == MembershipSortTitle || s == MembershipSortAuthor || s == MembershipSortAdded
}

// MembershipFilter describes the selection, ordering and paging of a user's
// library listing.
type MembershipFilter struct {
	ShelfID    string         // Restrict to one shelf; empty means the whole library
	Query      string         // Case-insensitive substring match on title or author
	Sort       MembershipSort // Defaults to added
	Descending bool
	Offset     int
	Limit      int
}
