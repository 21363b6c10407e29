package domain

// Tag represents a community tag for categorizing books.
// Tags are shared across all users — no ownership model.
// Slug is the source of truth; clients transform for display: "slow-burn" → "Slow Burn".
type Tag struct {
	Entity
	Slug      string `json:"slug"`       // Canonical form: lowercase, hyphenated
	BookCount int    `json:"book_count"` // Denormalized count of books with this tag
}
