package domain

// Genre represents a curated category for classifying books.
// Genres are managed by moderators; books can belong to multiple genres.
type Genre struct {
	Entity
	Name        string `json:"name"`                  // Display name: "Epic Fantasy"
	Slug        string `json:"slug"`                  // URL-safe key: "epic-fantasy"
	Description string `json:"description,omitempty"` // Optional description
	BookCount   int    `json:"book_count"`            // Denormalized, populated on read
}
