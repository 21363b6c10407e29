package domain

// Canonical names of the shelves seeded for every new user.
// The three reading-status shelves are flagged as defaults and cannot be
// renamed; "Ulubione" is seeded as a regular shelf.
const (
	ShelfNameToRead    = "Do przeczytania"
	ShelfNameReading   = "W trakcie czytania"
	ShelfNameRead      = "Przeczytane"
	ShelfNameFavorites = "Ulubione"
)

// Shelf represents a personal, named list of books. Each shelf belongs to one
// user; shelf names are unique per owner.
type Shelf struct {
	Entity
	OwnerID     string `json:"owner_id"`    // User who owns this shelf
	Name        string `json:"name"`        // Display name of the shelf
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default"` // Seeded reading-status shelves, cannot be renamed
	BookCount   int    `json:"book_count"` // Denormalized, populated on read
}

// SeededShelf describes a shelf created automatically for a new user.
type SeededShelf struct {
	Name      string
	IsDefault bool
}

// SeededShelves returns the shelves bootstrapped for every new account,
// in display order.
func SeededShelves() []SeededShelf {
	return []SeededShelf{
		{Name: ShelfNameToRead, IsDefault: true},
		{Name: ShelfNameReading, IsDefault: true},
		{Name: ShelfNameRead, IsDefault: true},
		{Name: ShelfNameFavorites, IsDefault: false},
	}
}
