package domain

// Review constraints. Reviews are immutable once written: one per user per
// book, no edits or deletions.
const (
	MinRating           = 1
	MaxRating           = 5
	MinReviewTextLength = 10
	MaxReviewTextLength = 1000
)

// Review represents a user's one-time rating and write-up of a book.
type Review struct {
	Entity
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
	Rating int    `json:"rating"` // 1 to 5, whole stars
	Text   string `json:"text"`

	// AuthorName is the joined display name, populated on list reads.
	AuthorName string `json:"author_name,omitempty"`
}

// RoundRating rounds an average rating to one decimal place, half away
// from zero. Returns 0 when there are no ratings.
func RoundRating(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	avg := float64(sum) / float64(count)
	return float64(int(avg*10+0.5)) / 10
}
