package store

// Default and maximum page sizes for listings.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int // Number of items per page (defaults to 50 with a maximum of 200)
	Offset int // Number of items to skip (first page is 0)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
