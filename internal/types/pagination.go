package types

const (
	DefaultPageLimit = 6
	MaxPageLimit     = 100
)

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the window to the allowed range.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Paginated is the list envelope returned by paginated endpoints.
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
