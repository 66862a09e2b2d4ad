package services

// PageRequest carries pagination and ordering parameters. Page is 0-based.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	Direction string
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Normalize clamps the request to sane bounds and fills defaults: page 0,
// size 10 (capped at 100), sort by creation time descending.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	if p.SortBy == "" {
		p.SortBy = "created_at"
	}
	if p.Direction != "asc" {
		p.Direction = "desc"
	}
	return p
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

func (p PageRequest) Descending() bool {
	return p.Direction != "asc"
}
