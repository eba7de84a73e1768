package core

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 15

// PageState is the current page (1-based) and the fixed page size.
type PageState struct {
	Current int `json:"current"`
	Size    int `json:"size"`
}

// NewPageState returns page 1 with the default page size.
func NewPageState() PageState {
	return PageState{Current: 1, Size: DefaultPageSize}
}

// size returns the effective page size, falling back to the default.
func (p PageState) size() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

// Clamp returns p with Current moved into [1, PageCount(n)].
func (p PageState) Clamp(n int) PageState {
	p.Current = clampInt(p.Current, 1, PageCount(n, p.size()))
	return p
}

// Next moves forward one page, stopping at the last page for n items.
func (p PageState) Next(n int) PageState {
	p.Current++
	return p.Clamp(n)
}

// Prev moves back one page, stopping at page 1.
func (p PageState) Prev() PageState {
	if p.Current > 1 {
		p.Current--
	}
	if p.Current < 1 {
		p.Current = 1
	}
	return p
}

// PageCount returns ceil(n/size), never less than 1.
func PageCount(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate returns the rows of the current page, clamped to the slice bounds.
// A page that starts past the end yields an empty slice.
func Paginate(records []Record, p PageState) []Record {
	size := p.size()
	current := p.Current
	if current < 1 {
		current = 1
	}

	start := (current - 1) * size
	if start >= len(records) {
		return []Record{}
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
