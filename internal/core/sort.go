package core

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField is a sortable column. The zero value means "not sorted".
type SortField string

const (
	SortNone   SortField = ""
	SortName   SortField = "name"
	SortAge    SortField = "age"
	SortGender SortField = "gender"
	SortPhone  SortField = "phone"
)

// SortFields lists the sortable columns in display order.
var SortFields = []SortField{SortName, SortAge, SortGender, SortPhone}

// ParseSortField returns the field named s, or false if s is not sortable.
func ParseSortField(s string) (SortField, bool) {
	for _, f := range SortFields {
		if string(f) == s {
			return f, true
		}
	}
	return SortNone, false
}

// SortDirection is the order applied to the active sort field.
type SortDirection string

const (
	DirNone SortDirection = ""
	DirAsc  SortDirection = "asc"
	DirDesc SortDirection = "desc"
)

// SortSpec represents the single active sort column and direction.
// Field and Dir are either both set or both empty.
type SortSpec struct {
	Field SortField     `json:"field,omitempty"`
	Dir   SortDirection `json:"dir,omitempty"`
}

// Active reports whether a sort is applied.
func (s SortSpec) Active() bool {
	return s.Field != SortNone && s.Dir != DirNone
}

// Toggle advances the three-state cycle for field f:
// none -> asc -> desc -> none. Activating a different field always
// starts over at ascending.
func (s SortSpec) Toggle(f SortField) SortSpec {
	if f == SortNone {
		return SortSpec{}
	}
	if s.Field != f || !s.Active() {
		return SortSpec{Field: f, Dir: DirAsc}
	}
	if s.Dir == DirAsc {
		return SortSpec{Field: f, Dir: DirDesc}
	}
	return SortSpec{}
}

// newCollator builds the Russian collator used for string keys.
// Case and diacritic differences are ignored (base strength).
// Collators keep internal buffers and must not be shared across goroutines.
func newCollator() *collate.Collator {
	return collate.New(language.Russian, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// Sort returns a new slice ordered by spec. The input is not modified.
// With no active field the original order is returned.
//
// Descending order negates the comparator rather than reversing an
// ascending result, so records with equal keys keep their relative order
// in both directions.
func Sort(records []Record, spec SortSpec) []Record {
	result := slices.Clone(records)
	if !spec.Active() || len(result) < 2 {
		return result
	}

	compare := comparator(spec.Field)
	if compare == nil {
		return result
	}
	if spec.Dir == DirDesc {
		asc := compare
		compare = func(a, b Record) int { return asc(b, a) }
	}

	slices.SortStableFunc(result, compare)
	return result
}

// comparator returns the ascending comparison for a field.
func comparator(f SortField) func(a, b Record) int {
	switch f {
	case SortAge:
		return func(a, b Record) int { return cmp.Compare(a.Age, b.Age) }
	case SortName:
		c := newCollator()
		return func(a, b Record) int { return c.CompareString(a.FullName(), b.FullName()) }
	case SortGender:
		c := newCollator()
		return func(a, b Record) int { return c.CompareString(string(a.Gender), string(b.Gender)) }
	case SortPhone:
		c := newCollator()
		return func(a, b Record) int { return c.CompareString(a.Phone, b.Phone) }
	default:
		return nil
	}
}
