package core

import "strings"

// Gender is the categorical gender of a person record.
// The zero value means "unset" and is only meaningful in filters.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender converts user input into a Gender.
// Anything other than "male" or "female" yields the unset value.
func ParseGender(s string) Gender {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale
	case GenderFemale:
		return GenderFemale
	default:
		return ""
	}
}

// Label returns the short Russian label shown in the table.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "муж."
	case GenderFemale:
		return "жен."
	default:
		return ""
	}
}

// Address is the postal part of a person record.
type Address struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Street  string `json:"street"`
}

// Record is one person entry. Records are immutable once loaded.
type Record struct {
	ID         int     `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	MaidenName string  `json:"maidenName"`
	Age        int     `json:"age"`
	Gender     Gender  `json:"gender"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Address    Address `json:"address"`
	Height     float64 `json:"height"`
	Weight     float64 `json:"weight"`
	Image      string  `json:"image"`
}

// FullName returns the composed name key "{family} {given} {maiden}".
// Both the name filter and the name sort operate on this string.
func (r Record) FullName() string {
	return r.LastName + " " + r.FirstName + " " + r.MaidenName
}

// Store is an immutable snapshot of the records fetched for a session.
type Store struct {
	records []Record
	byID    map[int]int
}

// NewStore copies records into a new Store.
// When IDs repeat, lookups resolve to the first occurrence.
func NewStore(records []Record) *Store {
	s := &Store{
		records: make([]Record, len(records)),
		byID:    make(map[int]int, len(records)),
	}
	copy(s.records, records)
	for i, r := range s.records {
		if _, exists := s.byID[r.ID]; !exists {
			s.byID[r.ID] = i
		}
	}
	return s
}

// Records returns the records in load order. Callers must not modify the slice.
func (s *Store) Records() []Record {
	if s == nil {
		return nil
	}
	return s.records
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Lookup returns the record with the given ID.
func (s *Store) Lookup(id int) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}
