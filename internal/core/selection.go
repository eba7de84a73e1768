package core

// Selection is the record currently shown in the detail view, if any.
type Selection struct {
	record *Record
}

// Select returns a selection holding r. Any prior selection is replaced.
func (Selection) Select(r Record) Selection {
	return Selection{record: &r}
}

// Dismiss returns an empty selection.
func (Selection) Dismiss() Selection {
	return Selection{}
}

// Record returns the selected record.
func (s Selection) Record() (Record, bool) {
	if s.record == nil {
		return Record{}, false
	}
	return *s.record, true
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.record == nil
}
