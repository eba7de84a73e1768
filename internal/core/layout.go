package core

// ColumnKey identifies a table column.
type ColumnKey string

const (
	ColName    ColumnKey = "name"
	ColAge     ColumnKey = "age"
	ColGender  ColumnKey = "gender"
	ColPhone   ColumnKey = "phone"
	ColEmail   ColumnKey = "email"
	ColCountry ColumnKey = "country"
	ColCity    ColumnKey = "city"
)

// Column width bounds in pixels.
const (
	MinColumnWidth = 80
	MaxColumnWidth = 300
)

// Columns lists the table columns in display order.
var Columns = []ColumnKey{ColName, ColAge, ColGender, ColPhone, ColEmail, ColCountry, ColCity}

var defaultWidths = map[ColumnKey]int{
	ColName:    220,
	ColAge:     90,
	ColGender:  100,
	ColPhone:   160,
	ColEmail:   220,
	ColCountry: 140,
	ColCity:    140,
}

// ParseColumnKey returns the column named s, or false if there is none.
func ParseColumnKey(s string) (ColumnKey, bool) {
	for _, k := range Columns {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Resize is the drag state of the column layout. The zero value is idle.
type Resize struct {
	Active      bool      `json:"resizing"`
	Column      ColumnKey `json:"column,omitempty"`
	AnchorX     int       `json:"anchorX,omitempty"`
	AnchorWidth int       `json:"anchorWidth,omitempty"`
}

// ColumnLayout holds per-column pixel widths and the resize state machine.
// Widths are always within [MinColumnWidth, MaxColumnWidth].
type ColumnLayout struct {
	widths map[ColumnKey]int
	drag   Resize
}

// NewColumnLayout returns a layout with the default widths.
func NewColumnLayout() ColumnLayout {
	l := ColumnLayout{widths: make(map[ColumnKey]int, len(Columns))}
	for _, k := range Columns {
		l.widths[k] = defaultWidths[k]
	}
	return l
}

// Width returns the current width of column k.
func (l ColumnLayout) Width(k ColumnKey) int {
	if w, ok := l.widths[k]; ok {
		return w
	}
	return defaultWidths[k]
}

// Widths returns a copy of all column widths.
func (l ColumnLayout) Widths() map[ColumnKey]int {
	out := make(map[ColumnKey]int, len(Columns))
	for _, k := range Columns {
		out[k] = l.Width(k)
	}
	return out
}

// Drag returns the current resize state.
func (l ColumnLayout) Drag() Resize {
	return l.drag
}

// Resizing reports whether a drag is in progress.
func (l ColumnLayout) Resizing() bool {
	return l.drag.Active
}

// BeginResize starts dragging column k from pointer position x.
// It is ignored while another drag is active or for unknown columns,
// and reports whether a drag was started.
func (l *ColumnLayout) BeginResize(k ColumnKey, x int) bool {
	if l.drag.Active {
		return false
	}
	if _, ok := defaultWidths[k]; !ok {
		return false
	}
	l.ensure()
	l.drag = Resize{Active: true, Column: k, AnchorX: x, AnchorWidth: l.Width(k)}
	return true
}

// UpdateResize applies pointer position x to the column being dragged.
// Without an active drag it does nothing and returns false.
func (l *ColumnLayout) UpdateResize(x int) bool {
	if !l.drag.Active {
		return false
	}
	l.ensure()
	w := l.drag.AnchorWidth + (x - l.drag.AnchorX)
	l.widths[l.drag.Column] = clampInt(w, MinColumnWidth, MaxColumnWidth)
	return true
}

// EndResize returns to idle. It reports whether a drag was active.
func (l *ColumnLayout) EndResize() bool {
	was := l.drag.Active
	l.drag = Resize{}
	return was
}

func (l *ColumnLayout) ensure() {
	if l.widths == nil {
		*l = NewColumnLayout()
	}
}
