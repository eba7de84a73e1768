// Package templates renders the people table as templ components.
//
// Components are plain templ.ComponentFunc values writing escaped HTML, so
// they compose with any templ.Component and render through the same
// Render(ctx, w) call the handlers use.
package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/a-h/templ"
)

// html accumulates markup for one component render.
type html struct {
	strings.Builder
}

// raw writes trusted markup.
func (h *html) raw(parts ...string) {
	for _, p := range parts {
		h.WriteString(p)
	}
}

// text writes escaped text.
func (h *html) text(s string) {
	h.WriteString(templ.EscapeString(s))
}

// attr writes name="value" with the value escaped, preceded by a space.
func (h *html) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (h *html) flush(w io.Writer) error {
	_, err := io.WriteString(w, h.String())
	return err
}

func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var h html
		fn(&h)
		return h.flush(w)
	})
}

// columnLabels are the table header captions.
var columnLabels = map[core.ColumnKey]string{
	core.ColName:    "ФИО",
	core.ColAge:     "Возраст",
	core.ColGender:  "Пол",
	core.ColPhone:   "Телефон",
	core.ColEmail:   "Email",
	core.ColCountry: "Страна",
	core.ColCity:    "Город",
}

// ColumnLabel returns the header caption for k.
func ColumnLabel(k core.ColumnKey) string {
	return columnLabels[k]
}

// CellValue returns the text shown for record r in column k.
func CellValue(r core.Record, k core.ColumnKey) string {
	switch k {
	case core.ColName:
		return r.FullName()
	case core.ColAge:
		return strconv.Itoa(r.Age)
	case core.ColGender:
		return r.Gender.Label()
	case core.ColPhone:
		return r.Phone
	case core.ColEmail:
		return r.Email
	case core.ColCountry:
		return r.Address.Country
	case core.ColCity:
		return r.Address.City
	}
	return ""
}

func itoa(n int) string { return strconv.Itoa(n) }
