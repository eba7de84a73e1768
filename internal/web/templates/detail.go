package templates

import (
	"strconv"

	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/a-h/templ"
)

// DetailField is one labelled row of the detail view.
type DetailField struct {
	Label string
	Value string
}

// DetailFields returns the record attributes in display order. The avatar
// is rendered separately above them.
func DetailFields(r core.Record) []DetailField {
	return []DetailField{
		{"ФИО", r.FullName()},
		{"Возраст", strconv.Itoa(r.Age)},
		{"Пол", r.Gender.Label()},
		{"Телефон", r.Phone},
		{"Email", r.Email},
		{"Страна", r.Address.Country},
		{"Город", r.Address.City},
		{"Улица", r.Address.Street},
		{"Рост", formatMeasure(r.Height, "см")},
		{"Вес", formatMeasure(r.Weight, "кг")},
	}
}

func formatMeasure(v float64, unit string) string {
	if v == 0 {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + unit
}

// Detail renders the modal for the selected record. Both the close button
// and the backdrop dismiss it.
func Detail(r core.Record) templ.Component {
	return component(func(h *html) { writeDetail(h, r) })
}

func writeDetail(h *html, r core.Record) {
	h.raw(`<div class="modal-backdrop" data-action="dismiss">`)
	h.raw(`<div class="modal" role="dialog" aria-modal="true"`)
	h.attr("data-id", strconv.Itoa(r.ID))
	h.raw(`><button type="button" class="modal-close" data-action="dismiss" aria-label="Закрыть">×</button>`)
	if r.Image != "" {
		h.raw(`<img class="avatar" width="128" height="128"`)
		h.attr("src", string(templ.URL(r.Image)))
		h.attr("alt", r.FullName())
		h.raw(`>`)
	}
	h.raw(`<dl class="detail">`)
	for _, f := range DetailFields(r) {
		h.raw(`<dt>`)
		h.text(f.Label)
		h.raw(`</dt><dd>`)
		h.text(f.Value)
		h.raw(`</dd>`)
	}
	h.raw(`</dl></div></div>`)
}
