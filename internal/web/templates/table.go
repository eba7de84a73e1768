package templates

import (
	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/a-h/templ"
)

// Table renders the header, column widths and current page rows.
func Table(v core.View) templ.Component {
	return component(func(h *html) { writeTable(h, v) })
}

func writeTable(h *html, v core.View) {
	h.raw(`<table class="people-table"`)
	if v.Resize.Active {
		h.raw(` data-resizing="`, string(v.Resize.Column), `"`)
	}
	h.raw(`><colgroup>`)
	for _, k := range core.Columns {
		h.raw(`<col`)
		h.attr("data-col", string(k))
		h.attr("style", "width:"+itoa(v.Widths[k])+"px")
		h.raw(`>`)
	}
	h.raw(`</colgroup><thead><tr>`)
	for _, k := range core.Columns {
		writeHeader(h, k, v.Sort)
	}
	h.raw(`</tr></thead><tbody>`)

	if len(v.Rows) == 0 {
		h.raw(`<tr class="empty"><td colspan="`, itoa(len(core.Columns)), `">Ничего не найдено</td></tr>`)
	}
	for _, r := range v.Rows {
		h.raw(`<tr tabindex="0"`)
		h.attr("data-id", itoa(r.ID))
		if v.Selected != nil && v.Selected.ID == r.ID {
			h.raw(` class="selected"`)
		}
		h.raw(`>`)
		for _, k := range core.Columns {
			h.raw(`<td>`)
			h.text(CellValue(r, k))
			h.raw(`</td>`)
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table>`)
}

func writeHeader(h *html, k core.ColumnKey, spec core.SortSpec) {
	h.raw(`<th`)
	h.attr("data-col", string(k))

	field, sortable := core.ParseSortField(string(k))
	if !sortable {
		h.raw(`><span class="th-label">`)
		h.text(ColumnLabel(k))
		h.raw(`</span>`)
		writeResizer(h, k)
		h.raw(`</th>`)
		return
	}

	h.attr("aria-sort", ariaSort(field, spec))
	h.raw(`><button type="button" class="th-sort"`)
	h.attr("data-sort", string(field))
	h.raw(`>`)
	h.text(ColumnLabel(k))
	if spec.Active() && spec.Field == field {
		if spec.Dir == core.DirAsc {
			h.raw(` <span class="sort-indicator">▲</span>`)
		} else {
			h.raw(` <span class="sort-indicator">▼</span>`)
		}
	}
	h.raw(`</button>`)
	writeResizer(h, k)
	h.raw(`</th>`)
}

func writeResizer(h *html, k core.ColumnKey) {
	h.raw(`<span class="resizer" aria-hidden="true"`)
	h.attr("data-resize", string(k))
	h.raw(`></span>`)
}

func ariaSort(f core.SortField, spec core.SortSpec) string {
	if !spec.Active() || spec.Field != f {
		return "none"
	}
	if spec.Dir == core.DirAsc {
		return "ascending"
	}
	return "descending"
}

// Pager renders navigation for the current page.
func Pager(v core.View) templ.Component {
	return component(func(h *html) { writePager(h, v) })
}

func writePager(h *html, v core.View) {
	h.raw(`<nav class="pager" aria-label="Страницы">`)
	pagerButton(h, "prev", "‹ Назад", v.Page <= 1, false)
	for _, n := range pageWindow(v.Page, v.PageCount) {
		if n == 0 {
			h.raw(`<span class="pager-gap">…</span>`)
			continue
		}
		pagerButton(h, itoa(n), itoa(n), false, n == v.Page)
	}
	pagerButton(h, "next", "Вперёд ›", v.Page >= v.PageCount, false)
	h.raw(`<span class="pager-summary">Страница `, itoa(v.Page), ` из `, itoa(v.PageCount))
	h.raw(` · найдено `, itoa(v.Total), ` из `, itoa(v.Loaded), `</span></nav>`)
}

func pagerButton(h *html, target, label string, disabled, current bool) {
	h.raw(`<button type="button" class="btn pager-btn"`)
	h.attr("data-page", target)
	if disabled {
		h.raw(` disabled`)
	}
	if current {
		h.raw(` aria-current="page"`)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</button>`)
}

// pageWindow lists the page numbers to show around current, with 0 marking
// a gap. The first and last pages are always present.
func pageWindow(current, count int) []int {
	const radius = 2
	var out []int
	for n := 1; n <= count; n++ {
		if n == 1 || n == count || (n >= current-radius && n <= current+radius) {
			out = append(out, n)
			continue
		}
		if len(out) > 0 && out[len(out)-1] != 0 {
			out = append(out, 0)
		}
	}
	return out
}
