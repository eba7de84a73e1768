package templates

import (
	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/a-h/templ"
)

// Page renders the full document around the current view. base is the
// mount prefix used for every asset and endpoint URL.
func Page(base string, v core.View) templ.Component {
	return component(func(h *html) {
		h.raw(`<!DOCTYPE html><html lang="ru"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>Пользователи</title>`)
		h.raw(`<link rel="stylesheet"`)
		h.attr("href", base+"/static/table.css")
		h.raw(`><script defer`)
		h.attr("src", base+"/static/table.js")
		h.raw(`></script></head><body>`)
		h.raw(`<header class="page-header"><h1>Пользователи</h1></header>`)
		h.raw(`<main id="people-view"`)
		h.attr("data-base", base)
		h.raw(`>`)
		writeView(h, v)
		h.raw(`</main></body></html>`)
	})
}

// ViewFragment renders the swappable contents of #people-view.
func ViewFragment(v core.View) templ.Component {
	return component(func(h *html) { writeView(h, v) })
}

func writeView(h *html, v core.View) {
	switch v.Status {
	case core.StatusLoading:
		writeLoading(h)
	case core.StatusFailed:
		msg := core.UserMessage{}
		if v.Error != nil {
			msg = *v.Error
		}
		writeFailed(h, msg)
	default:
		writeReady(h, v)
	}
}

func writeLoading(h *html) {
	h.raw(`<div class="status status-loading" data-status="loading" aria-busy="true">`)
	h.raw(`<span class="spinner"></span> Загрузка…</div>`)
}

func writeFailed(h *html, msg core.UserMessage) {
	h.raw(`<div class="status status-failed" data-status="failed">`)
	writeErrorAlert(h, msg.Message, msg.Action, msg.Code)
	h.raw(`<button type="button" class="btn" data-action="reload">Повторить</button></div>`)
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(h *html) { writeErrorAlert(h, message, action, code) })
}

func writeErrorAlert(h *html, message, action, code string) {
	h.raw(`<div class="alert" role="alert"><p class="alert-message">`)
	h.text(message)
	h.raw(`</p>`)
	if action != "" {
		h.raw(`<p class="alert-action">`)
		h.text(action)
		h.raw(`</p>`)
	}
	if code != "" {
		h.raw(`<p class="alert-code">Код: `)
		h.text(code)
		h.raw(`</p>`)
	}
	h.raw(`</div>`)
}

func writeReady(h *html, v core.View) {
	h.raw(`<div class="people" data-status="ready">`)
	writeFilters(h, v.Filter)
	writeTable(h, v)
	writePager(h, v)
	h.raw(`</div>`)
	if v.Selected != nil {
		writeDetail(h, *v.Selected)
	}
}

func writeFilters(h *html, f core.FilterCriteria) {
	h.raw(`<form class="filters" data-action="filter" autocomplete="off">`)
	h.raw(`<label>ФИО <input type="search" name="name"`)
	h.attr("value", f.Name)
	h.raw(`></label>`)

	h.raw(`<label>Пол <select name="gender">`)
	for _, opt := range []struct {
		value core.Gender
		label string
	}{
		{"", "Все"},
		{core.GenderMale, "Мужской"},
		{core.GenderFemale, "Женский"},
	} {
		h.raw(`<option`)
		h.attr("value", string(opt.value))
		if opt.value == f.Gender {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(opt.label)
		h.raw(`</option>`)
	}
	h.raw(`</select></label>`)

	h.raw(`<label>Город <input type="search" name="city"`)
	h.attr("value", f.City)
	h.raw(`></label></form>`)
}
