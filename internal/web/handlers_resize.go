package web

import (
	"net/http"

	"github.com/JonMunkholm/usertable/internal/core"
)

// ResizeResponse reports the drag state after a resize event. table.js
// attaches its document listeners only when Resizing is true.
type ResizeResponse struct {
	Resizing bool                   `json:"resizing"`
	Column   core.ColumnKey         `json:"column,omitempty"`
	Width    int                    `json:"width,omitempty"`
	Widths   map[core.ColumnKey]int `json:"widths"`
	Applied  bool                   `json:"applied"`
}

// handleResizeBegin starts a drag on column at pointer x.
func (s *Server) handleResizeBegin(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	raw := r.PostFormValue("column")
	col, ok := core.ParseColumnKey(raw)
	if !ok {
		s.respondError(w, r, invalidRequest("column %q", raw), http.StatusBadRequest)
		return
	}
	x, err := parseIntValue(r, "x")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.resize(w, r, "resize_begin", func(c *core.Coordinator) bool { return c.BeginResize(col, x) })
}

// handleResizeUpdate moves the active drag to pointer x.
func (s *Server) handleResizeUpdate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	x, err := parseIntValue(r, "x")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.resize(w, r, "resize_update", func(c *core.Coordinator) bool { return c.UpdateResize(x) })
}

// handleResizeEnd finishes the drag. The final pointer position is not
// applied; the width is whatever the last update set.
func (s *Server) handleResizeEnd(w http.ResponseWriter, r *http.Request) {
	s.resize(w, r, "resize_end", (*core.Coordinator).EndResize)
}

func (s *Server) resize(w http.ResponseWriter, r *http.Request, name string, fn func(*core.Coordinator) bool) {
	var col core.ColumnKey
	v, changed := sessionFrom(r.Context()).Apply(func(c *core.Coordinator) bool {
		col = c.State().Layout.Drag().Column
		ok := fn(c)
		if d := c.State().Layout.Drag(); d.Active {
			col = d.Column
		}
		return ok
	})
	s.recordEvent(r, name, changed)

	writeJSON(w, http.StatusOK, ResizeResponse{
		Resizing: v.Resize.Active,
		Column:   col,
		Width:    v.Widths[col],
		Widths:   v.Widths,
		Applied:  changed,
	})
}
