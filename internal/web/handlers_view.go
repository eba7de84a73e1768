package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/JonMunkholm/usertable/internal/logging"
	"github.com/JonMunkholm/usertable/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// handlePage renders the full document for the session.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r.Context()).View()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(s.base, v).Render(r.Context(), w); err != nil {
		slog.Error("render page", "error", err)
	}
}

// handleView renders the current fragment. table.js polls it while loading.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.renderView(w, r, sessionFrom(r.Context()).View())
}

// handleFilter replaces all three filter criteria.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	f, err := parseFilterForm(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.event(w, r, "filter", func(c *core.Coordinator) bool { return c.SetFilter(f) })
}

// handleSort advances the sort cycle for {field}.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "field")
	field, ok := core.ParseSortField(raw)
	if !ok {
		s.respondError(w, r, invalidRequest("sort field %q", raw), http.StatusBadRequest)
		return
	}
	s.event(w, r, "sort", func(c *core.Coordinator) bool { return c.ToggleSort(field) })
}

// handlePageNav handles prev, next and numbered page jumps.
func (s *Server) handlePageNav(w http.ResponseWriter, r *http.Request) {
	target, err := parsePageTarget(chi.URLParam(r, "page"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.event(w, r, "page", target.apply)
}

// handleSelect opens the detail view for record {id}. An unknown id is a
// no-op, not an error.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		s.respondError(w, r, invalidRequest("record id %q", raw), http.StatusBadRequest)
		return
	}
	s.event(w, r, "select", func(c *core.Coordinator) bool { return c.SelectRecord(id) })
}

// handleDismiss closes the detail view.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.event(w, r, "dismiss", (*core.Coordinator).DismissSelection)
}

// handleReload refetches all records, keeping filter, sort, page and widths.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	v, changed := s.sessions.Reload(sessionFrom(r.Context()))
	s.recordEvent(r, "reload", changed)
	s.renderView(w, r, v)
}

// event applies fn to the session's coordinator and renders the result.
func (s *Server) event(w http.ResponseWriter, r *http.Request, name string, fn func(*core.Coordinator) bool) {
	v, changed := sessionFrom(r.Context()).Apply(fn)
	s.recordEvent(r, name, changed)
	s.renderView(w, r, v)
}

func (s *Server) recordEvent(r *http.Request, name string, changed bool) {
	s.metrics.ViewEvent(name, changed)
	logging.FromContext(r.Context()).Debug("view event", "event", name, "applied", changed)
}

// renderView answers with JSON, the fragment, or a redirect back to the
// page for plain form posts without JavaScript.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, v core.View) {
	switch {
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, v)
	case r.Method == http.MethodGet || isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := templates.ViewFragment(v).Render(r.Context(), w); err != nil {
			slog.Error("render view", "error", err)
		}
	default:
		http.Redirect(w, r, s.base+"/", http.StatusSeeOther)
	}
}
