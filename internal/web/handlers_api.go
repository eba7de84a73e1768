package web

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/JonMunkholm/usertable/internal/logging"
)

// handleAPIView returns the session's view snapshot as JSON.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).View())
}

// exportHeader is the CSV column order.
var exportHeader = []string{
	"id", "last_name", "first_name", "maiden_name", "age", "gender",
	"phone", "email", "country", "city", "street", "height", "weight",
}

// handleExport streams the whole filtered and sorted sequence as CSV,
// ignoring pagination.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess.Status() != core.StatusReady {
		s.respondError(w, r, errNotLoaded, http.StatusConflict)
		return
	}
	records := sess.Sorted()

	filename := "people_" + time.Now().Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		logging.FromContext(r.Context()).Error("export write failed", "error", err)
		return
	}
	for _, rec := range records {
		if err := cw.Write(exportRow(rec)); err != nil {
			logging.FromContext(r.Context()).Error("export write failed", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.FromContext(r.Context()).Error("export flush failed", "error", err)
		return
	}
	logging.FromContext(r.Context()).Info("exported records", "rows", len(records))
}

func exportRow(r core.Record) []string {
	return []string{
		strconv.Itoa(r.ID),
		r.LastName,
		r.FirstName,
		r.MaidenName,
		strconv.Itoa(r.Age),
		string(r.Gender),
		r.Phone,
		r.Email,
		r.Address.Country,
		r.Address.City,
		r.Address.Street,
		strconv.FormatFloat(r.Height, 'f', -1, 64),
		strconv.FormatFloat(r.Weight, 'f', -1, 64),
	}
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status   string                  `json:"status"`
	Sessions int                     `json:"sessions"`
	Fetches  core.FetchLimiterStatus `json:"fetches"`
}

// handleHealth reports liveness plus session and fetch slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: s.sessions.Len(),
		Fetches:  s.limiter.Status(),
	})
}
