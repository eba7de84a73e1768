package web

// handlers_common.go holds request parsing and response helpers shared by
// the handlers.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/usertable/internal/core"
	json "github.com/goccy/go-json"
)

// maxFormSize bounds the body of view event posts.
const maxFormSize = 64 << 10

// errNotLoaded is returned by endpoints that need ready records.
var errNotLoaded = errors.New("records not loaded")

// invalidRequest builds an error core.MapError reports as REQ001.
func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("invalid request: "+format, args...)
}

// parseForm parses a bounded urlencoded body.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		return invalidRequest("form: %v", err)
	}
	return nil
}

// parseFilterForm reads name, gender and city. An unknown gender value is
// rejected rather than silently widening the filter.
func parseFilterForm(r *http.Request) (core.FilterCriteria, error) {
	f := core.FilterCriteria{
		Name: r.PostFormValue("name"),
		City: r.PostFormValue("city"),
	}
	if g := strings.TrimSpace(r.PostFormValue("gender")); g != "" {
		f.Gender = core.ParseGender(g)
		if f.Gender == "" {
			return core.FilterCriteria{}, invalidRequest("gender %q", g)
		}
	}
	return f, nil
}

// pageTarget is the parsed {page} path value.
type pageTarget struct {
	prev, next bool
	number     int
}

func parsePageTarget(s string) (pageTarget, error) {
	switch s {
	case "prev":
		return pageTarget{prev: true}, nil
	case "next":
		return pageTarget{next: true}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return pageTarget{}, invalidRequest("page %q", s)
	}
	return pageTarget{number: n}, nil
}

// apply runs the target against c.
func (t pageTarget) apply(c *core.Coordinator) bool {
	switch {
	case t.prev:
		return c.PrevPage()
	case t.next:
		return c.NextPage()
	default:
		return c.SetPage(t.number)
	}
}

// parseIntValue reads a required integer form value.
func parseIntValue(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.PostFormValue(name))
	if v == "" {
		return 0, invalidRequest("missing %s", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalidRequest("%s %q", name, v)
	}
	return n, nil
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
