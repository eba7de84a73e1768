package web

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/usertable/internal/config"
	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/JonMunkholm/usertable/internal/metrics"
	"github.com/JonMunkholm/usertable/internal/session"
	"github.com/JonMunkholm/usertable/internal/source"
	json "github.com/goccy/go-json"
)

func testRecords() []core.Record {
	return []core.Record{
		{ID: 1, LastName: "Иванов", FirstName: "Иван", MaidenName: "Иванович", Age: 40, Gender: core.GenderMale,
			Phone: "+7 900 000-00-01", Email: "ivan@example.com", Address: core.Address{Country: "Россия", City: "Москва", Street: "Арбат 1"}},
		{ID: 2, LastName: "Петрова", FirstName: "Анна", Age: 25, Gender: core.GenderFemale,
			Phone: "+7 900 000-00-02", Email: "anna@example.com", Address: core.Address{Country: "Россия", City: "Казань"}},
		{ID: 3, LastName: "Smith", FirstName: "John", Age: 33, Gender: core.GenderMale,
			Phone: "+1 555 0100", Email: "john@example.com", Address: core.Address{Country: "USA", City: "Moscow"}},
	}
}

func manyRecords(n int) []core.Record {
	out := make([]core.Record, n)
	for i := range out {
		out[i] = core.Record{ID: i + 1, LastName: "Last", FirstName: "First", Age: 20 + i, Gender: core.GenderFemale}
	}
	return out
}

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(string) string { return "" })
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Rate.Enabled = false
	cfg.Logging.Level = "error"
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

// testClient drives a Server while carrying the session cookie.
type testClient struct {
	t        *testing.T
	srv      *Server
	sessions *session.Registry
	cookie   *http.Cookie
}

func newTestClient(t *testing.T, src source.Source, mutate func(*config.Config)) *testClient {
	t.Helper()
	cfg := testConfig(t, mutate)
	m := metrics.New()
	limiter := core.NewFetchLimiter(2, time.Second)
	reg := session.NewRegistry(session.Options{Source: src, Limiter: limiter, Metrics: m})
	t.Cleanup(reg.Close)

	srv := NewServer(Deps{Config: cfg, Sessions: reg, Metrics: m, Limiter: limiter})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testClient{t: t, srv: srv, sessions: reg}
}

func staticSource(records []core.Record) source.Source {
	return source.Func(func(context.Context) ([]core.Record, error) { return records, nil })
}

func (c *testClient) do(method, path string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.srv.Router().ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == c.srv.cfg.Session.CookieName {
			c.cookie = ck
		}
	}
	return rec
}

var (
	htmx     = map[string]string{"HX-Request": "true"}
	jsonOnly = map[string]string{"Accept": "application/json"}
)

// open loads the page and waits for the session's records.
func (c *testClient) open(prefix string) {
	c.t.Helper()
	rec := c.do("GET", prefix+"/", nil, nil)
	if rec.Code != http.StatusOK {
		c.t.Fatalf("GET / status = %d", rec.Code)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.sessions.Wait(ctx); err != nil {
		c.t.Fatalf("Wait() error = %v", err)
	}
}

func (c *testClient) view(method, path string, form url.Values) core.View {
	c.t.Helper()
	rec := c.do(method, path, form, jsonOnly)
	if rec.Code != http.StatusOK {
		c.t.Fatalf("%s %s status = %d: %s", method, path, rec.Code, rec.Body.String())
	}
	var v core.View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		c.t.Fatalf("decode view: %v", err)
	}
	return v
}

func TestPage_IssuesSessionCookie(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	rec := c.do("GET", "/", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if c.cookie == nil || !c.cookie.HttpOnly || c.cookie.Path != "/" {
		t.Fatalf("session cookie = %+v", c.cookie)
	}
	if !strings.Contains(rec.Body.String(), `id="people-view"`) {
		t.Error("page missing view container")
	}
	if got := rec.Header().Get("Content-Security-Policy"); got == "" {
		t.Error("CSP header missing")
	}

	first := c.cookie.Value
	c.do("GET", "/", nil, nil)
	if c.cookie.Value != first {
		t.Error("known session should keep its cookie")
	}
	if n := c.sessions.Len(); n != 1 {
		t.Errorf("sessions = %d, want 1", n)
	}
}

func TestView_LoadingThenReady(t *testing.T) {
	release := make(chan struct{})
	src := source.Func(func(context.Context) ([]core.Record, error) {
		<-release
		return testRecords(), nil
	})
	c := newTestClient(t, src, nil)

	rec := c.do("GET", "/view", nil, htmx)
	if !strings.Contains(rec.Body.String(), `data-status="loading"`) {
		t.Errorf("expected loading fragment, got %s", rec.Body.String())
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.sessions.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	rec = c.do("GET", "/view", nil, htmx)
	body := rec.Body.String()
	if !strings.Contains(body, `data-status="ready"`) || !strings.Contains(body, "Иванов Иван Иванович") {
		t.Errorf("expected ready table, got %s", body)
	}
}

func TestFilter(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")

	v := c.view("POST", "/view/filter", url.Values{"city": {"  MOSC "}})
	if v.Total != 1 || v.Rows[0].ID != 3 {
		t.Errorf("city filter total = %d, want only Moscow", v.Total)
	}

	v = c.view("POST", "/view/filter", url.Values{"name": {"петров"}, "gender": {"female"}})
	if v.Total != 1 || v.Rows[0].ID != 2 {
		t.Errorf("name+gender filter = %d rows", v.Total)
	}

	rec := c.do("POST", "/view/filter", url.Values{"gender": {"robot"}}, jsonOnly)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "REQ001") {
		t.Errorf("invalid gender: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestFilter_FragmentForHTMX(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")

	rec := c.do("POST", "/view/filter", url.Values{"name": {"smith"}}, htmx)
	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("fragment must not include the document")
	}
	if !strings.Contains(body, "Smith John") || strings.Contains(body, "Петрова") {
		t.Errorf("fragment rows wrong: %s", body)
	}
}

func TestFilter_PlainPostRedirects(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")

	rec := c.do("POST", "/view/filter", url.Values{"name": {"x"}}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("status = %d location = %q, want 303 /", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSort_Cycle(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")

	v := c.view("POST", "/view/sort/age", nil)
	if v.Sort.Dir != core.DirAsc || v.Rows[0].ID != 2 {
		t.Errorf("first toggle = %+v first=%d, want asc with id 2", v.Sort, v.Rows[0].ID)
	}
	v = c.view("POST", "/view/sort/age", nil)
	if v.Sort.Dir != core.DirDesc || v.Rows[0].ID != 1 {
		t.Errorf("second toggle = %+v first=%d, want desc with id 1", v.Sort, v.Rows[0].ID)
	}
	v = c.view("POST", "/view/sort/age", nil)
	if v.Sort.Active() || v.Rows[0].ID != 1 || v.Rows[2].ID != 3 {
		t.Errorf("third toggle = %+v, want none in source order", v.Sort)
	}

	if rec := c.do("POST", "/view/sort/email", nil, jsonOnly); rec.Code != http.StatusBadRequest {
		t.Errorf("unsortable field status = %d, want 400", rec.Code)
	}
}

func TestPageNavigation(t *testing.T) {
	c := newTestClient(t, staticSource(manyRecords(42)), nil)
	c.open("")

	if v := c.view("POST", "/view/page/prev", nil); v.Page != 1 {
		t.Errorf("prev on page 1 = %d, want 1", v.Page)
	}
	if v := c.view("POST", "/view/page/next", nil); v.Page != 2 {
		t.Errorf("next = %d, want 2", v.Page)
	}
	v := c.view("POST", "/view/page/99", nil)
	if v.Page != 3 || len(v.Rows) != 12 {
		t.Errorf("page 99 = %d with %d rows, want 3 with 12", v.Page, len(v.Rows))
	}
	if v := c.view("POST", "/view/page/next", nil); v.Page != 3 {
		t.Errorf("next on last page = %d, want 3", v.Page)
	}

	rec := c.do("POST", "/view/page/abc", nil, jsonOnly)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"code":"REQ001"`) {
		t.Errorf("bad page: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestSelectAndDismiss(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")

	v := c.view("POST", "/view/select/2", nil)
	if v.Selected == nil || v.Selected.ID != 2 {
		t.Fatalf("Selected = %+v, want id 2", v.Selected)
	}
	if v := c.view("POST", "/view/select/999", nil); v.Selected == nil || v.Selected.ID != 2 {
		t.Errorf("unknown id should keep selection, got %+v", v.Selected)
	}

	rec := c.do("POST", "/view/select/3", nil, htmx)
	if !strings.Contains(rec.Body.String(), `role="dialog"`) {
		t.Error("fragment should contain the detail modal")
	}

	if v := c.view("POST", "/view/dismiss", nil); v.Selected != nil {
		t.Errorf("Selected after dismiss = %+v", v.Selected)
	}
	if rec := c.do("POST", "/view/select/x", nil, jsonOnly); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", rec.Code)
	}
}

func resizeCall(t *testing.T, c *testClient, path string, form url.Values) ResizeResponse {
	t.Helper()
	rec := c.do("POST", path, form, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST %s status = %d: %s", path, rec.Code, rec.Body.String())
	}
	var got ResizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode resize: %v", err)
	}
	return got
}

func TestResize(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")

	if got := resizeCall(t, c, "/view/resize/update", url.Values{"x": {"500"}}); got.Applied || got.Resizing {
		t.Errorf("update while idle = %+v, want no-op", got)
	}

	got := resizeCall(t, c, "/view/resize/begin", url.Values{"column": {"name"}, "x": {"100"}})
	if !got.Resizing || got.Column != core.ColName || got.Width != 220 {
		t.Fatalf("begin = %+v", got)
	}
	if again := resizeCall(t, c, "/view/resize/begin", url.Values{"column": {"age"}, "x": {"0"}}); again.Applied || again.Column != core.ColName {
		t.Errorf("second begin = %+v, want ignored", again)
	}

	if got := resizeCall(t, c, "/view/resize/update", url.Values{"x": {"150"}}); got.Width != 270 {
		t.Errorf("update +50 width = %d, want 270", got.Width)
	}
	if got := resizeCall(t, c, "/view/resize/update", url.Values{"x": {"1000"}}); got.Width != core.MaxColumnWidth {
		t.Errorf("update clamps to %d, got %d", core.MaxColumnWidth, got.Width)
	}
	if got := resizeCall(t, c, "/view/resize/update", url.Values{"x": {"-1000"}}); got.Width != core.MinColumnWidth {
		t.Errorf("update clamps to %d, got %d", core.MinColumnWidth, got.Width)
	}

	end := resizeCall(t, c, "/view/resize/end", nil)
	if end.Resizing || end.Column != core.ColName || end.Widths[core.ColName] != core.MinColumnWidth {
		t.Errorf("end = %+v", end)
	}
	if end.Widths[core.ColAge] != 90 {
		t.Errorf("other column width = %d, want 90", end.Widths[core.ColAge])
	}

	rec := c.do("POST", "/view/resize/begin", url.Values{"column": {"avatar"}, "x": {"1"}}, nil)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Header().Get("Content-Type"), "json") {
		t.Errorf("unknown column: status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestReload(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	src := source.Func(func(context.Context) ([]core.Record, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, context.DeadlineExceeded
		}
		return testRecords(), nil
	})
	c := newTestClient(t, src, nil)
	c.open("")

	rec := c.do("GET", "/view", nil, htmx)
	if !strings.Contains(rec.Body.String(), "LOAD004") {
		t.Fatalf("expected failed fragment with LOAD004: %s", rec.Body.String())
	}
	if v := c.view("POST", "/view/sort/name", nil); v.Sort.Active() {
		t.Error("events must be inert after a failed load")
	}

	if v := c.view("POST", "/view/reload", nil); v.Status != core.StatusLoading {
		t.Errorf("reload status = %q, want loading", v.Status)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.sessions.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if v := c.view("GET", "/api/view", nil); v.Status != core.StatusReady || v.Total != 3 {
		t.Errorf("after reload status=%q total=%d", v.Status, v.Total)
	}
}

func TestExport(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")
	c.view("POST", "/view/sort/age", nil)
	c.view("POST", "/view/filter", url.Values{"gender": {"male"}})

	rec := c.do("GET", "/api/export", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Error("missing attachment disposition")
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[1][0] != "3" || rows[2][0] != "1" {
		t.Errorf("csv ids = %s, %s, want 3 then 1 (age asc, male only)", rows[1][0], rows[2][0])
	}
}

func TestExport_NotLoaded(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	src := source.Func(func(ctx context.Context) ([]core.Record, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil, context.Canceled
	})
	c := newTestClient(t, src, nil)

	if rec := c.do("GET", "/api/export", nil, nil); rec.Code != http.StatusConflict {
		t.Errorf("export while loading status = %d, want 409", rec.Code)
	}
}

func TestBasePath(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), func(cfg *config.Config) {
		cfg.Server.BasePath = "/test-task-infotecs"
	})

	rec := c.do("GET", "/", nil, nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/test-task-infotecs/" {
		t.Errorf("root redirect = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	c.open("/test-task-infotecs")
	if c.cookie.Path != "/test-task-infotecs" {
		t.Errorf("cookie path = %q", c.cookie.Path)
	}
	if v := c.view("POST", "/test-task-infotecs/view/sort/name", nil); !v.Sort.Active() {
		t.Error("sort under base path was not applied")
	}

	rec = c.do("GET", "/test-task-infotecs/static/table.js", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "people-view") {
		t.Errorf("static asset under base path: status %d", rec.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	c := newTestClient(t, staticSource(nil), nil)
	for _, path := range []string{"/static/table.js", "/static/table.css"} {
		if rec := c.do("GET", path, nil, nil); rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, rec.Code)
		}
	}
	if c.sessions.Len() != 0 {
		t.Error("static assets must not create sessions")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")
	c.view("POST", "/view/sort/name", nil)

	var health HealthResponse
	rec := c.do("GET", "/healthz", nil, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Sessions != 1 || health.Fetches.MaxConcurrent != 2 {
		t.Errorf("health = %+v", health)
	}

	body := c.do("GET", "/metrics", nil, nil).Body.String()
	for _, want := range []string{
		`people_table_view_events_total{applied="true",event="sort"} 1`,
		`people_table_loads_total{outcome="ready"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestAPIKey(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), func(cfg *config.Config) {
		cfg.Security.RequireAPIKey = true
		cfg.Security.APIKeys = []string{"secret"}
	})

	if rec := c.do("GET", "/api/view", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key status = %d, want 401", rec.Code)
	}
	if rec := c.do("GET", "/api/view", nil, map[string]string{"X-API-Key": "secret"}); rec.Code != http.StatusOK {
		t.Errorf("with key status = %d, want 200", rec.Code)
	}
	if rec := c.do("GET", "/view", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("page routes must not need a key, got %d", rec.Code)
	}
}

func TestPlainFormErrorIsReadableText(t *testing.T) {
	c := newTestClient(t, staticSource(testRecords()), nil)
	c.open("")

	rec := c.do("POST", "/view/sort/email", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	want := "Некорректный запрос (Code: REQ001). Обновите страницу и повторите действие"
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}
