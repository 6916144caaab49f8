package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/antchfx/htmlquery"

	"eventcal/internal/auth"
	"eventcal/internal/civil"
	"eventcal/internal/config"
	"eventcal/internal/feed"
	"eventcal/internal/model"
	"eventcal/internal/render"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "calendar.png")
	cfg.Events = []model.Event{
		{Title: "Offsite", Start: civil.MustParse("2024-02-05"), End: civil.MustParse("2024-02-07"), Permalink: "https://example.com/offsite"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	store := feed.NewStore(cfg, nil)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	s := NewServer(cfg, store)
	s.now = func() time.Time { return time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC) }
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestCalendarPage(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/calendar")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	doc, err := htmlquery.Parse(rec.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if htmlquery.FindOne(doc, `//div[@data-ready="true"]`) == nil {
		t.Errorf("page lacks the ready marker")
	}
	if got := htmlquery.InnerText(htmlquery.FindOne(doc, `//span[@class="calendar-caption"]`)); got != "February 2024" {
		t.Errorf("caption = %q", got)
	}
	if htmlquery.FindOne(doc, `//span[contains(@class,"month-event-title")]`) == nil {
		t.Errorf("static event not rendered")
	}
}

func TestFragment(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec := get(t, h, "/calendar/fragment?month=2024-02&base_month=garbage&months=2&prev=0&next=1&navigation=1&holidays=all")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(body, "<!DOCTYPE") {
		t.Errorf("fragment contains a document")
	}
	doc, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	captions := htmlquery.Find(doc, `//span[@class="calendar-caption"]`)
	if len(captions) != 2 || htmlquery.InnerText(captions[1]) != "March 2024" {
		t.Fatalf("captions = %d", len(captions))
	}

	prev := htmlquery.Find(doc, `//button[contains(@class,"month-prev")]`)
	next := htmlquery.Find(doc, `//button[contains(@class,"month-next")]`)
	if len(prev) != 2 || len(next) != 2 {
		t.Fatalf("buttons = %d/%d", len(prev), len(next))
	}
	// The bad base falls back to February: prev=0 pins it, next=1 allows March only.
	if htmlquery.SelectAttr(prev[0], "disabled") == "" {
		t.Errorf("February prev enabled")
	}
	if htmlquery.SelectAttr(next[0], "disabled") != "" {
		t.Errorf("February next disabled")
	}
	if htmlquery.SelectAttr(next[1], "disabled") == "" {
		t.Errorf("March next enabled past the limit")
	}

	href, err := url.Parse(htmlquery.SelectAttr(next[0], "data-href"))
	if err != nil {
		t.Fatalf("href: %v", err)
	}
	if href.Path != "/calendar/fragment" || href.Query().Get("month") != "2024-3" || href.Query().Get("base_month") != "2024-2" || href.Query().Get("months") != "2" {
		t.Errorf("next href = %s", href)
	}
}

func TestFragmentBadMonth(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/calendar/fragment?month=soon")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSimple(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/simple?month=2024-2&caption_color=%23fff")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc, err := htmlquery.Parse(rec.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if htmlquery.FindOne(doc, `//div[contains(@class,"xo-simple-calendar-table")]`) == nil {
		t.Errorf("simple calendar missing")
	}
	if htmlquery.FindOne(doc, `//span[contains(@class,"month-event-title")]`) != nil {
		t.Errorf("simple calendar rendered events")
	}
	if got := htmlquery.SelectAttr(htmlquery.FindOne(doc, "//caption"), "style"); got != "color:#fff;" {
		t.Errorf("caption style = %q", got)
	}
}

func TestMonthsAPI(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/api/months?month=2024-02&event=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var doc struct {
		Months []struct {
			Month  string        `json:"month"`
			Events []model.Event `json:"events"`
		} `json:"months"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Months) != 1 || doc.Months[0].Month != "2024-2" || len(doc.Months[0].Events) != 1 {
		t.Errorf("months = %+v", doc.Months)
	}

	rec = get(t, newTestServer(t, nil).Handler(), "/api/months?month=2024-02&event=0")
	if strings.Contains(rec.Body.String(), "Offsite") {
		t.Errorf("event=0 still returned events")
	}
}

func TestRefresh(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	if rec := get(t, h, "/api/refresh"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET refresh = %d", rec.Code)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"events":1`) {
		t.Errorf("POST refresh = %d %s", rec.Code, rec.Body.String())
	}
}

func TestPreviewAndStatic(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()
	if rec := get(t, h, "/preview.png"); rec.Code != http.StatusNotFound {
		t.Errorf("missing preview = %d", rec.Code)
	}
	if err := os.WriteFile(s.cfg.SnapshotPath, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if rec := get(t, h, "/preview.png"); rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("preview = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	for _, path := range []string{"/static/calendar.css", "/static/calendar.js"} {
		if rec := get(t, h, path); rec.Code != http.StatusOK {
			t.Errorf("%s = %d", path, rec.Code)
		}
	}
	if rec := get(t, h, "/"); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/calendar" {
		t.Errorf("root = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestBasicAuth(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "admin", PasswordHash: hash}
	}).Handler()

	if rec := get(t, h, "/health"); rec.Code != http.StatusOK {
		t.Errorf("health behind auth = %d", rec.Code)
	}
	if rec := get(t, h, "/calendar"); rec.Code != http.StatusUnauthorized || rec.Header().Get("WWW-Authenticate") == "" {
		t.Errorf("anonymous = %d", rec.Code)
	}

	tests := []struct {
		user, pass string
		want       int
	}{
		{"admin", "s3cret", http.StatusOK},
		{"admin", "s3cret", http.StatusOK},
		{"admin", "wrong", http.StatusUnauthorized},
		{"root", "s3cret", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/calendar", nil)
		req.SetBasicAuth(tt.user, tt.pass)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s/%s = %d, want %d", tt.user, tt.pass, rec.Code, tt.want)
		}
	}
}

func TestParseQuery(t *testing.T) {
	def := render.Query{
		Month:       civil.Month{Year: 2024, Month: 2},
		Base:        civil.Month{Year: 2024, Month: 2},
		Months:      1,
		PrevLimit:   -1,
		NextLimit:   -1,
		Holidays:    []string{"all"},
		ShowEvents:  true,
		Navigation:  true,
		Columns:     1,
		Variant:     "event",
		StartOfWeek: 0,
	}
	tests := []struct {
		name  string
		raw   string
		check func(render.Query) bool
	}{
		{"defaults", "", func(q render.Query) bool { return q.Month == def.Month && q.Months == 1 }},
		{"month sets base", "month=2025-11", func(q render.Query) bool {
			return q.Month == (civil.Month{Year: 2025, Month: 11}) && q.Base == q.Month
		}},
		{"month clamps", "month=2025-13", func(q render.Query) bool { return q.Month.Month == 12 }},
		{"explicit base", "month=2025-11&base_month=2025-09", func(q render.Query) bool { return q.Base == (civil.Month{Year: 2025, Month: 9}) }},
		{"months bounded", "months=100", func(q render.Query) bool { return q.Months == maxMonths }},
		{"months floor", "months=0", func(q render.Query) bool { return q.Months == 1 }},
		{"bad start of week", "start_of_week=9", func(q render.Query) bool { return q.StartOfWeek == 0 }},
		{"monday start", "start_of_week=1", func(q render.Query) bool { return q.StartOfWeek == 1 }},
		{"limits", "prev=3&next=-7", func(q render.Query) bool { return q.PrevLimit == 3 && q.NextLimit == -1 }},
		{"empty holidays", "holidays=", func(q render.Query) bool { return len(q.Holidays) == 0 }},
		{"booleans", "event=0&navigation=", func(q render.Query) bool { return !q.ShowEvents && !q.Navigation }},
		{"unknown variant", "variant=poster", func(q render.Query) bool { return q.Variant == "event" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			q, err := parseQuery(v, def)
			if err != nil {
				t.Fatalf("parseQuery: %v", err)
			}
			if !tt.check(q) {
				t.Errorf("unexpected query %+v", q)
			}
		})
	}
}
