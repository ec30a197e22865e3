package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"innovation-events/internal/board"
	"innovation-events/internal/cache"
	"innovation-events/internal/calendar"
	"innovation-events/internal/filter"
	"innovation-events/internal/logger"
	"innovation-events/internal/metrics"
	"innovation-events/internal/model"
)

//go:embed templates/index.html
var templates embed.FS

const (
	calendarName   = "Innovation events"
	requestTimeout = 3 * time.Minute
	dateLayout     = "2006-01-02"
)

var errBadQuery = errors.New("invalid query")

// Previewer renders a screenshot of a page.
type Previewer interface {
	PNG(ctx context.Context, url string) ([]byte, error)
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	board      *board.Board
	metrics    *metrics.Metrics
	log        *logger.Logger
	preview    Previewer
	previewURL string
	now        func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetrics exposes m on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// WithPreview enables /preview.png, screenshotting pageURL with p.
func WithPreview(p Previewer, pageURL string) Option {
	return func(h *Handler) {
		h.preview = p
		h.previewURL = pageURL
	}
}

// WithClock overrides the time source used for calendar stamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a new Handler serving b.
func New(b *board.Board, opts ...Option) *Handler {
	h := &Handler{
		board: b,
		log:   logger.Discard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all HTTP routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.noCache(h.handleIndex))
	mux.HandleFunc("GET /events", h.noCache(h.handleEvents))
	mux.HandleFunc("GET /locations", h.noCache(h.handleLocations))
	mux.HandleFunc("GET /calendar.ics", h.noCache(h.handleCalendar))
	mux.HandleFunc("POST /refresh", h.noCache(h.handleRefresh))
	mux.HandleFunc("GET /preview.png", h.noCache(h.handlePreview))
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", h.metrics.Handler())
}

func (h *Handler) noCache(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next(w, r)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, _ := templates.ReadFile("templates/index.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	c, err := h.criteria(entry, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.board.View(entry, c))
}

func (h *Handler) handleLocations(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"locations": entry.Locations})
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	c, err := h.criteria(entry, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	events := filter.Apply(entry.Events, c)
	names := entry.Names
	if names == nil {
		names = model.NamesOf(h.board.Roster())
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	if err := calendar.Render(w, calendarName, events, names, h.now()); err != nil {
		h.log.Error("rendering calendar", "err", err)
	}
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entry, err := h.board.Retry(ctx)
	if err != nil {
		h.log.Error("refresh failed", "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, h.board.View(entry, h.board.DefaultCriteria(entry)))
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if h.preview == nil {
		http.NotFound(w, r)
		return
	}
	png, err := h.preview.PNG(r.Context(), h.previewURL)
	if err != nil {
		h.log.Error("capturing preview", "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (*cache.Entry, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entry, err := h.board.Snapshot(ctx)
	if err != nil {
		h.log.Error("loading events", "err", err)
		writeError(w, http.StatusBadGateway, err)
		return nil, false
	}
	return entry, true
}

// criteria applies query parameters on top of the default selection.
//
//	org=ID (repeatable or comma-separated; "all" disables the filter)
//	type=virtual|in-person|all
//	location=City (repeatable; "all" disables the filter)
//	q=text
//	from, to = RFC 3339 timestamp or YYYY-MM-DD
func (h *Handler) criteria(entry *cache.Entry, q url.Values) (filter.Criteria, error) {
	c := h.board.DefaultCriteria(entry)

	if orgs := listParam(q, "org"); len(orgs) > 0 {
		c.Organizations = selection(orgs)
	}
	if locs := listParam(q, "location"); len(locs) > 0 {
		c.Locations = selection(locs)
	}

	switch t := q.Get("type"); t {
	case "", "all":
	case "virtual":
		c.InPerson = false
	case "in-person":
		c.Virtual = false
	default:
		return c, fmt.Errorf("%w: type %q", errBadQuery, t)
	}

	c.Search = strings.TrimSpace(q.Get("q"))

	var err error
	if c.From, err = parseTime(q.Get("from"), false); err != nil {
		return c, fmt.Errorf("%w: from: %v", errBadQuery, err)
	}
	if c.To, err = parseTime(q.Get("to"), true); err != nil {
		return c, fmt.Errorf("%w: to: %v", errBadQuery, err)
	}
	return c, nil
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func selection(items []string) filter.Set {
	for _, it := range items {
		if it == "all" {
			return nil
		}
	}
	return filter.NewSet(items...)
}

// parseTime accepts RFC 3339 or a bare date. A bare date used as an upper
// bound covers the whole day.
func parseTime(v string, endOfDay bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
