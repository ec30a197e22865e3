package eventbrite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.January, 31, 10, 0, 0, 123456789, time.UTC)

// fakeAPI records every request and answers per endpoint shape.
type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	handlers map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T, handlers map[string]http.HandlerFunc) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{handlers: handlers}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r)
		f.mu.Unlock()
		shape := strings.Split(strings.TrimPrefix(r.URL.Path, "/v3/"), "/")[0]
		if h, ok := f.handlers[shape]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, NewClient(srv.URL+"/v3", "secret-token", WithClock(func() time.Time { return fixedNow }))
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

const mixedEvents = `{"events":[
 {"id":"late","name":{"text":"Late"},"description":{"text":"d"},"start":{"utc":"2025-03-01T18:00:00Z"},"status":"live","organizer_id":"A"},
 {"id":"draft","name":{"text":"Draft"},"description":{"text":""},"start":{"utc":"2025-02-01T18:00:00Z"},"status":"draft","organizer_id":"A"},
 {"id":"unlisted","name":{"text":"Hidden"},"description":{"text":""},"start":{"utc":"2025-02-01T18:00:00Z"},"status":"live","listed":false,"organizer_id":"A"},
 {"id":"tie-1","name":{"text":"Tie one"},"description":{"text":""},"start":{"utc":"2025-02-10T12:00:00Z"},"status":"live","listed":true,"organizer_id":"A"},
 {"id":"tie-2","name":{"text":"Tie two"},"description":{"html":"<p>Demo <b>Day</b></p>"},"start":{"utc":"2025-02-10T12:00:00Z"},"status":"live","organizer_id":"A",
  "online_event":false,"venue":{"name":"Volta","address":{"city":"Halifax","region":"NS"}}}
]}`

func TestOrganizerEventsRejectsBlankID(t *testing.T) {
	api, c := newFakeAPI(t, nil)

	for _, id := range []string{"", "   "} {
		events, err := c.OrganizerEvents(context.Background(), id)
		assert.Nil(t, events)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Zero(t, api.count())
}

func TestOrganizerEventsFiltersAndSorts(t *testing.T) {
	api, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"organizations": respond(mixedEvents),
	})

	events, err := c.OrganizerEvents(context.Background(), " A ")
	require.NoError(t, err)

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
		assert.Equal(t, "live", ev.Status)
		assert.True(t, ev.Listed)
	}
	assert.Equal(t, []string{"tie-1", "tie-2", "late"}, ids)
	assert.Equal(t, "Demo Day", events[1].Description)
	assert.Equal(t, "Halifax", events[1].City())
	assert.Equal(t, "Volta", events[1].VenueName())

	require.Equal(t, 1, api.count())
	req := api.requests[0]
	assert.Equal(t, "/v3/organizations/A/events/", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "live", q.Get("status"))
	assert.Equal(t, "start_asc", q.Get("order_by"))
	assert.Equal(t, "2025-01-31T10:00:00Z", q.Get("start_date.range_start"))
	assert.Equal(t, "2025-07-31T10:00:00Z", q.Get("start_date.range_end"))
	assert.Equal(t, "venue,organizer", q.Get("expand"))
	assert.Equal(t, "secret-token", q.Get("token"))
}

func TestOrganizerEventsFallsBackOnNotFound(t *testing.T) {
	api, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"organizations": status(http.StatusNotFound),
		"organizers":    respond(mixedEvents),
	})

	events, err := c.OrganizerEvents(context.Background(), "A")
	require.NoError(t, err)
	assert.Len(t, events, 3)

	require.Equal(t, 2, api.count())
	first, second := api.requests[0], api.requests[1]
	assert.Equal(t, "/v3/organizations/A/events/", first.URL.Path)
	assert.Equal(t, "/v3/organizers/A/events/", second.URL.Path)
	assert.Equal(t, first.URL.RawQuery, second.URL.RawQuery)
}

func TestOrganizerEventsFallbackNotFoundPropagates(t *testing.T) {
	api, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"organizations": status(http.StatusNotFound),
		"organizers":    status(http.StatusNotFound),
	})

	_, err := c.OrganizerEvents(context.Background(), "A")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, api.count())
}

func TestOrganizerEventsOtherFailuresAreNotRetried(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusBadRequest, http.StatusServiceUnavailable} {
		api, c := newFakeAPI(t, map[string]http.HandlerFunc{
			"organizations": status(code),
			"organizers":    respond(mixedEvents),
		})

		_, err := c.OrganizerEvents(context.Background(), "A")
		require.Error(t, err)
		assert.NotEqual(t, KindNotFound, KindOf(err))
		assert.Equal(t, 1, api.count(), "status %d", code)
	}
}

func TestWindowWholeSeconds(t *testing.T) {
	local := time.FixedZone("AST", -4*60*60)
	start, end := Window(time.Date(2024, time.August, 31, 20, 30, 15, 999, local))
	assert.Equal(t, "2024-09-01T00:30:15Z", start)
	assert.Equal(t, "2025-03-01T00:30:15Z", end)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "kept", plainText(apiText{Text: "kept", HTML: "<p>ignored</p>"}))
	assert.Equal(t, "Hello world", plainText(apiText{HTML: "<div>Hello <i>world</i></div>"}))
	assert.Equal(t, "", plainText(apiText{}))
}
