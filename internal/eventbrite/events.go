package eventbrite

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"innovation-events/internal/model"
)

const (
	windowMonths = 6
	windowLayout = "2006-01-02T15:04:05Z"

	endpointOrganizations = "organizations"
	endpointOrganizers    = "organizers"

	statusLive = "live"
)

type apiText struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

type apiTime struct {
	UTC      time.Time `json:"utc"`
	Timezone string    `json:"timezone"`
}

type apiAddress struct {
	Address1 string `json:"address_1"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
}

type apiVenue struct {
	Name    string     `json:"name"`
	Address apiAddress `json:"address"`
}

type apiEvent struct {
	ID          string    `json:"id"`
	Name        apiText   `json:"name"`
	Description apiText   `json:"description"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Start       apiTime   `json:"start"`
	End         apiTime   `json:"end"`
	OnlineEvent bool      `json:"online_event"`
	IsFree      bool      `json:"is_free"`
	Status      string    `json:"status"`
	Listed      *bool     `json:"listed"`
	OrganizerID string    `json:"organizer_id"`
	Venue       *apiVenue `json:"venue"`
}

type eventsResponse struct {
	Events []apiEvent `json:"events"`
}

// Window returns the inclusive start/end bounds of the query window
// (now through now plus six months) as whole-second UTC timestamps.
func Window(now time.Time) (start, end string) {
	now = now.UTC()
	return now.Format(windowLayout), now.AddDate(0, windowMonths, 0).Format(windowLayout)
}

// QueryParams returns the query parameters sent to both endpoint shapes.
func QueryParams(now time.Time) url.Values {
	start, end := Window(now)
	return url.Values{
		"status":                 {statusLive},
		"order_by":               {"start_asc"},
		"start_date.range_start": {start},
		"start_date.range_end":   {end},
		"expand":                 {"venue,organizer"},
	}
}

// OrganizerEvents fetches the live, listed events of one organizer, sorted by start time.
// It queries the organization-scoped endpoint first and retries once against the
// organizer-scoped endpoint when the first answers NotFound.
func (c *Client) OrganizerEvents(ctx context.Context, organizerID string) ([]model.Event, error) {
	id := strings.TrimSpace(organizerID)
	if id == "" {
		return nil, invalidArgument("Organizer ID is required")
	}

	raw, err := c.fetchEvents(ctx, id)
	if err != nil {
		c.logFailure(id, err)
		return nil, err
	}

	events := make([]model.Event, 0, len(raw))
	for _, ev := range raw {
		if ev.Status != statusLive || (ev.Listed != nil && !*ev.Listed) {
			continue
		}
		events = append(events, toModel(ev))
	}
	model.SortByStart(events)
	return events, nil
}

func (c *Client) fetchEvents(ctx context.Context, id string) ([]apiEvent, error) {
	params := QueryParams(c.now())

	events, err := c.fetchFrom(ctx, endpointOrganizations, id, params)
	if err == nil {
		return events, nil
	}
	if KindOf(err) != KindNotFound {
		return nil, err
	}

	c.metrics.ObserveFallback()
	c.log.Debug("organization not found, trying organizer endpoint", "organizer_id", id)
	return c.fetchFrom(ctx, endpointOrganizers, id, params)
}

func (c *Client) fetchFrom(ctx context.Context, shape, id string, params url.Values) ([]apiEvent, error) {
	var resp eventsResponse
	err := c.get(ctx, "/"+shape+"/"+url.PathEscape(id)+"/events/", params, &resp)
	if err != nil {
		c.metrics.ObserveRequest(shape, string(KindOf(err)))
		return nil, err
	}
	c.metrics.ObserveRequest(shape, "ok")
	return resp.Events, nil
}

func (c *Client) logFailure(id string, err error) {
	message, details := "Unknown error", err.Error()
	var apiErr *Error
	if errors.As(err, &apiErr) {
		message, details = apiErr.Message, apiErr.Details
	}
	c.log.Error("error fetching events for organizer",
		"organizer_id", id,
		"message", message,
		"details", details,
	)
}

func toModel(ev apiEvent) model.Event {
	out := model.Event{
		ID:          ev.ID,
		OrganizerID: ev.OrganizerID,
		Title:       plainText(ev.Name),
		Summary:     ev.Summary,
		Description: plainText(ev.Description),
		URL:         ev.URL,
		Start:       ev.Start.UTC.UTC(),
		End:         ev.End.UTC.UTC(),
		Online:      ev.OnlineEvent,
		IsFree:      ev.IsFree,
		Status:      ev.Status,
		Listed:      ev.Listed == nil || *ev.Listed,
	}
	if ev.Venue != nil {
		out.Venue = &model.Venue{
			Name: ev.Venue.Name,
			Address: model.Address{
				Address1: ev.Venue.Address.Address1,
				City:     ev.Venue.Address.City,
				Region:   ev.Venue.Address.Region,
				Country:  ev.Venue.Address.Country,
			},
		}
	}
	return out
}

// plainText reduces a localized text object to plain text, falling back to
// stripping the HTML variant when no text variant is present.
func plainText(t apiText) string {
	if strings.TrimSpace(t.Text) != "" || t.HTML == "" {
		return t.Text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(t.HTML))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
