package calendar

import (
	"bytes"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innovation-events/internal/model"
)

var base = time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)

func TestLocation(t *testing.T) {
	assert.Equal(t, "Online", Location(model.Event{Online: true}))
	assert.Equal(t, "Volta, Halifax", Location(model.Event{
		Venue: &model.Venue{Name: "Volta", Address: model.Address{City: "Halifax"}},
	}))
	assert.Equal(t, "Halifax", Location(model.Event{Venue: &model.Venue{Address: model.Address{City: "Halifax"}}}))
	assert.Equal(t, "", Location(model.Event{}))
}

func TestRenderRoundTrip(t *testing.T) {
	events := []model.Event{
		{ID: "101", OrganizerID: "A", Title: "Demo day", Start: base, End: base.Add(2 * time.Hour), URL: "https://example.com/e/101", Online: true},
		{ID: "102", OrganizerID: "ghost", Title: "Meetup", Start: base.Add(24 * time.Hour)},
	}
	names := model.NamesOf(model.Roster{{ID: "A", Name: "Volta"}})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "Innovation events", events, names, base))

	raw := buf.String()
	assert.Contains(t, raw, "BEGIN:VCALENDAR")
	assert.Contains(t, raw, "UID:101@eventbrite.com")
	assert.Contains(t, raw, "CN=Volta")
	assert.Contains(t, raw, model.UnknownOrganization)

	cal, err := ics.ParseCalendar(&buf)
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)
	assert.Equal(t, "101@eventbrite.com", parsed[0].Id())

	start, err := parsed[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(base))
	end, err := parsed[0].GetEndAt()
	require.NoError(t, err)
	assert.True(t, end.Equal(base.Add(2*time.Hour)))

	assert.Equal(t, "Online", parsed[0].GetProperty(ics.ComponentPropertyLocation).Value)
	assert.Equal(t, "Meetup", parsed[1].GetProperty(ics.ComponentPropertySummary).Value)
	assert.Nil(t, parsed[1].GetProperty(ics.ComponentPropertyDtEnd))
}
