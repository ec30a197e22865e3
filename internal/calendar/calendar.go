// Package calendar exports events as an iCalendar feed.
package calendar

import (
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"innovation-events/internal/model"
)

const productID = "-//innovation-events//event board//EN"

// UID returns the stable calendar UID of an Eventbrite event.
func UID(ev model.Event) string {
	return ev.ID + "@eventbrite.com"
}

// Location is the LOCATION value for ev: "venue, city" for in-person events
// and "Online" for virtual ones.
func Location(ev model.Event) string {
	if ev.Online {
		return "Online"
	}
	parts := make([]string, 0, 2)
	if name := ev.VenueName(); name != "" {
		parts = append(parts, name)
	}
	if city := ev.City(); city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

// Build assembles a calendar named name holding events. Organizer names are
// resolved through names.
func Build(name string, events []model.Event, names model.Names, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	for _, ev := range events {
		ve := cal.AddEvent(UID(ev))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(ev.Start.UTC())
		if !ev.End.IsZero() {
			ve.SetEndAt(ev.End.UTC())
		}
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if loc := Location(ev); loc != "" {
			ve.SetLocation(loc)
		}
		if ev.URL != "" {
			ve.SetURL(ev.URL)
		}
		ve.SetOrganizer("mailto:noreply@eventbrite.com", ics.WithCN(names.Lookup(ev.OrganizerID)))
	}
	return cal
}

// Render writes the calendar for events to w.
func Render(w io.Writer, name string, events []model.Event, names model.Names, stamp time.Time) error {
	return Build(name, events, names, stamp).SerializeTo(w)
}
