// Package filter derives facets from an in-memory event collection and
// narrows it by the user's selection. Everything here is pure; no I/O.
package filter

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"innovation-events/internal/model"
)

// Set is a selection of string keys. A nil Set means the filter is inactive.
type Set map[string]struct{}

// NewSet returns a non-nil set holding items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports whether key is selected.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Criteria is the user's current filter selection.
type Criteria struct {
	// Organizations restricts events to these organizer IDs (nil: all).
	Organizations Set
	// Virtual and InPerson select which event types are shown.
	Virtual  bool
	InPerson bool
	// Locations restricts in-person events to these cities (nil: all).
	Locations Set
	// Search is a case-insensitive substring over title, description,
	// venue name and venue city.
	Search string
	// From and To bound the start time; zero values are unbounded.
	From time.Time
	To   time.Time
}

// Counts are the per-type totals shown next to the event type toggles.
type Counts struct {
	Virtual  int `json:"virtual"`
	InPerson int `json:"in_person"`
}

// Default mirrors the initial selection: every organizer in the roster, both
// event types and every location derived from events.
func Default(roster model.Roster, events []model.Event) Criteria {
	return Criteria{
		Organizations: NewSet(roster.IDs()...),
		Virtual:       true,
		InPerson:      true,
		Locations:     NewSet(Locations(events)...),
	}
}

// Locations returns the sorted distinct cities of in-person events.
func Locations(events []model.Event) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, ev := range events {
		city := ev.City()
		if ev.Online || city == "" || seen[city] {
			continue
		}
		seen[city] = true
		out = append(out, city)
	}
	sort.Strings(out)
	return out
}

// Apply keeps the events that pass every predicate, evaluated in the order
// organization, event type, location, search text, date window.
func Apply(events []model.Event, c Criteria) []model.Event {
	m := newMatcher(c)
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if m.organization(ev) && m.eventType(ev) && m.location(ev) && m.search(ev) && m.window(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// CountByType counts virtual and in-person events that pass the organization and
// location filters. The type selection is ignored so toggling one type does not
// change the count of the other.
func CountByType(events []model.Event, c Criteria) Counts {
	m := newMatcher(c)
	var counts Counts
	for _, ev := range events {
		if !m.organization(ev) || !m.location(ev) {
			continue
		}
		if ev.Online {
			counts.Virtual++
		} else {
			counts.InPerson++
		}
	}
	return counts
}

// Matches reports whether a single event passes c.
func Matches(ev model.Event, c Criteria) bool {
	m := newMatcher(c)
	return m.organization(ev) && m.eventType(ev) && m.location(ev) && m.search(ev) && m.window(ev)
}

type matcher struct {
	c    Criteria
	fold cases.Caser
	term string
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{c: c, fold: cases.Fold()}
	if c.Search != "" {
		m.term = m.fold.String(c.Search)
	}
	return m
}

func (m *matcher) organization(ev model.Event) bool {
	return m.c.Organizations == nil || m.c.Organizations.Has(ev.OrganizerID)
}

func (m *matcher) eventType(ev model.Event) bool {
	if ev.Online {
		return m.c.Virtual
	}
	return m.c.InPerson
}

// location never applies to virtual events.
func (m *matcher) location(ev model.Event) bool {
	if ev.Online || m.c.Locations == nil {
		return true
	}
	city := ev.City()
	return city != "" && m.c.Locations.Has(city)
}

func (m *matcher) search(ev model.Event) bool {
	if m.c.Search == "" {
		return true
	}
	for _, field := range []string{ev.Title, ev.Description, ev.VenueName(), ev.City()} {
		if field != "" && strings.Contains(m.fold.String(field), m.term) {
			return true
		}
	}
	return false
}

func (m *matcher) window(ev model.Event) bool {
	if !m.c.From.IsZero() && ev.Start.Before(m.c.From) {
		return false
	}
	if !m.c.To.IsZero() && ev.Start.After(m.c.To) {
		return false
	}
	return true
}
