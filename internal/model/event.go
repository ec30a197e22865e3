package model

import (
	"sort"
	"time"
)

// UnknownOrganization is shown for events whose organizer is not in the roster.
const UnknownOrganization = "Unknown Organization"

// Event represents a single published event fetched from an organizer.
type Event struct {
	ID          string    `json:"id"`
	OrganizerID string    `json:"organizer_id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end,omitempty"`
	Online      bool      `json:"online"`
	IsFree      bool      `json:"is_free"`
	Status      string    `json:"status"`
	Listed      bool      `json:"listed"`
	Venue       *Venue    `json:"venue,omitempty"`
}

// Venue is the physical location of an in-person event.
type Venue struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// Address is the postal address of a venue.
type Address struct {
	Address1 string `json:"address_1,omitempty"`
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
}

// City returns the venue city, or "" when the event has no resolvable city.
func (e Event) City() string {
	if e.Venue == nil {
		return ""
	}
	return e.Venue.Address.City
}

// VenueName returns the venue name, or "" when the event has no venue.
func (e Event) VenueName() string {
	if e.Venue == nil {
		return ""
	}
	return e.Venue.Name
}

// SortByStart orders events by start time ascending, keeping the relative
// order of events that start at the same instant.
func SortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}
