package board

import (
	"time"

	"innovation-events/internal/cache"
	"innovation-events/internal/filter"
	"innovation-events/internal/model"
)

// EventView is an event annotated with its organizer's display name.
type EventView struct {
	model.Event
	OrganizerName string `json:"organizer_name"`
}

// View is what the list and calendar render for one filter selection.
type View struct {
	LoadID          string            `json:"load_id"`
	FetchedAt       time.Time         `json:"fetched_at"`
	Events          []EventView       `json:"events"`
	Counts          filter.Counts     `json:"counts"`
	Locations       []string          `json:"locations"`
	Organizers      []model.Organizer `json:"organizers"`
	NoOrganizations bool              `json:"no_organizations"`
}

// DefaultCriteria returns the initial selection for entry.
func (b *Board) DefaultCriteria(e *cache.Entry) filter.Criteria {
	return filter.Default(b.roster, e.Events)
}

// View applies c to the collection in e.
func (b *Board) View(e *cache.Entry, c filter.Criteria) View {
	names := e.Names
	if names == nil {
		names = model.NamesOf(b.roster)
	}

	matched := filter.Apply(e.Events, c)
	events := make([]EventView, 0, len(matched))
	for _, ev := range matched {
		events = append(events, EventView{Event: ev, OrganizerName: names.Lookup(ev.OrganizerID)})
	}

	roster := b.roster
	if roster == nil {
		roster = model.Roster{}
	}
	return View{
		LoadID:          e.LoadID,
		FetchedAt:       e.FetchedAt,
		Events:          events,
		Counts:          filter.CountByType(e.Events, c),
		Locations:       e.Locations,
		Organizers:      roster,
		NoOrganizations: !b.Configured(),
	}
}
