package model

import (
	"errors"
	"fmt"
	"strings"
)

// Roster validation errors.
var (
	ErrEmptyOrganizerID     = errors.New("organizer id is empty")
	ErrDuplicateOrganizerID = errors.New("duplicate organizer id")
)

// Organizer is an account on the event platform whose events are aggregated.
type Organizer struct {
	ID   string `json:"id" yaml:"id" firestore:"id"`
	Name string `json:"name" yaml:"name" firestore:"name"`
}

// Roster is the ordered list of configured organizers.
type Roster []Organizer

// IDs returns the organizer IDs in roster order.
func (r Roster) IDs() []string {
	ids := make([]string, 0, len(r))
	for _, o := range r {
		ids = append(ids, o.ID)
	}
	return ids
}

// Validate checks that every organizer has a non-blank, unique ID.
func (r Roster) Validate() error {
	seen := make(map[string]bool, len(r))
	for i, o := range r {
		id := strings.TrimSpace(o.ID)
		if id == "" {
			return fmt.Errorf("roster entry %d (%q): %w", i, o.Name, ErrEmptyOrganizerID)
		}
		if seen[id] {
			return fmt.Errorf("roster entry %d (%q): %w", i, id, ErrDuplicateOrganizerID)
		}
		seen[id] = true
	}
	return nil
}

// Names maps organizer IDs to display names.
type Names map[string]string

// NamesOf builds the ID to name lookup for a roster.
func NamesOf(r Roster) Names {
	n := make(Names, len(r))
	for _, o := range r {
		n[o.ID] = o.Name
	}
	return n
}

// Lookup returns the display name for an organizer ID, falling back to
// UnknownOrganization for IDs outside the roster.
func (n Names) Lookup(id string) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return UnknownOrganization
}
