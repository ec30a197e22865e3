// Package roster resolves the organizer roster from the configured source.
package roster

import (
	"context"
	"fmt"
	"path/filepath"

	"innovation-events/internal/config"
	"innovation-events/internal/firestore"
	"innovation-events/internal/model"
	"innovation-events/internal/store"
)

// Load returns the roster selected by cfg.Roster.Source. The roster is
// returned as found; validation happens when the board loads.
func Load(ctx context.Context, cfg *config.Config, getenv func(string) string) (model.Roster, error) {
	switch cfg.Roster.Source {
	case config.SourceConfig, "":
		if cfg.Organizers == nil {
			return model.Roster{}, nil
		}
		return cfg.Organizers, nil

	case config.SourceEnv:
		return config.ParseOrganizersEnv(getenv("DEFAULT_ORGANIZERS"))

	case config.SourceFile:
		s, err := store.NewLocal(filepath.Dir(cfg.Roster.Path))
		if err != nil {
			return nil, err
		}
		return store.ReadRoster(ctx, s, filepath.Base(cfg.Roster.Path))

	case config.SourceGCS:
		s, err := store.NewGCS(ctx, cfg.Roster.Bucket)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return store.ReadRoster(ctx, s, cfg.Roster.Object)

	case config.SourceFirestore:
		c, err := firestore.New(ctx, cfg.Roster.ProjectID, cfg.Roster.Collection)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		return c.ListOrganizers(ctx)
	}
	return nil, fmt.Errorf("roster source %q: %w", cfg.Roster.Source, config.ErrInvalidRosterSource)
}
