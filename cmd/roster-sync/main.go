package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"innovation-events/internal/config"
	"innovation-events/internal/firestore"
	"innovation-events/internal/logger"
	"innovation-events/internal/store"
)

// roster-sync publishes the roster from a YAML config to Firestore and,
// when a bucket is configured, to a Cloud Storage object.
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file holding the organizers list")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "roster-sync: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	if cfg.Roster.ProjectID == "" {
		return fmt.Errorf("GCP_PROJECT_ID environment variable is required")
	}
	if err := cfg.Organizers.Validate(); err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}

	fsClient, err := firestore.New(ctx, cfg.Roster.ProjectID, cfg.Roster.Collection)
	if err != nil {
		return err
	}
	defer fsClient.Close()

	batchID := time.Now().UTC().Format("20060102-150405")
	log.Info("syncing roster", "batch_id", batchID, "organizers", len(cfg.Organizers),
		"project", cfg.Roster.ProjectID, "collection", cfg.Roster.Collection)

	if err := fsClient.ReplaceOrganizers(ctx, cfg.Organizers, batchID); err != nil {
		return fmt.Errorf("writing firestore roster: %w", err)
	}

	if cfg.Roster.Bucket != "" {
		gcsStore, err := store.NewGCS(ctx, cfg.Roster.Bucket)
		if err != nil {
			return err
		}
		defer gcsStore.Close()
		if err := store.WriteRoster(ctx, gcsStore, cfg.Roster.Object, cfg.Organizers); err != nil {
			return fmt.Errorf("writing gcs roster: %w", err)
		}
		log.Info("roster object written", "bucket", cfg.Roster.Bucket, "object", cfg.Roster.Object)
	}

	log.Info("roster sync complete", "organizers", len(cfg.Organizers))
	return nil
}
