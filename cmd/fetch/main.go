package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"innovation-events/internal/aggregator"
	"innovation-events/internal/board"
	"innovation-events/internal/cache"
	"innovation-events/internal/calendar"
	"innovation-events/internal/config"
	"innovation-events/internal/eventbrite"
	"innovation-events/internal/filter"
	"innovation-events/internal/logger"
	"innovation-events/internal/roster"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	orgs := flag.String("org", "", "comma-separated organizer IDs to keep (default: all)")
	eventType := flag.String("type", "all", "virtual, in-person or all")
	locations := flag.String("location", "", "comma-separated cities to keep (default: all)")
	search := flag.String("q", "", "search text")
	format := flag.String("format", "json", "json or ics")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(fmt.Errorf("invalid config: %w", err))
	}
	log := logger.New(cfg.LogLevel)

	organizers, err := roster.Load(ctx, cfg, os.Getenv)
	if err != nil {
		fatal(fmt.Errorf("loading roster: %w", err))
	}

	client := eventbrite.NewClient(cfg.Eventbrite.APIBase, cfg.Eventbrite.Token,
		eventbrite.WithTimeout(cfg.Eventbrite.Timeout),
		eventbrite.WithLogger(log),
	)
	agg := aggregator.New(client,
		aggregator.WithMaxConcurrency(cfg.Aggregation.MaxConcurrency),
		aggregator.WithBudget(cfg.Aggregation.Budget),
		aggregator.WithLogger(log),
	)
	b := board.New(organizers, agg, cache.New(0), board.WithLogger(log))

	entry, err := b.Load(ctx)
	if err != nil {
		fatal(err)
	}

	c := b.DefaultCriteria(entry)
	if *orgs != "" {
		c.Organizations = filter.NewSet(split(*orgs)...)
	}
	if *locations != "" {
		c.Locations = filter.NewSet(split(*locations)...)
	}
	switch *eventType {
	case "all":
	case "virtual":
		c.InPerson = false
	case "in-person":
		c.Virtual = false
	default:
		fatal(fmt.Errorf("unknown event type %q", *eventType))
	}
	c.Search = *search

	switch *format {
	case "ics":
		err = calendar.Render(os.Stdout, "Innovation events", filter.Apply(entry.Events, c), entry.Names, time.Now())
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(b.View(entry, c))
	}
	if err != nil {
		fatal(err)
	}
}

func split(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
	os.Exit(1)
}
