// Package firestore keeps the organizer roster in a Firestore collection.
package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"innovation-events/internal/model"
)

const batchSize = 250 // Stay well under Firestore's 500 operation limit

// Client wraps the Firestore client for roster operations.
type Client struct {
	client     *firestore.Client
	collection string
}

// New creates a new Firestore client.
func New(ctx context.Context, projectID, collection string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Client{
		client:     client,
		collection: collection,
	}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.client.Close()
}

// ListOrganizers returns the roster ordered by its stored position.
func (c *Client) ListOrganizers(ctx context.Context) (model.Roster, error) {
	roster := model.Roster{}

	iter := c.client.Collection(c.collection).OrderBy("position", firestore.Asc).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating documents: %w", err)
		}
		roster = append(roster, mapToOrganizer(doc.Data()))
	}

	return roster, nil
}

// ReplaceOrganizers replaces the whole roster collection with r.
// It deletes all existing documents, then writes the new ones.
func (c *Client) ReplaceOrganizers(ctx context.Context, r model.Roster, batchID string) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}

	coll := c.client.Collection(c.collection)
	if err := c.deleteAll(ctx); err != nil {
		return fmt.Errorf("deleting existing organizers: %w", err)
	}

	for i := 0; i < len(r); i += batchSize {
		end := min(i+batchSize, len(r))
		batch := c.client.Batch()
		for pos := i; pos < end; pos++ {
			batch.Set(coll.Doc(DocID(r[pos].ID)), organizerToMap(r[pos], pos, batchID))
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing batch: %w", err)
		}
	}

	return nil
}

func (c *Client) deleteAll(ctx context.Context) error {
	coll := c.client.Collection(c.collection)

	for {
		iter := coll.Limit(batchSize).Documents(ctx)
		batch := c.client.Batch()
		numDeleted := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return fmt.Errorf("iterating documents: %w", err)
			}
			batch.Delete(doc.Ref)
			numDeleted++
		}
		iter.Stop()

		if numDeleted == 0 {
			return nil
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing delete batch: %w", err)
		}
		if numDeleted < batchSize {
			return nil
		}
	}
}

// DocID is the document ID for an organizer.
func DocID(organizerID string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(organizerID)))
	return hex.EncodeToString(hash[:16])
}

func organizerToMap(o model.Organizer, position int, batchID string) map[string]interface{} {
	return map[string]interface{}{
		"id":       strings.TrimSpace(o.ID),
		"name":     o.Name,
		"position": position,
		"batch_id": batchID,
	}
}

func mapToOrganizer(m map[string]interface{}) model.Organizer {
	var o model.Organizer
	switch v := m["id"].(type) {
	case string:
		o.ID = v
	case int64:
		o.ID = fmt.Sprint(v)
	}
	if v, ok := m["name"].(string); ok {
		o.Name = v
	}
	return o
}
