//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

func main() {
	projectID := flag.String("project", "", "GCP project ID")
	collection := flag.String("collection", "organizers", "Firestore collection name")
	batch := flag.String("batch", "", "Filter by sync batch ID (optional)")
	limit := flag.Int("limit", 0, "Max documents to return (0 for all)")
	countOnly := flag.Bool("count", false, "Only show counts per sync batch")
	flag.Parse()

	if *projectID == "" {
		log.Fatal("-project is required")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	coll := client.Collection(*collection)

	if *countOnly {
		showCounts(ctx, coll)
		return
	}

	query := coll.OrderBy("position", firestore.Asc)
	if *batch != "" {
		query = coll.Where("batch_id", "==", *batch)
	}
	if *limit > 0 {
		query = query.Limit(*limit)
	}

	iter := query.Documents(ctx)
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("Error iterating documents: %v", err)
		}

		jsonData, _ := json.MarshalIndent(doc.Data(), "", "  ")
		fmt.Printf("--- Document: %s ---\n%s\n\n", doc.Ref.ID, string(jsonData))
		count++
	}

	fmt.Printf("Total organizers shown: %d\n", count)
}

func showCounts(ctx context.Context, coll *firestore.CollectionRef) {
	counts := make(map[string]int)
	total := 0

	iter := coll.Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("Error iterating documents: %v", err)
		}

		batch, _ := doc.Data()["batch_id"].(string)
		counts[batch]++
		total++
	}

	fmt.Println("Organizers per sync batch:")
	fmt.Println("--------------------------")
	for batch, count := range counts {
		fmt.Printf("%-30s %d\n", batch, count)
	}
	fmt.Println("--------------------------")
	fmt.Printf("%-30s %d\n", "TOTAL", total)
}
