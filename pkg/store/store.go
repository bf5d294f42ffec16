// Package store persists optimization reports so they can be fetched by ID
// after the request that produced them.
//
// Two backends are provided: [MemoryStore] for the CLI and tests, and
// [MongoStore] for a shared server deployment. Both keep the report as its
// JSON encoding together with a few indexed summary fields.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/matzehuels/batchsort/pkg/pipeline"
)

// ErrNotFound is returned by Get for an unknown report ID.
var ErrNotFound = errors.New("report not found")

// Store saves and loads reports. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save stores rep under rep.ID, replacing any previous report with the
	// same ID.
	Save(ctx context.Context, rep *pipeline.Report) error
	// Get returns the report with the given ID or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, id string) (*pipeline.Report, error)
	// List returns summaries of the most recent reports, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)
	// Close releases backend resources.
	Close() error
}

// Summary describes a stored report without its panels.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Scene     string    `json:"scene,omitempty" bson:"scene"`
	Before    int       `json:"before" bson:"before"`
	After     int       `json:"after" bson:"after"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 50

func summarize(rep *pipeline.Report) Summary {
	return Summary{
		ID:        rep.ID,
		Scene:     rep.Scene,
		Before:    rep.Before,
		After:     rep.After,
		CreatedAt: rep.CreatedAt,
	}
}

func decode(data []byte) (*pipeline.Report, error) {
	var rep pipeline.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
