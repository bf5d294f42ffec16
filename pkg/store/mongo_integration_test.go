//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Run with: BATCHSORT_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./pkg/store
func TestMongoStoreIntegration(t *testing.T) {
	uri := os.Getenv("BATCHSORT_MONGO_URI")
	if uri == "" {
		t.Skip("BATCHSORT_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, uri, "batchsort_test")
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer s.Close()

	id := uuid.NewString()
	if err := s.Save(ctx, testReport(id, time.Now().UTC())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id || got.After != 2 {
		t.Errorf("Get = %+v", got)
	}
	if _, err := s.Get(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing report: err = %v, want ErrNotFound", err)
	}
	list, err := s.List(ctx, 10)
	if err != nil || len(list) == 0 {
		t.Errorf("List = %v, %v", list, err)
	}
}
