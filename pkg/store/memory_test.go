package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matzehuels/batchsort/pkg/pipeline"
	"github.com/matzehuels/batchsort/pkg/scene"
)

func testReport(id string, created time.Time) *pipeline.Report {
	return &pipeline.Report{
		ID:        id,
		Scene:     "menu",
		CreatedAt: created,
		Before:    4,
		After:     2,
		Panels:    []scene.PanelResult{{Panel: "HUD", Before: 4, After: 2, Applied: true}},
		Result:    &scene.Scene{Name: "menu"},
	}
}

func TestMemoryStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	rep := testReport("r1", time.Now())
	if err := s.Save(ctx, rep); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Before != 4 || got.After != 2 || len(got.Panels) != 1 {
		t.Errorf("Get = %+v", got)
	}

	got.Panels[0].Panel = "changed"
	again, _ := s.Get(ctx, "r1")
	if again.Panels[0].Panel != "HUD" {
		t.Error("modifying a loaded report changed the stored one")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreReplace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rep := testReport("r1", time.Now())
	_ = s.Save(ctx, rep)
	rep.After = 1
	_ = s.Save(ctx, rep)

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.After != 1 {
		t.Errorf("After = %d, want 1", got.After)
	}
	list, _ := s.List(ctx, 0)
	if len(list) != 1 {
		t.Errorf("List = %d entries, want 1", len(list))
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Save(ctx, testReport(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("List = %d entries, want 3", len(list))
	}
	for i, want := range []string{"r4", "r3", "r2"} {
		if list[i].ID != want {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, want)
		}
	}
}
