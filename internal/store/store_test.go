package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is only meaningful with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestStruggleUpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.StruggleRepo()
	ctx := context.Background()

	got, err := repo.Get(ctx, "sess-1", "q-1")
	if err != nil {
		t.Fatalf("get on empty store: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil record, got %+v", got)
	}

	rec := &StruggleRecord{
		SessionID:   "sess-1",
		QuestionID:  "q-1",
		Description: "cannot isolate the variable",
		Clarity:     "clear",
		Confidence:  0.9,
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Upsert again with changed fields replaces the row.
	rec.Description = "sign errors when moving terms"
	rec.Confidence = 0.85
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err = repo.Get(ctx, "sess-1", "q-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.Description != "sign errors when moving terms" {
		t.Errorf("description = %q, want updated value", got.Description)
	}
	if got.Confidence != 0.85 {
		t.Errorf("confidence = %f, want 0.85", got.Confidence)
	}
	if got.ConfirmedAt.IsZero() {
		t.Error("confirmed_at should be set on upsert")
	}
}

func TestDifficultyUpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.DifficultyRepo()
	ctx := context.Background()

	rec := &DifficultyRecord{
		UserID:        "user-1",
		Topic:         "linear_equation",
		Level:         2,
		Attempts:      7,
		Successes:     5,
		AvgConfidence: 0.72,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Get(ctx, "user-1", "linear_equation")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Level != 2 || got.Attempts != 7 || got.Successes != 5 {
		t.Errorf("got %+v, want level 2, attempts 7, successes 5", got)
	}

	got, err = repo.Get(ctx, "user-1", "trigonometry")
	if err != nil {
		t.Fatalf("get missing topic: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing topic, got %+v", got)
	}
}

func TestHintEventAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	repo := s.HintEventRepo()
	ctx := context.Background()

	for i, source := range []string{"instant", "generated", "cached"} {
		err := repo.Append(ctx, HintEventData{
			SessionID:    "sess-1",
			QuestionType: "triangle_area",
			Source:       source,
			LatencyMs:    int64(10 * (i + 1)),
			Tokens:       i * 100,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Newest first.
	if events[0].Source != "cached" {
		t.Errorf("newest event source = %q, want cached", events[0].Source)
	}
}

func TestStorageErrorWrapping(t *testing.T) {
	s := openTestStore(t)
	s.Close() // force failures

	err := s.HintEventRepo().Append(context.Background(), HintEventData{})
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StorageError, got %T: %v", err, err)
	}
	if serr.Op != "hint_event.append" {
		t.Errorf("op = %q, want hint_event.append", serr.Op)
	}
}
