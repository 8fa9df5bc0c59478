package records

import (
	"context"
	"fmt"
	"testing"
)

func TestSearchHistory_AddAndList(t *testing.T) {
	repo := NewSearchHistory(newTestStore(t))
	ctx := context.Background()

	history, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List on empty history failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %v", history)
	}

	for _, q := range []string{"first", "second", "third"} {
		if err := repo.Add(ctx, "alice", q); err != nil {
			t.Fatalf("Add(%q) failed: %v", q, err)
		}
	}

	history, err = repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(history) != len(want) {
		t.Fatalf("expected %v, got %v", want, history)
	}
	for i := range want {
		if history[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, history)
		}
	}
}

func TestSearchHistory_DedupMovesToFront(t *testing.T) {
	repo := NewSearchHistory(newTestStore(t))
	ctx := context.Background()

	for _, q := range []string{"first", "second", "first"} {
		if err := repo.Add(ctx, "alice", q); err != nil {
			t.Fatalf("Add(%q) failed: %v", q, err)
		}
	}

	history, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(history) != 2 || history[0] != "first" || history[1] != "second" {
		t.Fatalf("expected [first second], got %v", history)
	}
}

func TestSearchHistory_CapEnforced(t *testing.T) {
	repo := NewSearchHistory(newTestStore(t))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if err := repo.Add(ctx, "alice", fmt.Sprintf("query-%d", i)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	history, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(history) != SearchHistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", SearchHistoryLimit, len(history))
	}
	if history[0] != "query-24" {
		t.Fatalf("expected most recent query first, got %q", history[0])
	}
	if history[len(history)-1] != "query-5" {
		t.Fatalf("expected oldest surviving query last, got %q", history[len(history)-1])
	}
}

func TestSearchHistory_BlankQueriesIgnored(t *testing.T) {
	repo := NewSearchHistory(newTestStore(t))
	ctx := context.Background()

	if err := repo.Add(ctx, "alice", "   "); err != nil {
		t.Fatalf("Add of blank query failed: %v", err)
	}
	history, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected blank query dropped, got %v", history)
	}
}

func TestSearchHistory_DeleteAndClear(t *testing.T) {
	repo := NewSearchHistory(newTestStore(t))
	ctx := context.Background()

	for _, q := range []string{"keep", "drop"} {
		if err := repo.Add(ctx, "alice", q); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if err := repo.Delete(ctx, "alice", "drop"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "alice", "absent"); err != nil {
		t.Fatalf("Delete of absent query failed: %v", err)
	}

	history, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(history) != 1 || history[0] != "keep" {
		t.Fatalf("expected [keep], got %v", history)
	}

	if err := repo.Clear(ctx, "alice"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	history, err = repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List after Clear failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history after clear, got %v", history)
	}
}
