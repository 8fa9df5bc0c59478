package records

import (
	"context"
	"testing"

	"github.com/kelpgrid/driftwatch/pkg/model"
)

func TestFavorites_RoundTrip(t *testing.T) {
	repo := NewFavorites(newTestStore(t))
	ctx := context.Background()
	key := model.Key("provider", "42")

	fav := &model.Favorite{Title: "show", SourceName: "provider", TotalEpisodes: 12}
	if err := repo.Set(ctx, "alice", key, fav); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := repo.Get(ctx, "alice", key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Title != "show" {
		t.Fatalf("unexpected favorite: %+v", got)
	}
	if got.SaveTime == 0 {
		t.Error("expected SaveTime to be stamped on first save")
	}

	all, err := repo.GetAll(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(all))
	}

	if err := repo.Delete(ctx, "alice", key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err = repo.Get(ctx, "alice", key)
	if err != nil {
		t.Fatalf("Get after Delete failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected favorite gone, got %+v", got)
	}
}

func TestFavorites_ResavePreservesSaveTime(t *testing.T) {
	repo := NewFavorites(newTestStore(t))
	ctx := context.Background()
	key := model.Key("provider", "42")

	first := &model.Favorite{Title: "show", SaveTime: 1000}
	if err := repo.Set(ctx, "alice", key, first); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second := &model.Favorite{Title: "show renamed", SaveTime: 2000}
	if err := repo.Set(ctx, "alice", key, second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := repo.Get(ctx, "alice", key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SaveTime != 1000 {
		t.Fatalf("expected original save time 1000 preserved, got %d", got.SaveTime)
	}
	if got.Title != "show renamed" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
}

func TestFavorites_HealEpisodeCount(t *testing.T) {
	repo := NewFavorites(newTestStore(t))
	ctx := context.Background()
	key := model.Key("provider", "42")

	fav := &model.Favorite{Title: "show", TotalEpisodes: model.PlaceholderEpisodes, SaveTime: 1000}
	if err := repo.Set(ctx, "alice", key, fav); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	healed, err := repo.HealEpisodeCount(ctx, "alice", key, 24)
	if err != nil {
		t.Fatalf("HealEpisodeCount failed: %v", err)
	}
	if !healed {
		t.Fatal("expected placeholder count to be healed")
	}

	got, err := repo.Get(ctx, "alice", key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TotalEpisodes != 24 {
		t.Fatalf("expected healed count 24, got %d", got.TotalEpisodes)
	}
	if got.SaveTime != 1000 {
		t.Fatalf("expected save time untouched by heal, got %d", got.SaveTime)
	}

	// A real stored count is never overwritten.
	healed, err = repo.HealEpisodeCount(ctx, "alice", key, 36)
	if err != nil {
		t.Fatalf("HealEpisodeCount failed: %v", err)
	}
	if healed {
		t.Fatal("expected non-placeholder count to be left alone")
	}

	// Healing to the placeholder itself is a no-op.
	healed, err = repo.HealEpisodeCount(ctx, "alice", key, model.PlaceholderEpisodes)
	if err != nil {
		t.Fatalf("HealEpisodeCount failed: %v", err)
	}
	if healed {
		t.Fatal("expected heal to placeholder to be ignored")
	}
}

func TestFavorites_PlaceholderNeverClobbersRealCount(t *testing.T) {
	repo := NewFavorites(newTestStore(t))
	ctx := context.Background()
	key := model.Key("provider", "42")

	if err := repo.Set(ctx, "alice", key, &model.Favorite{Title: "show", TotalEpisodes: 24}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A later save from a source still reporting the placeholder keeps
	// the known real count.
	if err := repo.Set(ctx, "alice", key, &model.Favorite{Title: "show", TotalEpisodes: model.PlaceholderEpisodes}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := repo.Get(ctx, "alice", key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TotalEpisodes != 24 {
		t.Fatalf("expected real count 24 kept, got %d", got.TotalEpisodes)
	}
}

func TestFavorites_HealMissingFavorite(t *testing.T) {
	repo := NewFavorites(newTestStore(t))
	ctx := context.Background()

	healed, err := repo.HealEpisodeCount(ctx, "alice", model.Key("provider", "absent"), 24)
	if err != nil {
		t.Fatalf("HealEpisodeCount failed: %v", err)
	}
	if healed {
		t.Fatal("expected no heal for a missing favorite")
	}
}
