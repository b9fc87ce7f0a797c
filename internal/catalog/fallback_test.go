package catalog

import (
	"testing"

	"doflin-hub/internal/model"
	"doflin-hub/internal/rarity"
)

func TestFallbackCatalogShape(t *testing.T) {
	items := Fallback()
	if len(items) != 30 {
		t.Fatalf("expected 30 catalog items, got %d", len(items))
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.CollectionNumber != i+1 {
			t.Fatalf("item %d has collection number %d", i, item.CollectionNumber)
		}
		if !rarity.Valid(item.Rarity) {
			t.Fatalf("item %q has unknown rarity %q", item.Name, item.Rarity)
		}
		if item.Series != model.SeriesAnimals && item.Series != model.SeriesMultiverse {
			t.Fatalf("item %q has unknown series %q", item.Name, item.Series)
		}
		if item.ImageURL == "" || item.SilhouetteURL == "" {
			t.Fatalf("item %q is missing image references", item.Name)
		}
		if !item.Active {
			t.Fatalf("fallback item %q must be active", item.Name)
		}
		if _, dup := seen[item.Slug]; dup {
			t.Fatalf("duplicate slug %q", item.Slug)
		}
		seen[item.Slug] = struct{}{}
	}
}

func TestFallbackRemainingCoversAllTiers(t *testing.T) {
	remaining, total := FallbackRemaining()

	if len(remaining) != len(rarity.Order) {
		t.Fatalf("expected %d tiers, got %d", len(rarity.Order), len(remaining))
	}

	sum := 0
	for _, tier := range rarity.Order {
		count, ok := remaining[tier]
		if !ok {
			t.Fatalf("tier %s missing from remaining map", tier)
		}
		if count < 0 {
			t.Fatalf("tier %s has negative count %d", tier, count)
		}
		sum += count
	}
	if sum != total {
		t.Fatalf("total %d does not equal sum of tiers %d", total, sum)
	}
	if total != len(Fallback()) {
		t.Fatalf("total %d does not match catalog size %d", total, len(Fallback()))
	}
}
