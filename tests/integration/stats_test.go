//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"doflin-hub/internal/model"
	"doflin-hub/internal/rarity"
)

type remainingAPIResponse struct {
	Status         string         `json:"status"`
	Remaining      map[string]int `json:"remaining"`
	TotalRemaining int            `json:"totalRemaining"`
	Source         string         `json:"source"`
}

func fetchRemaining(t *testing.T) remainingAPIResponse {
	t.Helper()

	resp := performJSONRequest(t, http.MethodGet, "/api/v1/stats/remaining", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var decoded remainingAPIResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode remaining response failed: %v", err)
	}
	return decoded
}

func TestRemaining_AllTiersPresentAndConsistent(t *testing.T) {
	decoded := fetchRemaining(t)

	if decoded.Status != "ok" {
		t.Fatalf("expected status=ok, got %q", decoded.Status)
	}
	if decoded.Source == "fallback" {
		t.Fatal("expected live stats, got fallback")
	}
	if len(decoded.Remaining) != len(rarity.Order) {
		t.Fatalf("expected %d tiers, got %d", len(rarity.Order), len(decoded.Remaining))
	}

	sum := 0
	for _, tier := range rarity.Order {
		count, ok := decoded.Remaining[string(tier)]
		if !ok {
			t.Fatalf("tier %s missing from remaining table", tier)
		}
		if count < 0 {
			t.Fatalf("tier %s has negative count %d", tier, count)
		}
		sum += count
	}
	if decoded.TotalRemaining != sum {
		t.Fatalf("totalRemaining=%d does not match sum=%d", decoded.TotalRemaining, sum)
	}
}

func TestRemaining_TracksRedemption(t *testing.T) {
	mythic := pickByRarity(t, model.RarityMythic, 0)

	before := fetchRemaining(t)

	seedBagCode(t, "STATSPACK1", 3, []int64{mythic.ID, mythic.ID}, model.BagCodeStatusActive)

	seeded := fetchRemaining(t)
	if got := seeded.Remaining[string(model.RarityMythic)]; got != before.Remaining[string(model.RarityMythic)]+2 {
		t.Fatalf("expected MYTHIC remaining to grow by 2, before=%d after=%d",
			before.Remaining[string(model.RarityMythic)], got)
	}
	if seeded.TotalRemaining != before.TotalRemaining+2 {
		t.Fatalf("expected total to grow by 2, before=%d after=%d",
			before.TotalRemaining, seeded.TotalRemaining)
	}

	resp := performJSONRequest(t, http.MethodGet, "/api/v1/reveal?code=STATSPACK1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("reveal failed with status %d: %s", resp.Code, resp.Body.String())
	}

	after := fetchRemaining(t)
	if after.TotalRemaining != before.TotalRemaining {
		t.Fatalf("expected redeemed items to leave remaining, before=%d after=%d",
			before.TotalRemaining, after.TotalRemaining)
	}
}
