//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"doflin-hub/internal/model"
)

func TestPurchaseIntent_LinksKnownCode(t *testing.T) {
	common := pickByRarity(t, model.RarityCommon, 4)
	code := seedBagCode(t, "INTENT00001", 1, []int64{common.ID}, model.BagCodeStatusActive)

	resp := performJSONRequest(t, http.MethodPost, "/api/v1/events/purchase-intent", map[string]any{
		"code": "intent00001",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var bagCodeID *int64
	err := getEnv(t).pool.QueryRow(
		context.Background(),
		`SELECT codigo_bolsa_id FROM scan_events
		  WHERE event_type = 'purchase_intent' AND codigo_input = $1
		  ORDER BY id DESC LIMIT 1`,
		"INTENT00001",
	).Scan(&bagCodeID)
	if err != nil {
		t.Fatalf("read purchase_intent event failed: %v", err)
	}
	if bagCodeID == nil || *bagCodeID != code.ID {
		t.Fatalf("expected event linked to code %d, got %v", code.ID, bagCodeID)
	}
}

func TestTrack_PersistsUXEvent(t *testing.T) {
	resp := performJSONRequest(t, http.MethodPost, "/api/v1/events/track", map[string]any{
		"eventType": "universe_switch",
		"source":    "collection_page",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var total int
	err := getEnv(t).pool.QueryRow(
		context.Background(),
		`SELECT COUNT(*) FROM scan_events WHERE event_type = 'universe_switch'`,
	).Scan(&total)
	if err != nil {
		t.Fatalf("count universe_switch events failed: %v", err)
	}
	if total == 0 {
		t.Fatal("expected a persisted universe_switch event")
	}
}
