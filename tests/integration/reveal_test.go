//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"doflin-hub/internal/model"
)

type revealAPIResponse struct {
	Status        string            `json:"status"`
	Code          string            `json:"code"`
	PackSize      int               `json:"packSize"`
	FirstScan     bool              `json:"firstScan"`
	Doflins       []revealAPIDoflin `json:"doflins"`
	HighestRarity string            `json:"highestRarity"`
	UsedAt        string            `json:"usedAt"`
	ScanCount     int               `json:"scanCount"`
}

type revealAPIDoflin struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Series           string `json:"series"`
	CollectionNumber int    `json:"collectionNumber"`
	TotalCollection  int64  `json:"totalCollection"`
	Rarity           string `json:"rarity"`
	Probability      int    `json:"probability"`
	ImageURL         string `json:"imageUrl"`
}

type revealAPIError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeRevealResponse(t *testing.T, body []byte) revealAPIResponse {
	t.Helper()

	var decoded revealAPIResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode reveal response failed: %v", err)
	}
	return decoded
}

func decodeRevealError(t *testing.T, body []byte) revealAPIError {
	t.Helper()

	var decoded revealAPIError
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode reveal error failed: %v", err)
	}
	return decoded
}

func pickByRarity(t *testing.T, tier model.Rarity, skip int) model.Doflin {
	t.Helper()

	count := 0
	for _, item := range getEnv(t).catalog {
		if item.Rarity != tier {
			continue
		}
		if count == skip {
			return item
		}
		count++
	}
	t.Fatalf("no catalog entry with rarity %s at offset %d", tier, skip)
	return model.Doflin{}
}

func TestReveal_FirstScanThenRepeat(t *testing.T) {
	common := pickByRarity(t, model.RarityCommon, 0)
	rare := pickByRarity(t, model.RarityRare, 0)
	epic := pickByRarity(t, model.RarityEpic, 0)
	seedBagCode(t, "REVEAL3PACK", 3, []int64{common.ID, rare.ID, epic.ID}, model.BagCodeStatusActive)

	resp := performJSONRequest(t, http.MethodGet, "/api/v1/reveal?code=REVEAL3PACK", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if cc := resp.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("expected Cache-Control=no-store, got %q", cc)
	}

	first := decodeRevealResponse(t, resp.Body.Bytes())
	if first.Status != "ok" {
		t.Fatalf("expected status=ok, got %q", first.Status)
	}
	if !first.FirstScan {
		t.Fatal("expected firstScan=true on initial redemption")
	}
	if first.ScanCount != 1 {
		t.Fatalf("expected scanCount=1, got %d", first.ScanCount)
	}
	if first.PackSize != 3 {
		t.Fatalf("expected packSize=3, got %d", first.PackSize)
	}
	if len(first.Doflins) != 3 {
		t.Fatalf("expected 3 doflins, got %d", len(first.Doflins))
	}
	if first.Doflins[0].ID != common.ID || first.Doflins[1].ID != rare.ID || first.Doflins[2].ID != epic.ID {
		t.Fatalf("pack order does not follow positions: %+v", first.Doflins)
	}
	if first.HighestRarity != string(model.RarityEpic) {
		t.Fatalf("expected highestRarity=EPIC, got %q", first.HighestRarity)
	}
	firstUsedAt, err := time.Parse(time.RFC3339, first.UsedAt)
	if err != nil {
		t.Fatalf("invalid usedAt %q: %v", first.UsedAt, err)
	}
	for _, item := range first.Doflins {
		if item.TotalCollection <= 0 {
			t.Fatalf("expected positive totalCollection, got %d", item.TotalCollection)
		}
	}

	resp = performJSONRequest(t, http.MethodGet, "/api/v1/reveal?code=REVEAL3PACK", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("repeat scan: expected status 200, got %d", resp.Code)
	}

	second := decodeRevealResponse(t, resp.Body.Bytes())
	if second.FirstScan {
		t.Fatal("expected firstScan=false on repeat redemption")
	}
	if second.ScanCount != 2 {
		t.Fatalf("expected scanCount=2, got %d", second.ScanCount)
	}
	secondUsedAt, err := time.Parse(time.RFC3339, second.UsedAt)
	if err != nil {
		t.Fatalf("invalid usedAt %q: %v", second.UsedAt, err)
	}
	if !secondUsedAt.Equal(firstUsedAt) {
		t.Fatalf("activation date changed on repeat scan: %s != %s", secondUsedAt, firstUsedAt)
	}

	if got := countScanEvents(t, model.ScanEventScan, "REVEAL3PACK"); got != 2 {
		t.Fatalf("expected 2 scan events, got %d", got)
	}
	if got := countScanEvents(t, model.ScanEventRevealSuccess, "REVEAL3PACK"); got != 2 {
		t.Fatalf("expected 2 reveal_success events, got %d", got)
	}
}

func TestReveal_LowercaseInputNormalized(t *testing.T) {
	common := pickByRarity(t, model.RarityCommon, 1)
	seedBagCode(t, "LOWERCODE1", 1, []int64{common.ID}, model.BagCodeStatusActive)

	resp := performJSONRequest(t, http.MethodGet, "/api/v1/reveal?code=lowercode1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	decoded := decodeRevealResponse(t, resp.Body.Bytes())
	if decoded.Code != "LOWERCODE1" {
		t.Fatalf("expected normalized code LOWERCODE1, got %q", decoded.Code)
	}
}

func TestReveal_UnknownCode(t *testing.T) {
	resp := performJSONRequest(t, http.MethodGet, "/api/v1/reveal?code=NOSUCHCODE", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}

	decoded := decodeRevealError(t, resp.Body.Bytes())
	if decoded.Code != "code_not_found" {
		t.Fatalf("expected code=code_not_found, got %q", decoded.Code)
	}

	if got := countScanEvents(t, model.ScanEventInvalid, "NOSUCHCODE"); got != 1 {
		t.Fatalf("expected 1 invalid event, got %d", got)
	}
}

func TestReveal_BlockedCode(t *testing.T) {
	common := pickByRarity(t, model.RarityCommon, 2)
	seedBagCode(t, "BLOCKED001", 1, []int64{common.ID}, model.BagCodeStatusBlocked)

	resp := performJSONRequest(t, http.MethodGet, "/api/v1/reveal?code=BLOCKED001", nil)
	if resp.Code != http.StatusGone {
		t.Fatalf("expected status 410, got %d", resp.Code)
	}

	decoded := decodeRevealError(t, resp.Body.Bytes())
	if decoded.Code != "code_blocked" {
		t.Fatalf("expected code=code_blocked, got %q", decoded.Code)
	}

	// The attempt is still audited even though redemption was refused.
	if got := countScanEvents(t, model.ScanEventScan, "BLOCKED001"); got != 1 {
		t.Fatalf("expected 1 scan event, got %d", got)
	}
	if got := countScanEvents(t, model.ScanEventRevealSuccess, "BLOCKED001"); got != 0 {
		t.Fatalf("expected 0 reveal_success events, got %d", got)
	}
}

func TestReveal_LegacyCodeWithoutItems(t *testing.T) {
	legendary := pickByRarity(t, model.RarityLegendary, 0)
	seedLegacyBagCode(t, "LEGACY0001", legendary.ID)

	resp := performJSONRequest(t, http.MethodGet, "/api/v1/reveal?code=LEGACY0001", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	decoded := decodeRevealResponse(t, resp.Body.Bytes())
	if len(decoded.Doflins) != 1 {
		t.Fatalf("expected 1 doflin from legacy resolution, got %d", len(decoded.Doflins))
	}
	if decoded.Doflins[0].ID != legendary.ID {
		t.Fatalf("expected doflin %d, got %d", legendary.ID, decoded.Doflins[0].ID)
	}
	if decoded.PackSize != 1 {
		t.Fatalf("expected packSize=1, got %d", decoded.PackSize)
	}
	if decoded.HighestRarity != string(model.RarityLegendary) {
		t.Fatalf("expected highestRarity=LEGENDARY, got %q", decoded.HighestRarity)
	}
}
