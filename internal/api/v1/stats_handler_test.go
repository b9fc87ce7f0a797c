package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doflin-hub/internal/rarity"
	"doflin-hub/internal/service"
)

type remainingAPIResponse struct {
	Status         string         `json:"status"`
	Remaining      map[string]int `json:"remaining"`
	TotalRemaining int            `json:"totalRemaining"`
	Source         string         `json:"source"`
	Message        string         `json:"message"`
}

func TestRemaining_FallbackWhenStoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	statsSvc := service.NewStatsService(nil, zap.NewNop())
	RegisterStatsRoutes(router.Group("/api/v1"), statsSvc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/remaining", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var decoded remainingAPIResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}

	if decoded.Status != "ok" {
		t.Fatalf("expected status=ok, got %q", decoded.Status)
	}
	if decoded.Source != "fallback" {
		t.Fatalf("expected source=fallback, got %q", decoded.Source)
	}
	if decoded.Message == "" {
		t.Fatal("expected fallback message to be set")
	}

	for _, tier := range rarity.Order {
		if _, ok := decoded.Remaining[string(tier)]; !ok {
			t.Fatalf("tier %s missing from remaining table", tier)
		}
	}

	sum := 0
	for _, count := range decoded.Remaining {
		sum += count
	}
	if decoded.TotalRemaining != sum {
		t.Fatalf("totalRemaining=%d does not match sum=%d", decoded.TotalRemaining, sum)
	}

	if cc := resp.Header().Get("Cache-Control"); cc != "public, max-age=15" {
		t.Fatalf("unexpected Cache-Control: %q", cc)
	}
}
