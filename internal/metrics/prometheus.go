package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"doflin-hub/internal/model"
)

var (
	RevealsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doflin_reveals_total",
		Help: "Total reveal attempts by outcome",
	}, []string{"result"})

	RevealFirstScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doflin_reveal_first_scans_total",
		Help: "Total reveals that were the first scan of their code",
	})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doflin_rate_limited_total",
		Help: "Total requests denied by the rate governor",
	})

	ScanEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doflin_scan_events_total",
		Help: "Total audit events written by type",
	}, []string{"type"})

	RemainingByRarity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "doflin_remaining_by_rarity",
		Help: "Unredeemed pack items remaining per rarity tier",
	}, []string{"rarity"})
)

func IncReveal(result string) {
	label := strings.TrimSpace(result)
	if label == "" {
		label = "unknown"
	}
	RevealsTotal.WithLabelValues(label).Inc()
}

func IncScanEvent(eventType model.ScanEventType) {
	ScanEventsTotal.WithLabelValues(string(eventType)).Inc()
}

func SetRemaining(rarity model.Rarity, count int) {
	if count < 0 {
		count = 0
	}
	RemainingByRarity.WithLabelValues(string(rarity)).Set(float64(count))
}
