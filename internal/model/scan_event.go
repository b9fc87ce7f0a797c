package model

import "time"

type ScanEventType string

const (
	ScanEventScan           ScanEventType = "scan"
	ScanEventInvalid        ScanEventType = "invalid"
	ScanEventRevealSuccess  ScanEventType = "reveal_success"
	ScanEventPurchaseIntent ScanEventType = "purchase_intent"
	ScanEventRateLimited    ScanEventType = "rate_limited"
	ScanEventUniverseSwitch ScanEventType = "universe_switch"
	ScanEventFilterApply    ScanEventType = "filter_apply"
	ScanEventCardOpen       ScanEventType = "card_open"
	ScanEventView3D         ScanEventType = "view_3d"
)

func (t ScanEventType) Valid() bool {
	switch t {
	case ScanEventScan, ScanEventInvalid, ScanEventRevealSuccess,
		ScanEventPurchaseIntent, ScanEventRateLimited,
		ScanEventUniverseSwitch, ScanEventFilterApply,
		ScanEventCardOpen, ScanEventView3D:
		return true
	}
	return false
}

// ScanEvent is an append-only audit row. Never updated or deleted.
type ScanEvent struct {
	ID        int64         `db:"id" json:"id"`
	CodeInput string        `db:"codigo_input" json:"code_input"`
	BagCodeID *int64        `db:"codigo_bolsa_id" json:"bag_code_id,omitempty"`
	EventType ScanEventType `db:"event_type" json:"event_type"`
	IPHash    string        `db:"ip_hash" json:"ip_hash"`
	UserAgent string        `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}
