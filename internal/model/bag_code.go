package model

import "time"

type BagCodeStatus string

const (
	BagCodeStatusActive  BagCodeStatus = "active"
	BagCodeStatusBlocked BagCodeStatus = "blocked"
)

// BagCode represents one printed code on a sealed pack. Once Used flips to
// true it never reverts; ActivationDate is written on the first scan and
// never overwritten; ScanCount only grows.
type BagCode struct {
	ID             int64         `db:"id" json:"id"`
	Code           string        `db:"codigo" json:"code"`
	PackSize       int           `db:"pack_size" json:"pack_size"`
	DoflinID       int64         `db:"doflin_id" json:"doflin_id"`
	Used           bool          `db:"usado" json:"used"`
	ActivationDate *time.Time    `db:"fecha_activacion" json:"activation_date,omitempty"`
	ScanCount      int           `db:"scan_count" json:"scan_count"`
	LastScannedAt  *time.Time    `db:"last_scanned_at" json:"last_scanned_at,omitempty"`
	Status         BagCodeStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// BagCodeItem binds a code to one Doflin at a 1-based position. Codes
// created before multi-item packs existed have no item rows; those resolve
// through BagCode.DoflinID instead.
type BagCodeItem struct {
	ID        int64     `db:"id" json:"id"`
	BagCodeID int64     `db:"codigo_bolsa_id" json:"bag_code_id"`
	DoflinID  int64     `db:"doflin_id" json:"doflin_id"`
	Position  int       `db:"posicion" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
