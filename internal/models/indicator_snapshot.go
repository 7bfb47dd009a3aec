package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndicatorSnapshot is a versioned forecast/previous/actual record for one
// event. Snapshots are append-only: the reconciliation pipeline never
// overwrites a row, it inserts a new one with the actual fields set. The
// latest snapshot by collected_at is the authoritative one.
type IndicatorSnapshot struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	EventID uint64 `gorm:"not null;index"`

	PreviousValue *decimal.Decimal `gorm:"type:numeric(20,6)"`
	ForecastValue *decimal.Decimal `gorm:"type:numeric(20,6)"`
	ActualValue   *decimal.Decimal `gorm:"type:numeric(20,6)"`

	ActualCollectedAt *time.Time `gorm:"type:timestamptz"`
	IsActualAvailable bool       `gorm:"not null;default:false;index"`
	CollectedAt       time.Time  `gorm:"type:timestamptz;not null;index"`
}

func (IndicatorSnapshot) TableName() string {
	return "indicator_snapshots"
}
