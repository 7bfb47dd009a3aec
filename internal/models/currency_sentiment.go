package models

import (
	"time"

	"gorm.io/datatypes"
)

// Sentiment views: which baseline the per-event comparison used.
const (
	ViewForecast = "forecast"
	ViewActual   = "actual"
)

// CurrencySentiment is the aggregated verdict for one currency over one
// analysis period. Rows are append-only history keyed by
// (currency, period_start, view); recomputing the same period upserts that
// key, prior periods are never touched.
type CurrencySentiment struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Currency    string    `gorm:"type:varchar(3);not null;uniqueIndex:uq_sentiment_period,priority:1"`
	PeriodStart time.Time `gorm:"type:timestamptz;not null;uniqueIndex:uq_sentiment_period,priority:2"`
	PeriodEnd   time.Time `gorm:"type:timestamptz;not null"`
	View        string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_sentiment_period,priority:3"`

	FinalSentiment string `gorm:"type:varchar(30);not null"`
	FinalValue     int    `gorm:"not null"`
	Reason         string `gorm:"type:text"`

	// EventBreakdown holds the ordered per-event sentiment list with source
	// values and accuracy tags, serialized for the dashboard surface.
	EventBreakdown datatypes.JSON `gorm:"type:jsonb"`

	ComputedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (CurrencySentiment) TableName() string {
	return "currency_sentiments"
}
