package models

import (
	"time"
)

// Impact levels as published by the calendar source.
const (
	ImpactHigh   = "High"
	ImpactMedium = "Medium"
	ImpactLow    = "Low"
)

// Event is one announced economic indicator instance. Identity is
// (currency, normalized_name, scheduled_time); the raw event_name is kept
// for display while normalized_name drives matching.
type Event struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	Currency       string    `gorm:"type:varchar(3);not null;index;uniqueIndex:uq_event_identity,priority:1"`
	EventName      string    `gorm:"type:text;not null"`
	NormalizedName string    `gorm:"type:text;not null;index;uniqueIndex:uq_event_identity,priority:2"`
	ScheduledTime  time.Time `gorm:"type:timestamptz;not null;index;uniqueIndex:uq_event_identity,priority:3"`
	ImpactLevel    string    `gorm:"type:varchar(10);not null;index"`
	CreatedAt      time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Event) TableName() string {
	return "events"
}
