package models

import (
	"time"
)

// AlertState is the cooldown ledger: one row per (alert_type, severity)
// holding the last emission time.
type AlertState struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	AlertType  string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_alert_key,priority:1"`
	Severity   string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_alert_key,priority:2"`
	LastSentAt time.Time `gorm:"type:timestamptz;not null"`
	Message    string    `gorm:"type:text"`
}

func (AlertState) TableName() string {
	return "alert_states"
}
