package models

import (
	"time"
)

// CollectionRun records one execution of the actual-data reconciliation
// pipeline. Never mutated after completion; consumed by the monitor.
type CollectionRun struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	StartedAt  time.Time `gorm:"type:timestamptz;not null;index"`
	FinishedAt time.Time `gorm:"type:timestamptz;not null"`

	EventsConsidered int `gorm:"not null"`
	EventsUpdated    int `gorm:"not null"`
	EventsFailed     int `gorm:"not null"`

	NetworkFailures  int `gorm:"not null"`
	ParseFailures    int `gorm:"not null"`
	DatabaseFailures int `gorm:"not null"`
	OtherFailures    int `gorm:"not null"`

	BreakerOpen bool   `gorm:"not null;default:false"`
	Success     bool   `gorm:"not null;index"`
	Error       string `gorm:"type:text"`
}

func (CollectionRun) TableName() string {
	return "collection_runs"
}
