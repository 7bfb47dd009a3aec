package models

import (
	"time"
)

// Setting is a runtime key/value row surfaced over the settings API.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Setting) TableName() string {
	return "settings"
}
