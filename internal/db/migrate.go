package db

import (
	"fxmonitor/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Event{},
		&models.IndicatorSnapshot{},
		&models.CurrencySentiment{},
		&models.CollectionRun{},
		&models.AlertState{},
		&models.Setting{},
	)
}
