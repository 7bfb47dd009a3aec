package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fxmonitor/internal/models"
	"fxmonitor/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- events & snapshots -----------------------------------------------------

func (s *Store) UpsertEvent(ctx context.Context, item *models.Event) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "currency"},
			{Name: "normalized_name"},
			{Name: "scheduled_time"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"event_name", "impact_level"}),
	}).Create(item).Error
}

func (s *Store) ListEvents(ctx context.Context, params repository.ListEventsParams) ([]models.Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Event{})
	if params.Currency != nil && strings.TrimSpace(*params.Currency) != "" {
		query = query.Where("currency = ?", strings.ToUpper(strings.TrimSpace(*params.Currency)))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("scheduled_time >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("scheduled_time <= ?", *params.Until)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "scheduled_time")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Event
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertSnapshot(ctx context.Context, item *models.IndicatorSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) InsertSnapshotTx(ctx context.Context, tx *gorm.DB, item *models.IndicatorSnapshot) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) ListSnapshotsByEventID(ctx context.Context, eventID uint64) ([]models.IndicatorSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.IndicatorSnapshot
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("collected_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListEventsWithLatestSnapshot(ctx context.Context, q repository.SnapshotQuery) ([]repository.EventIndicator, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	latest := s.db.Model(&models.IndicatorSnapshot{}).
		Select("DISTINCT ON (event_id) id, event_id, previous_value, forecast_value, actual_value, actual_collected_at, is_actual_available, collected_at").
		Order("event_id, collected_at DESC")

	query := s.db.WithContext(ctx).Table("events AS e").
		Select(`e.id AS event_id, e.currency, e.event_name, e.normalized_name,
			e.scheduled_time, e.impact_level,
			i.id AS snapshot_id, i.previous_value, i.forecast_value, i.actual_value,
			i.actual_collected_at, i.is_actual_available, i.collected_at`).
		Joins("JOIN (?) AS i ON i.event_id = e.id", latest).
		Where("e.scheduled_time >= ? AND e.scheduled_time <= ?", q.From, q.To)

	if q.HighImpactOnly {
		query = query.Where("e.impact_level = ?", models.ImpactHigh)
	}
	if q.ActualOnly {
		query = query.Where("i.is_actual_available = TRUE")
	}
	if q.MissingActualOnly {
		query = query.Where("i.is_actual_available = FALSE")
	}
	if strings.TrimSpace(q.Currency) != "" {
		query = query.Where("e.currency = ?", strings.ToUpper(strings.TrimSpace(q.Currency)))
	}

	var rows []repository.EventIndicator
	if err := query.Order("e.currency, e.scheduled_time").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --- currency sentiments ----------------------------------------------------

func (s *Store) UpsertCurrencySentiment(ctx context.Context, item *models.CurrencySentiment) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "currency"},
			{Name: "period_start"},
			{Name: "view"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"period_end",
			"final_sentiment",
			"final_value",
			"reason",
			"event_breakdown",
			"computed_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListCurrencySentiments(ctx context.Context, params repository.ListSentimentsParams) ([]models.CurrencySentiment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.CurrencySentiment{})
	if params.Currency != nil && strings.TrimSpace(*params.Currency) != "" {
		query = query.Where("currency = ?", strings.ToUpper(strings.TrimSpace(*params.Currency)))
	}
	if params.View != nil && strings.TrimSpace(*params.View) != "" {
		query = query.Where("view = ?", strings.TrimSpace(*params.View))
	}
	if params.PeriodStart != nil && !params.PeriodStart.IsZero() {
		query = query.Where("period_start = ?", *params.PeriodStart)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "period_start")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.CurrencySentiment
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- collection runs --------------------------------------------------------

func (s *Store) InsertCollectionRun(ctx context.Context, item *models.CollectionRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListRecentRuns(ctx context.Context, limit int) ([]models.CollectionRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.CollectionRun
	if err := s.db.WithContext(ctx).
		Order("started_at desc").
		Limit(normalizeLimit(limit, 50)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- alert states -----------------------------------------------------------

func (s *Store) GetAlertState(ctx context.Context, alertType, severity string) (*models.AlertState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.AlertState
	err := s.db.WithContext(ctx).
		Where("alert_type = ? AND severity = ?", alertType, severity).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertAlertState(ctx context.Context, item *models.AlertState) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "alert_type"},
			{Name: "severity"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"last_sent_at", "message"}),
	}).Create(item).Error
}

// --- settings ---------------------------------------------------------------

func (s *Store) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertSetting(ctx context.Context, item *models.Setting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Key) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Setting
	if err := s.db.WithContext(ctx).Order("key asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	col := strings.TrimSpace(orderBy)
	if col == "" {
		col = fallback
	}
	dir := "desc"
	if asc != nil && *asc {
		dir = "asc"
	}
	return query.Order(col + " " + dir)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

var _ repository.Repository = (*Store)(nil)
