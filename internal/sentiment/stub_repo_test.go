package sentiment

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fxmonitor/internal/models"
	"fxmonitor/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// It implements the full interface but only the analysis paths are exercised
// by engine tests.
type stubRepo struct {
	indicators []repository.EventIndicator
	sentiments []models.CurrencySentiment
	listErr    error
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func (s *stubRepo) UpsertEvent(ctx context.Context, item *models.Event) error { return nil }
func (s *stubRepo) ListEvents(ctx context.Context, params repository.ListEventsParams) ([]models.Event, error) {
	return nil, nil
}
func (s *stubRepo) InsertSnapshot(ctx context.Context, item *models.IndicatorSnapshot) error {
	return nil
}
func (s *stubRepo) InsertSnapshotTx(ctx context.Context, tx *gorm.DB, item *models.IndicatorSnapshot) error {
	return nil
}
func (s *stubRepo) ListSnapshotsByEventID(ctx context.Context, eventID uint64) ([]models.IndicatorSnapshot, error) {
	return nil, nil
}

func (s *stubRepo) ListEventsWithLatestSnapshot(ctx context.Context, q repository.SnapshotQuery) ([]repository.EventIndicator, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]repository.EventIndicator, 0, len(s.indicators))
	for _, row := range s.indicators {
		if row.ScheduledTime.Before(q.From) || !row.ScheduledTime.Before(q.To) {
			continue
		}
		if q.HighImpactOnly && row.ImpactLevel != models.ImpactHigh {
			continue
		}
		if q.ActualOnly && !row.IsActualAvailable {
			continue
		}
		if q.MissingActualOnly && row.IsActualAvailable {
			continue
		}
		if q.Currency != "" && row.Currency != q.Currency {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *stubRepo) UpsertCurrencySentiment(ctx context.Context, item *models.CurrencySentiment) error {
	for i := range s.sentiments {
		existing := &s.sentiments[i]
		if existing.Currency == item.Currency &&
			existing.PeriodStart.Equal(item.PeriodStart) &&
			existing.View == item.View {
			*existing = *item
			return nil
		}
	}
	s.sentiments = append(s.sentiments, *item)
	return nil
}
func (s *stubRepo) ListCurrencySentiments(ctx context.Context, params repository.ListSentimentsParams) ([]models.CurrencySentiment, error) {
	return s.sentiments, nil
}

func (s *stubRepo) InsertCollectionRun(ctx context.Context, item *models.CollectionRun) error {
	return nil
}
func (s *stubRepo) ListRecentRuns(ctx context.Context, limit int) ([]models.CollectionRun, error) {
	return nil, nil
}

func (s *stubRepo) GetAlertState(ctx context.Context, alertType, severity string) (*models.AlertState, error) {
	return nil, nil
}
func (s *stubRepo) UpsertAlertState(ctx context.Context, item *models.AlertState) error { return nil }

func (s *stubRepo) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	return nil, nil
}
func (s *stubRepo) UpsertSetting(ctx context.Context, item *models.Setting) error { return nil }
func (s *stubRepo) ListSettings(ctx context.Context) ([]models.Setting, error)   { return nil, nil }

var _ repository.Repository = (*stubRepo)(nil)

func withinWeek(start time.Time, days int, hour int) time.Time {
	return start.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)
}
