package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fxmonitor/internal/models"
)

// Repository is the persistence surface consumed by the analysis engine,
// the actual-data collector, the monitor, and the HTTP handlers. All calls
// are transactional per call; InTx scopes multi-statement updates.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Events and snapshots.
	UpsertEvent(ctx context.Context, item *models.Event) error
	ListEvents(ctx context.Context, params ListEventsParams) ([]models.Event, error)
	InsertSnapshot(ctx context.Context, item *models.IndicatorSnapshot) error
	InsertSnapshotTx(ctx context.Context, tx *gorm.DB, item *models.IndicatorSnapshot) error
	ListSnapshotsByEventID(ctx context.Context, eventID uint64) ([]models.IndicatorSnapshot, error)
	ListEventsWithLatestSnapshot(ctx context.Context, q SnapshotQuery) ([]EventIndicator, error)

	// Currency sentiments (append-only per period+view).
	UpsertCurrencySentiment(ctx context.Context, item *models.CurrencySentiment) error
	ListCurrencySentiments(ctx context.Context, params ListSentimentsParams) ([]models.CurrencySentiment, error)

	// Collection runs.
	InsertCollectionRun(ctx context.Context, item *models.CollectionRun) error
	ListRecentRuns(ctx context.Context, limit int) ([]models.CollectionRun, error)

	// Alert cooldown ledger.
	GetAlertState(ctx context.Context, alertType, severity string) (*models.AlertState, error)
	UpsertAlertState(ctx context.Context, item *models.AlertState) error

	// Runtime settings.
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, item *models.Setting) error
	ListSettings(ctx context.Context) ([]models.Setting, error)
}

// SnapshotQuery selects events in a scheduled-time window joined with their
// latest indicator snapshot.
type SnapshotQuery struct {
	From time.Time
	To   time.Time
	// HighImpactOnly restricts to impact_level = High.
	HighImpactOnly bool
	// ActualOnly keeps only events whose latest snapshot has actual data.
	ActualOnly bool
	// MissingActualOnly keeps only events still awaiting actual data.
	MissingActualOnly bool
	Currency          string
}

// EventIndicator is an event flattened with its latest snapshot.
type EventIndicator struct {
	EventID        uint64
	Currency       string
	EventName      string
	NormalizedName string
	ScheduledTime  time.Time
	ImpactLevel    string

	SnapshotID        uint64
	PreviousValue     *decimal.Decimal
	ForecastValue     *decimal.Decimal
	ActualValue       *decimal.Decimal
	ActualCollectedAt *time.Time
	IsActualAvailable bool
	CollectedAt       time.Time
}

type ListEventsParams struct {
	Limit    int
	Offset   int
	Currency *string
	Since    *time.Time
	Until    *time.Time
	OrderBy  string
	Asc      *bool
}

type ListSentimentsParams struct {
	Limit       int
	Offset      int
	Currency    *string
	View        *string
	PeriodStart *time.Time
	OrderBy     string
	Asc         *bool
}
