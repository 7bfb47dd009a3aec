// Package monitor assesses collection pipeline health and forecast accuracy
// and emits cooldown-gated alerts.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxmonitor/internal/collector"
	"fxmonitor/internal/config"
	"fxmonitor/internal/models"
	"fxmonitor/internal/notify"
	"fxmonitor/internal/repository"
	"fxmonitor/internal/sentiment"
)

type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusWarning  HealthStatus = "warning"
	StatusCritical HealthStatus = "critical"
	// StatusError means the monitor itself could not read pipeline state.
	StatusError HealthStatus = "error"
)

// Alert types recorded in the cooldown ledger.
const (
	AlertCollectionHealth = "collection_health"
	AlertForecastAccuracy = "forecast_accuracy"
)

// HealthVerdict is the rolled-up pipeline assessment served by the health
// endpoint and fed into alerting.
type HealthVerdict struct {
	Status        HealthStatus `json:"status"`
	SuccessRate   float64      `json:"success_rate"`
	RunsInWindow  int          `json:"runs_in_window"`
	LastSuccessAt *time.Time   `json:"last_success_at,omitempty"`
	BreakerOpen   bool         `json:"breaker_open"`
	Detail        string       `json:"detail,omitempty"`
}

// CurrencyAccuracy is forecast-vs-actual agreement for one currency.
type CurrencyAccuracy struct {
	Currency    string  `json:"currency"`
	Percent     float64 `json:"percent"`
	Matches     int     `json:"matches"`
	Comparisons int     `json:"comparisons"`
}

// AccuracyStats rolls up forecast accuracy over the trailing window. Events
// without actual data or without a forecast are excluded from denominators.
type AccuracyStats struct {
	OverallPercent float64            `json:"overall_percent"`
	Matches        int                `json:"matches"`
	Comparisons    int                `json:"comparisons"`
	PerCurrency    []CurrencyAccuracy `json:"per_currency"`
}

type Monitor struct {
	Repo     repository.Repository
	Notifier notify.Notifier
	// Breaker, when set, surfaces live breaker state in verdicts.
	Breaker *collector.Breaker
	Logger  *zap.Logger
	Cfg     config.MonitoringConfig
	// Threshold mirrors the sentiment calculator's noise band so accuracy
	// recomputation agrees with the analysis engine.
	Threshold decimal.Decimal

	Now func() time.Time
}

func New(repo repository.Repository, notifier notify.Notifier, breaker *collector.Breaker, logger *zap.Logger, cfg config.MonitoringConfig, threshold float64) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		Repo:      repo,
		Notifier:  notifier,
		Breaker:   breaker,
		Logger:    logger,
		Cfg:       cfg,
		Threshold: decimal.NewFromFloat(threshold),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Assess rolls recent collection runs into one verdict. Never returns an
// error: a monitor read failure is itself the "error" status.
func (m *Monitor) Assess(ctx context.Context) HealthVerdict {
	runs, err := m.Repo.ListRecentRuns(ctx, m.Cfg.RunWindow)
	if err != nil {
		m.Logger.Error("health assessment failed", zap.Error(err))
		return HealthVerdict{Status: StatusError, Detail: "failed to read collection run history"}
	}

	verdict := HealthVerdict{RunsInWindow: len(runs)}
	if m.Breaker != nil {
		verdict.BreakerOpen = m.Breaker.Open()
	}

	var considered, updated int
	for _, run := range runs {
		considered += run.EventsConsidered
		updated += run.EventsUpdated
		if run.Success {
			if verdict.LastSuccessAt == nil || run.FinishedAt.After(*verdict.LastSuccessAt) {
				finished := run.FinishedAt
				verdict.LastSuccessAt = &finished
			}
		}
	}

	// No candidates at all counts as fully successful rather than 0/0.
	verdict.SuccessRate = 100
	if considered > 0 {
		verdict.SuccessRate = 100 * float64(updated) / float64(considered)
	}

	// Staleness only matters once a success exists; the no-success case is
	// already critical below.
	now := m.Now()
	staleness := time.Duration(0)
	if verdict.LastSuccessAt != nil {
		staleness = now.Sub(*verdict.LastSuccessAt)
	}

	switch {
	case len(runs) == 0:
		verdict.Status = StatusWarning
		verdict.Detail = "no collection runs recorded yet"
	case verdict.LastSuccessAt == nil || staleness > m.Cfg.StaleCriticalAfter:
		verdict.Status = StatusCritical
		verdict.Detail = "no successful run within the critical staleness window"
	case verdict.SuccessRate < m.Cfg.CriticalSuccessRate:
		verdict.Status = StatusCritical
		verdict.Detail = fmt.Sprintf("success rate %.1f%% below critical floor", verdict.SuccessRate)
	case staleness > m.Cfg.StaleWarningAfter:
		verdict.Status = StatusWarning
		verdict.Detail = "last successful run is stale"
	case verdict.SuccessRate < m.Cfg.HealthySuccessRate:
		verdict.Status = StatusWarning
		verdict.Detail = fmt.Sprintf("success rate %.1f%% below healthy floor", verdict.SuccessRate)
	default:
		verdict.Status = StatusHealthy
	}

	return verdict
}

// Accuracy compares forecast-derived and actual-derived sentiment per event
// over the trailing window. Events still missing actual data, or published
// without a forecast, never enter a denominator.
func (m *Monitor) Accuracy(ctx context.Context) (AccuracyStats, error) {
	now := m.Now()
	rows, err := m.Repo.ListEventsWithLatestSnapshot(ctx, repository.SnapshotQuery{
		From:           now.AddDate(0, 0, -m.Cfg.AccuracyWindowDays),
		To:             now,
		HighImpactOnly: true,
	})
	if err != nil {
		return AccuracyStats{}, fmt.Errorf("load events for accuracy: %w", err)
	}

	type tally struct{ matches, comparisons int }
	perCurrency := map[string]*tally{}
	var stats AccuracyStats

	for _, row := range rows {
		if !row.IsActualAvailable || row.ActualValue == nil || row.ForecastValue == nil {
			continue
		}
		forecast := sentiment.Compute(row.PreviousValue, row.ForecastValue, row.EventName, m.Threshold)
		actual := sentiment.Compute(row.PreviousValue, row.ActualValue, row.EventName, m.Threshold)
		if !forecast.Decisive || !actual.Decisive {
			continue
		}

		t := perCurrency[row.Currency]
		if t == nil {
			t = &tally{}
			perCurrency[row.Currency] = t
		}
		t.comparisons++
		stats.Comparisons++
		if forecast.Value == actual.Value {
			t.matches++
			stats.Matches++
		}
	}

	if stats.Comparisons > 0 {
		stats.OverallPercent = 100 * float64(stats.Matches) / float64(stats.Comparisons)
	}
	for cur, t := range perCurrency {
		stats.PerCurrency = append(stats.PerCurrency, CurrencyAccuracy{
			Currency:    cur,
			Percent:     100 * float64(t.matches) / float64(t.comparisons),
			Matches:     t.matches,
			Comparisons: t.comparisons,
		})
	}
	sort.Slice(stats.PerCurrency, func(i, j int) bool {
		return stats.PerCurrency[i].Currency < stats.PerCurrency[j].Currency
	})
	return stats, nil
}

// CheckAndAlert runs one monitoring pass: assess health, compute accuracy,
// and emit alerts through the notifier. Notifier failures are logged, never
// escalated.
func (m *Monitor) CheckAndAlert(ctx context.Context) {
	verdict := m.Assess(ctx)
	switch verdict.Status {
	case StatusCritical, StatusError:
		m.maybeAlert(ctx, AlertCollectionHealth, notify.SeverityCritical,
			"Actual Data Collection Critical",
			fmt.Sprintf("%s (success rate %.1f%%, runs in window %d)", verdict.Detail, verdict.SuccessRate, verdict.RunsInWindow))
	case StatusWarning:
		m.maybeAlert(ctx, AlertCollectionHealth, notify.SeverityWarning,
			"Actual Data Collection Degraded",
			fmt.Sprintf("%s (success rate %.1f%%, runs in window %d)", verdict.Detail, verdict.SuccessRate, verdict.RunsInWindow))
	}

	stats, err := m.Accuracy(ctx)
	if err != nil {
		m.Logger.Error("accuracy check failed", zap.Error(err))
		return
	}
	if stats.Comparisons > 0 && stats.OverallPercent < m.Cfg.AccuracyAlertPercent {
		m.maybeAlert(ctx, AlertForecastAccuracy, notify.SeverityWarning,
			"Forecast Accuracy Low",
			fmt.Sprintf("Overall forecast accuracy %.1f%% over %d comparisons (last %d days)",
				stats.OverallPercent, stats.Comparisons, m.Cfg.AccuracyWindowDays))
	}
}

// maybeAlert sends unless the same (type, severity) fired within its
// cooldown. Critical alerts recover faster than warnings.
func (m *Monitor) maybeAlert(ctx context.Context, alertType string, severity notify.Severity, title, message string) {
	cooldown := m.Cfg.WarningCooldown
	if severity == notify.SeverityCritical {
		cooldown = m.Cfg.CriticalCooldown
	}

	now := m.Now()
	state, err := m.Repo.GetAlertState(ctx, alertType, string(severity))
	if err != nil {
		m.Logger.Error("alert state lookup failed", zap.String("alert_type", alertType), zap.Error(err))
		return
	}
	if state != nil && now.Sub(state.LastSentAt) < cooldown {
		m.Logger.Debug("alert suppressed by cooldown",
			zap.String("alert_type", alertType),
			zap.String("severity", string(severity)),
		)
		return
	}

	if m.Notifier != nil {
		if err := m.Notifier.SendAlert(ctx, title, message, severity); err != nil {
			m.Logger.Error("alert delivery failed", zap.String("alert_type", alertType), zap.Error(err))
			return
		}
	}

	if err := m.Repo.UpsertAlertState(ctx, &models.AlertState{
		AlertType:  alertType,
		Severity:   string(severity),
		LastSentAt: now,
		Message:    message,
	}); err != nil {
		m.Logger.Error("alert state not recorded", zap.String("alert_type", alertType), zap.Error(err))
	}
	m.Logger.Info("alert sent",
		zap.String("alert_type", alertType),
		zap.String("severity", string(severity)),
		zap.String("title", title),
	)
}
