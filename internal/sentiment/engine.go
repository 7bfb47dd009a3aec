package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxmonitor/internal/config"
	"fxmonitor/internal/models"
	"fxmonitor/internal/repository"
)

// Engine computes weekly per-currency sentiment from stored events and
// persists one CurrencySentiment row per (currency, period, view).
type Engine struct {
	Repo      repository.Repository
	Logger    *zap.Logger
	Threshold decimal.Decimal
	TieBreak  Label
	Now       func() time.Time
}

func NewEngine(repo repository.Repository, logger *zap.Logger, cfg config.SentimentConfig) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Repo:      repo,
		Logger:    logger,
		Threshold: decimal.NewFromFloat(cfg.Threshold),
		TieBreak:  TieBreakLabel(cfg.TieBreak),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// TieBreakLabel maps the configured tie-break policy to a label, defaulting
// to Bearish for anything unrecognized.
func TieBreakLabel(s string) Label {
	if s == "bullish" || s == string(Bullish) {
		return Bullish
	}
	return Bearish
}

// WeekBounds returns the Monday 00:00 UTC start of the week containing t and
// the exclusive end one week later.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// AnalyzeCurrentWeek runs both views for the week containing now. The actual
// view only covers events whose actual data has been reconciled, so early in
// the week it may produce rows from fewer events than the forecast view.
func (e *Engine) AnalyzeCurrentWeek(ctx context.Context) error {
	start, end := WeekBounds(e.Now())
	if _, err := e.AnalyzeWeek(ctx, start, end, models.ViewForecast); err != nil {
		return err
	}
	_, err := e.AnalyzeWeek(ctx, start, end, models.ViewActual)
	return err
}

// AnalyzeWeek recomputes sentiment for every currency with high-impact events
// scheduled in [periodStart, periodEnd) and upserts the results. view selects
// the comparison baseline: forecast values or reconciled actual values.
func (e *Engine) AnalyzeWeek(ctx context.Context, periodStart, periodEnd time.Time, view string) ([]models.CurrencySentiment, error) {
	if view != models.ViewForecast && view != models.ViewActual {
		return nil, fmt.Errorf("unknown sentiment view %q", view)
	}

	rows, err := e.Repo.ListEventsWithLatestSnapshot(ctx, repository.SnapshotQuery{
		From:           periodStart,
		To:             periodEnd,
		HighImpactOnly: true,
		ActualOnly:     view == models.ViewActual,
	})
	if err != nil {
		return nil, fmt.Errorf("load events for analysis: %w", err)
	}

	byCurrency := map[string][]EventSentiment{}
	for _, row := range rows {
		byCurrency[row.Currency] = append(byCurrency[row.Currency], e.scoreEvent(row, view))
	}

	currencies := make([]string, 0, len(byCurrency))
	for cur := range byCurrency {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)

	computedAt := e.Now()
	out := make([]models.CurrencySentiment, 0, len(currencies))
	for _, cur := range currencies {
		events := byCurrency[cur]
		sort.Slice(events, func(i, j int) bool {
			return events[i].ScheduledTime.Before(events[j].ScheduledTime)
		})
		res := Resolve(events, e.TieBreak)

		breakdown, err := json.Marshal(events)
		if err != nil {
			return nil, fmt.Errorf("marshal breakdown for %s: %w", cur, err)
		}

		row := models.CurrencySentiment{
			Currency:       cur,
			PeriodStart:    periodStart,
			PeriodEnd:      periodEnd,
			View:           view,
			FinalSentiment: string(res.FinalSentiment),
			FinalValue:     res.FinalValue,
			Reason:         res.Reason,
			EventBreakdown: breakdown,
			ComputedAt:     computedAt,
		}
		if err := e.Repo.UpsertCurrencySentiment(ctx, &row); err != nil {
			return nil, fmt.Errorf("persist sentiment for %s: %w", cur, err)
		}

		e.Logger.Info("currency sentiment computed",
			zap.String("currency", cur),
			zap.String("view", view),
			zap.String("sentiment", string(res.FinalSentiment)),
			zap.Int("events", res.EventCount),
			zap.Int("decisive", res.DecisiveCount),
		)
		out = append(out, row)
	}

	return out, nil
}

// scoreEvent computes the verdict for one event under the given view, plus
// the accuracy tag comparing the forecast-derived and actual-derived verdicts
// when both sides exist.
func (e *Engine) scoreEvent(row repository.EventIndicator, view string) EventSentiment {
	baseline := row.ForecastValue
	if view == models.ViewActual {
		baseline = row.ActualValue
	}

	ev := EventSentiment{
		EventID:       row.EventID,
		EventName:     row.EventName,
		Currency:      row.Currency,
		ScheduledTime: row.ScheduledTime,
		PreviousValue: row.PreviousValue,
		ForecastValue: row.ForecastValue,
		ActualValue:   row.ActualValue,
		Verdict:       Compute(row.PreviousValue, baseline, row.EventName, e.Threshold),
	}
	ev.AccuracyTag = e.accuracyTag(row)
	return ev
}

func (e *Engine) accuracyTag(row repository.EventIndicator) string {
	if !row.IsActualAvailable || row.ActualValue == nil {
		return AccuracyNoData
	}
	if row.ForecastValue == nil {
		return AccuracyNoForecast
	}
	forecast := Compute(row.PreviousValue, row.ForecastValue, row.EventName, e.Threshold)
	actual := Compute(row.PreviousValue, row.ActualValue, row.EventName, e.Threshold)
	if forecast.Value == actual.Value {
		return AccuracyMatch
	}
	return AccuracyMismatch
}
