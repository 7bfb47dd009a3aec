package collector

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxmonitor/internal/match"
	"fxmonitor/internal/models"
)

// Ingest scrapes the calendar and stores high-impact events with their
// published previous and forecast values. Re-ingesting the same page is
// idempotent: a snapshot is appended only when the published values changed,
// and actual fields already reconciled are carried into the new snapshot so
// a revision never hides a collected actual. Returns the number of snapshots
// written.
func (c *Collector) Ingest(ctx context.Context) (int, error) {
	if !c.ingesting.CompareAndSwap(false, true) {
		c.Logger.Warn("ingestion skipped", zap.String("reason", "ingestion already in progress"))
		return 0, nil
	}
	defer c.ingesting.Store(false)

	if !c.Breaker.Allow() {
		c.Logger.Warn("ingestion skipped", zap.String("reason", "breaker open"))
		return 0, nil
	}

	runCtx := ctx
	if c.Cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Cfg.RunTimeout)
		defer cancel()
	}

	records, err := c.fetchWithRetry(runCtx)
	if err != nil {
		c.Breaker.RecordFailure()
		return 0, err
	}
	c.Breaker.RecordSuccess()

	var written, failed int
	for _, rec := range records {
		if rec.ImpactLevel != models.ImpactHigh {
			continue
		}
		ok, err := c.ingestOne(runCtx, rec)
		if err != nil {
			failed++
			c.Logger.Error("event ingestion failed",
				zap.String("currency", rec.Currency),
				zap.String("event", rec.EventName),
				zap.Error(err),
			)
			continue
		}
		if ok {
			written++
		}
	}

	c.Logger.Info("ingestion complete",
		zap.Int("records", len(records)),
		zap.Int("snapshots_written", written),
		zap.Int("failed", failed),
	)
	return written, nil
}

// ingestOne upserts the event identity and appends a snapshot when the
// published values differ from the latest stored ones.
func (c *Collector) ingestOne(ctx context.Context, rec match.ScrapedRecord) (bool, error) {
	event := models.Event{
		Currency:       rec.Currency,
		EventName:      rec.EventName,
		NormalizedName: match.NormalizeName(rec.EventName),
		ScheduledTime:  rec.ScheduledTime,
		ImpactLevel:    rec.ImpactLevel,
	}
	if err := c.Repo.UpsertEvent(ctx, &event); err != nil {
		return false, err
	}

	snaps, err := c.Repo.ListSnapshotsByEventID(ctx, event.ID)
	if err != nil {
		return false, err
	}

	snap := models.IndicatorSnapshot{
		EventID:       event.ID,
		PreviousValue: rec.PreviousValue,
		ForecastValue: rec.ForecastValue,
		CollectedAt:   c.Now(),
	}
	if len(snaps) > 0 {
		latest := snaps[0]
		if decimalPtrEqual(latest.PreviousValue, rec.PreviousValue) &&
			decimalPtrEqual(latest.ForecastValue, rec.ForecastValue) {
			return false, nil
		}
		// Carry reconciled actuals forward so the latest snapshot stays
		// authoritative.
		snap.ActualValue = latest.ActualValue
		snap.ActualCollectedAt = latest.ActualCollectedAt
		snap.IsActualAvailable = latest.IsActualAvailable
	}

	if err := c.Repo.InsertSnapshot(ctx, &snap); err != nil {
		return false, err
	}
	return true, nil
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
