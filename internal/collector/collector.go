package collector

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fxmonitor/internal/calendar"
	"fxmonitor/internal/config"
	"fxmonitor/internal/match"
	"fxmonitor/internal/models"
	"fxmonitor/internal/parse"
	"fxmonitor/internal/repository"
	"fxmonitor/internal/sentiment"
)

const maxBackoff = 60 * time.Second

// Collector reconciles actual indicator values for past events. One Run is
// one pipeline execution: scan for events missing actual data, fetch the
// calendar once (with retry and breaker protection), match scraped records
// back to events, and write new snapshots. Per-event failures never abort
// the run.
type Collector struct {
	Repo    repository.Repository
	Source  calendar.Source
	Matcher *match.Matcher
	Breaker *Breaker
	// Engine, when set, recomputes actual-view sentiment for the weeks
	// touched by a successful run.
	Engine *sentiment.Engine
	Logger *zap.Logger
	Cfg    config.CollectorConfig

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration)

	// Runs must never overlap themselves: two concurrent runs would scan the
	// same candidates and double-insert snapshots. Guarded here rather than at
	// the call sites so the cron tick and the manual HTTP trigger share one
	// gate. Ingestion has its own gate; it writes different rows.
	running   atomic.Bool
	ingesting atomic.Bool
}

func New(repo repository.Repository, source calendar.Source, breaker *Breaker, engine *sentiment.Engine, logger *zap.Logger, cfg config.CollectorConfig) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown)
	}
	return &Collector{
		Repo:    repo,
		Source:  source,
		Matcher: match.NewMatcher(nil, cfg.MatchThreshold, cfg.MatchWindow),
		Breaker: breaker,
		Engine:  engine,
		Logger:  logger,
		Cfg:     cfg,
		Now:     func() time.Time { return time.Now().UTC() },
		Sleep:   sleepCtx,
	}
}

// Run executes one collection pass and always records a CollectionRun row,
// including breaker-rejected, overlapping and failed runs. The returned error
// reflects run-level failures only; per-event failures are counted in the
// record. The breaker counts whole runs: any run-level failure feeds it,
// any completed run resets it.
func (c *Collector) Run(ctx context.Context) (*models.CollectionRun, error) {
	run := &models.CollectionRun{StartedAt: c.Now()}

	if !c.running.CompareAndSwap(false, true) {
		run.Error = "collection already in progress"
		c.finish(ctx, run, false)
		c.Logger.Warn("collection skipped", zap.String("reason", "run already in progress"))
		return run, nil
	}
	defer c.running.Store(false)

	if !c.Breaker.Allow() {
		run.BreakerOpen = true
		run.Error = "circuit breaker open, skipping run"
		c.finish(ctx, run, false)
		c.Logger.Warn("collection skipped", zap.String("reason", "breaker open"))
		return run, nil
	}

	// One wall-clock budget for the whole pass, scan through reconcile. The
	// run record itself is written against the parent context so a timed-out
	// run is still accounted for.
	runCtx := ctx
	if c.Cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Cfg.RunTimeout)
		defer cancel()
	}

	candidates, indicators, err := c.scan(runCtx)
	if err != nil {
		c.Breaker.RecordFailure()
		run.Error = err.Error()
		run.DatabaseFailures++
		run.BreakerOpen = c.Breaker.Open()
		c.finish(ctx, run, false)
		return run, err
	}
	run.EventsConsidered = len(candidates)
	if len(candidates) == 0 {
		c.Breaker.RecordSuccess()
		c.finish(ctx, run, true)
		c.Logger.Info("collection complete", zap.Int("events_considered", 0))
		return run, nil
	}

	records, err := c.fetchWithRetry(runCtx)
	if err != nil {
		c.Breaker.RecordFailure()
		run.Error = err.Error()
		var perr *calendar.ParseError
		if errors.As(err, &perr) {
			run.ParseFailures++
		} else {
			run.NetworkFailures++
		}
		run.BreakerOpen = c.Breaker.Open()
		c.finish(ctx, run, false)
		return run, err
	}

	c.reconcile(runCtx, run, records, candidates, indicators)

	if runCtx.Err() != nil {
		c.Breaker.RecordFailure()
		run.Error = "run timed out"
		run.OtherFailures++
		run.BreakerOpen = c.Breaker.Open()
		c.finish(ctx, run, false)
		return run, runCtx.Err()
	}
	c.Breaker.RecordSuccess()

	c.finish(ctx, run, true)
	c.Logger.Info("collection complete",
		zap.Int("events_considered", run.EventsConsidered),
		zap.Int("events_updated", run.EventsUpdated),
		zap.Int("events_failed", run.EventsFailed),
	)

	if c.Engine != nil && run.EventsUpdated > 0 {
		if err := c.recomputeSentiment(runCtx, indicators); err != nil {
			c.Logger.Error("post-run sentiment recompute failed", zap.Error(err))
		}
	}
	return run, nil
}

// scan loads past high-impact events still missing actual data. The grace
// buffer keeps just-finished events out until the source has had time to
// publish.
func (c *Collector) scan(ctx context.Context) ([]models.Event, map[uint64]repository.EventIndicator, error) {
	now := c.Now()
	rows, err := c.Repo.ListEventsWithLatestSnapshot(ctx, repository.SnapshotQuery{
		From:              now.AddDate(0, 0, -c.Cfg.LookbackDays),
		To:                now.Add(-c.Cfg.GraceBuffer),
		HighImpactOnly:    true,
		MissingActualOnly: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan candidate events: %w", err)
	}

	candidates := make([]models.Event, 0, len(rows))
	indicators := make(map[uint64]repository.EventIndicator, len(rows))
	for _, row := range rows {
		candidates = append(candidates, models.Event{
			ID:             row.EventID,
			Currency:       row.Currency,
			EventName:      row.EventName,
			NormalizedName: row.NormalizedName,
			ScheduledTime:  row.ScheduledTime,
			ImpactLevel:    row.ImpactLevel,
		})
		indicators[row.EventID] = row
	}
	return candidates, indicators, nil
}

// fetchWithRetry fetches the calendar page, retrying transient network
// failures with exponential backoff and jitter. Markup failures are not
// retried within a run; the source will not change mid-run.
func (c *Collector) fetchWithRetry(ctx context.Context) ([]match.ScrapedRecord, error) {
	attempts := c.Cfg.RetryLimit
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.Sleep(ctx, backoffDelay(attempt))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}

		records, err := c.Source.FetchCalendar(ctx)
		if err == nil {
			return records, nil
		}
		lastErr = err

		var perr *calendar.ParseError
		if errors.As(err, &perr) {
			return nil, err
		}
		c.Logger.Warn("calendar fetch failed",
			zap.Int("attempt", attempt+1),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
	}
	return nil, lastErr
}

// reconcile matches scraped records to candidate events and writes actual
// snapshots through a bounded worker pool. Each event is claimed at most
// once per run.
func (c *Collector) reconcile(ctx context.Context, run *models.CollectionRun, records []match.ScrapedRecord, candidates []models.Event, indicators map[uint64]repository.EventIndicator) {
	workers := c.Cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	claimed := map[uint64]bool{}
	jobs := make(chan match.ScrapedRecord)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				c.reconcileOne(ctx, run, rec, candidates, indicators, &mu, claimed)
			}
		}()
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		if rec.ActualRaw == "" {
			continue
		}
		jobs <- rec
	}
	close(jobs)
	wg.Wait()
}

func (c *Collector) reconcileOne(ctx context.Context, run *models.CollectionRun, rec match.ScrapedRecord, candidates []models.Event, indicators map[uint64]repository.EventIndicator, mu *sync.Mutex, claimed map[uint64]bool) {
	event, err := c.Matcher.Match(rec, candidates)
	if err != nil {
		c.Logger.Warn("scraped record skipped",
			zap.String("currency", rec.Currency),
			zap.String("event", rec.EventName),
			zap.Error(err),
		)
		return
	}
	if event == nil {
		return
	}

	mu.Lock()
	if claimed[event.ID] {
		mu.Unlock()
		return
	}
	claimed[event.ID] = true
	mu.Unlock()

	actual, err := parse.ParseValue(rec.ActualRaw)
	if err != nil {
		mu.Lock()
		run.EventsFailed++
		run.ParseFailures++
		mu.Unlock()
		c.Logger.Warn("actual value unparseable",
			zap.String("event", event.EventName),
			zap.String("raw", rec.ActualRaw),
			zap.Error(err),
		)
		return
	}
	if actual == nil {
		// Published placeholder, not data yet.
		return
	}

	prev := indicators[event.ID]
	now := c.Now()
	snap := models.IndicatorSnapshot{
		EventID:           event.ID,
		PreviousValue:     prev.PreviousValue,
		ForecastValue:     prev.ForecastValue,
		ActualValue:       actual,
		ActualCollectedAt: &now,
		IsActualAvailable: true,
		CollectedAt:       now,
	}
	err = c.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return c.Repo.InsertSnapshotTx(ctx, tx, &snap)
	})

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		run.EventsFailed++
		run.DatabaseFailures++
		c.Logger.Error("snapshot insert failed",
			zap.Uint64("event_id", event.ID),
			zap.Error(err),
		)
		return
	}
	run.EventsUpdated++
	c.Logger.Info("actual value reconciled",
		zap.String("currency", event.Currency),
		zap.String("event", event.EventName),
		zap.String("actual", actual.String()),
	)
}

// recomputeSentiment re-runs the actual view for every distinct week the
// scanned events fall into. Lookback windows can straddle a week boundary.
func (c *Collector) recomputeSentiment(ctx context.Context, indicators map[uint64]repository.EventIndicator) error {
	weeks := map[time.Time]time.Time{}
	for _, row := range indicators {
		start, end := sentiment.WeekBounds(row.ScheduledTime)
		weeks[start] = end
	}
	for start, end := range weeks {
		if _, err := c.Engine.AnalyzeWeek(ctx, start, end, models.ViewActual); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) finish(ctx context.Context, run *models.CollectionRun, success bool) {
	run.FinishedAt = c.Now()
	run.Success = success
	if err := c.Repo.InsertCollectionRun(ctx, run); err != nil {
		c.Logger.Error("collection run not recorded", zap.Error(err))
	}
}

// backoffDelay is exponential with up to one second of jitter, capped.
func backoffDelay(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > maxBackoff {
		d = maxBackoff
	}
	return d + time.Duration(rand.Int63n(int64(time.Second)))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
