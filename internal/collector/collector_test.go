package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fxmonitor/internal/calendar"
	"fxmonitor/internal/config"
	"fxmonitor/internal/match"
	"fxmonitor/internal/models"
	"fxmonitor/internal/parse"
	"fxmonitor/internal/repository"
)

// stubRepo implements the collector-facing slice of repository.Repository;
// the embedded interface panics on anything a test did not mean to touch.
type stubRepo struct {
	repository.Repository

	mu         sync.Mutex
	events     []models.Event
	indicators []repository.EventIndicator
	snapshots  []models.IndicatorSnapshot
	runs       []models.CollectionRun
	scanErr    error
	insertErr  error
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func (s *stubRepo) ListEventsWithLatestSnapshot(ctx context.Context, q repository.SnapshotQuery) ([]repository.EventIndicator, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	var out []repository.EventIndicator
	for _, row := range s.indicators {
		if q.MissingActualOnly && row.IsActualAvailable {
			continue
		}
		if row.ScheduledTime.Before(q.From) || row.ScheduledTime.After(q.To) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *stubRepo) InsertSnapshotTx(ctx context.Context, tx *gorm.DB, item *models.IndicatorSnapshot) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, *item)
	return nil
}

func (s *stubRepo) InsertCollectionRun(ctx context.Context, item *models.CollectionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *item)
	return nil
}

// stubSource replays a scripted sequence of fetch outcomes.
type stubSource struct {
	mu      sync.Mutex
	calls   int
	delay   time.Duration
	records []match.ScrapedRecord
	errs    []error
}

func (s *stubSource) FetchCalendar(ctx context.Context) ([]match.ScrapedRecord, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	call := s.calls
	s.calls++
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	return s.records, nil
}

// sourceFunc adapts a function to the calendar.Source interface.
type sourceFunc func(ctx context.Context) ([]match.ScrapedRecord, error)

func (f sourceFunc) FetchCalendar(ctx context.Context) ([]match.ScrapedRecord, error) {
	return f(ctx)
}

func dec(s string) *decimal.Decimal {
	d, err := parse.ParseValue(s)
	if err != nil || d == nil {
		panic("can't convert " + s + " to decimal")
	}
	return d
}

func testConfig() config.CollectorConfig {
	return config.CollectorConfig{
		RetryLimit:       3,
		LookbackDays:     7,
		GraceBuffer:      time.Hour,
		RunTimeout:       30 * time.Second,
		Workers:          2,
		MatchWindow:      24 * time.Hour,
		MatchThreshold:   0.6,
		BreakerThreshold: 5,
		BreakerCooldown:  15 * time.Minute,
	}
}

func newTestCollector(repo *stubRepo, source *stubSource) *Collector {
	c := New(repo, source, nil, nil, zap.NewNop(), testConfig())
	c.Now = func() time.Time { return time.Date(2026, 6, 24, 12, 0, 0, 0, time.UTC) }
	c.Sleep = func(ctx context.Context, d time.Duration) {}
	return c
}

func pastIndicator(id uint64, currency, name string, hoursAgo int) repository.EventIndicator {
	return repository.EventIndicator{
		EventID:       id,
		Currency:      currency,
		EventName:     name,
		ScheduledTime: time.Date(2026, 6, 24, 12, 0, 0, 0, time.UTC).Add(-time.Duration(hoursAgo) * time.Hour),
		ImpactLevel:   models.ImpactHigh,
		PreviousValue: dec("240000"),
		ForecastValue: dec("229000"),
	}
}

func TestRun_ReconcilesActualValue(t *testing.T) {
	repo := &stubRepo{
		indicators: []repository.EventIndicator{
			pastIndicator(1, "USD", "Unemployment Claims", 4),
		},
	}
	source := &stubSource{
		records: []match.ScrapedRecord{
			{
				Currency:      "USD",
				EventName:     "Unemployment Claims",
				ScheduledTime: time.Date(2026, 6, 24, 8, 0, 0, 0, time.UTC),
				ActualRaw:     "227K",
			},
		},
	}
	c := newTestCollector(repo, source)

	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !run.Success {
		t.Fatalf("run not successful: %s", run.Error)
	}
	if run.EventsConsidered != 1 || run.EventsUpdated != 1 || run.EventsFailed != 0 {
		t.Fatalf("counts considered=%d updated=%d failed=%d",
			run.EventsConsidered, run.EventsUpdated, run.EventsFailed)
	}

	if len(repo.snapshots) != 1 {
		t.Fatalf("snapshots=%d want=1", len(repo.snapshots))
	}
	snap := repo.snapshots[0]
	if !snap.IsActualAvailable || snap.ActualValue == nil || !snap.ActualValue.Equal(decimal.NewFromInt(227000)) {
		t.Fatalf("snapshot=%+v", snap)
	}
	if snap.PreviousValue == nil || !snap.PreviousValue.Equal(decimal.NewFromInt(240000)) {
		t.Fatalf("previous not carried over: %v", snap.PreviousValue)
	}
	if len(repo.runs) != 1 {
		t.Fatalf("runs recorded=%d want=1", len(repo.runs))
	}
}

func TestRun_NoCandidatesSkipsFetch(t *testing.T) {
	repo := &stubRepo{}
	source := &stubSource{}
	c := newTestCollector(repo, source)

	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !run.Success || run.EventsConsidered != 0 {
		t.Fatalf("run=%+v", run)
	}
	if source.calls != 0 {
		t.Fatalf("fetch called %d times with no candidates", source.calls)
	}
}

func TestRun_BreakerOpenSkipsRun(t *testing.T) {
	repo := &stubRepo{
		indicators: []repository.EventIndicator{pastIndicator(1, "USD", "Core CPI m/m", 4)},
	}
	source := &stubSource{}
	c := newTestCollector(repo, source)
	for i := 0; i < 5; i++ {
		c.Breaker.RecordFailure()
	}

	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !run.BreakerOpen || run.Success {
		t.Fatalf("run=%+v want breaker-open failure record", run)
	}
	if source.calls != 0 {
		t.Fatalf("fetch attempted through an open breaker")
	}
	if len(repo.runs) != 1 {
		t.Fatalf("skipped run not recorded")
	}
}

func TestRun_NetworkFailureExhaustsRetries(t *testing.T) {
	netErr := &calendar.NetworkError{URL: "https://example.test", Err: errors.New("connection reset")}
	repo := &stubRepo{
		indicators: []repository.EventIndicator{pastIndicator(1, "USD", "Core CPI m/m", 4)},
	}
	source := &stubSource{errs: []error{netErr, netErr, netErr}}
	c := newTestCollector(repo, source)

	run, err := c.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error after exhausted retries")
	}
	if source.calls != 3 {
		t.Fatalf("fetch attempts=%d want=3", source.calls)
	}
	if run.Success || run.NetworkFailures != 1 {
		t.Fatalf("run=%+v", run)
	}
	if c.Breaker.Failures() != 1 {
		t.Fatalf("breaker failures=%d want=1", c.Breaker.Failures())
	}
}

func TestRun_TransientFailureRecovers(t *testing.T) {
	netErr := &calendar.NetworkError{URL: "https://example.test", Err: errors.New("timeout")}
	repo := &stubRepo{
		indicators: []repository.EventIndicator{pastIndicator(1, "USD", "Unemployment Claims", 4)},
	}
	source := &stubSource{
		errs: []error{netErr},
		records: []match.ScrapedRecord{
			{
				Currency:      "USD",
				EventName:     "Unemployment Claims",
				ScheduledTime: time.Date(2026, 6, 24, 8, 0, 0, 0, time.UTC),
				ActualRaw:     "227K",
			},
		},
	}
	c := newTestCollector(repo, source)
	c.Breaker.RecordFailure()

	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !run.Success || run.EventsUpdated != 1 {
		t.Fatalf("run=%+v", run)
	}
	if c.Breaker.Failures() != 0 {
		t.Fatalf("breaker streak not reset on success")
	}
}

func TestRun_ParseErrorNotRetried(t *testing.T) {
	perr := &calendar.ParseError{Msg: "calendar table not found"}
	repo := &stubRepo{
		indicators: []repository.EventIndicator{pastIndicator(1, "USD", "Core CPI m/m", 4)},
	}
	source := &stubSource{errs: []error{perr, perr, perr}}
	c := newTestCollector(repo, source)

	run, err := c.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if source.calls != 1 {
		t.Fatalf("fetch attempts=%d, markup failures must not retry", source.calls)
	}
	if run.ParseFailures != 1 {
		t.Fatalf("run=%+v", run)
	}
}

func TestRun_MalformedActualCountedPerEvent(t *testing.T) {
	repo := &stubRepo{
		indicators: []repository.EventIndicator{
			pastIndicator(1, "USD", "Unemployment Claims", 4),
			pastIndicator(2, "USD", "Core CPI m/m", 6),
		},
	}
	source := &stubSource{
		records: []match.ScrapedRecord{
			{
				Currency:      "USD",
				EventName:     "Unemployment Claims",
				ScheduledTime: time.Date(2026, 6, 24, 8, 0, 0, 0, time.UTC),
				ActualRaw:     "garbage!!",
			},
			{
				Currency:      "USD",
				EventName:     "Core CPI m/m",
				ScheduledTime: time.Date(2026, 6, 24, 6, 0, 0, 0, time.UTC),
				ActualRaw:     "0.3%",
			},
		},
	}
	c := newTestCollector(repo, source)

	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	// One event failed to parse, the other still updated.
	if !run.Success || run.EventsUpdated != 1 || run.EventsFailed != 1 || run.ParseFailures != 1 {
		t.Fatalf("run=%+v", run)
	}
}

func TestRun_AlreadyReconciledNotConsidered(t *testing.T) {
	done := pastIndicator(1, "USD", "Unemployment Claims", 4)
	done.IsActualAvailable = true
	actual := dec("227000")
	done.ActualValue = actual

	repo := &stubRepo{indicators: []repository.EventIndicator{done}}
	source := &stubSource{
		records: []match.ScrapedRecord{
			{
				Currency:      "USD",
				EventName:     "Unemployment Claims",
				ScheduledTime: time.Date(2026, 6, 24, 8, 0, 0, 0, time.UTC),
				ActualRaw:     "227K",
			},
		},
	}
	c := newTestCollector(repo, source)

	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if run.EventsConsidered != 0 || len(repo.snapshots) != 0 {
		t.Fatalf("already-reconciled event re-entered the pipeline: %+v", run)
	}
}

func TestRun_ConcurrentTriggersDoNotOverlap(t *testing.T) {
	repo := &stubRepo{
		indicators: []repository.EventIndicator{
			pastIndicator(1, "USD", "Unemployment Claims", 4),
		},
	}
	records := []match.ScrapedRecord{
		{
			Currency:      "USD",
			EventName:     "Unemployment Claims",
			ScheduledTime: time.Date(2026, 6, 24, 8, 0, 0, 0, time.UTC),
			ActualRaw:     "227K",
		},
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	source := sourceFunc(func(ctx context.Context) ([]match.ScrapedRecord, error) {
		once.Do(func() { close(entered) })
		<-release
		return records, nil
	})

	c := New(repo, source, nil, nil, zap.NewNop(), testConfig())
	c.Now = func() time.Time { return time.Date(2026, 6, 24, 12, 0, 0, 0, time.UTC) }
	c.Sleep = func(ctx context.Context, d time.Duration) {}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		if _, err := c.Run(context.Background()); err != nil {
			t.Errorf("first run err=%v", err)
		}
	}()

	// Second trigger while the first run is mid-fetch must be rejected.
	<-entered
	rejected, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("rejected run err=%v", err)
	}
	if rejected.Success || rejected.Error != "collection already in progress" {
		t.Fatalf("overlapping run not rejected: %+v", rejected)
	}

	close(release)
	<-firstDone

	if len(repo.snapshots) != 1 {
		t.Fatalf("snapshots=%d want=1, overlapping runs double-inserted", len(repo.snapshots))
	}
	if len(repo.runs) != 2 {
		t.Fatalf("runs recorded=%d want=2", len(repo.runs))
	}
}

func TestRun_TimeoutRecordsFailedRun(t *testing.T) {
	repo := &stubRepo{
		indicators: []repository.EventIndicator{
			pastIndicator(1, "USD", "Unemployment Claims", 4),
		},
	}
	source := &stubSource{
		delay: 50 * time.Millisecond,
		records: []match.ScrapedRecord{
			{
				Currency:      "USD",
				EventName:     "Unemployment Claims",
				ScheduledTime: time.Date(2026, 6, 24, 8, 0, 0, 0, time.UTC),
				ActualRaw:     "227K",
			},
		},
	}
	cfg := testConfig()
	cfg.RunTimeout = 5 * time.Millisecond
	c := New(repo, source, nil, nil, zap.NewNop(), cfg)
	c.Now = func() time.Time { return time.Date(2026, 6, 24, 12, 0, 0, 0, time.UTC) }
	c.Sleep = func(ctx context.Context, d time.Duration) {}

	run, err := c.Run(context.Background())
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if run.Success || run.Error != "run timed out" || run.OtherFailures != 1 {
		t.Fatalf("run=%+v", run)
	}
	if len(repo.snapshots) != 0 {
		t.Fatalf("snapshots written after deadline: %d", len(repo.snapshots))
	}
	if c.Breaker.Failures() != 1 {
		t.Fatalf("breaker failures=%d want=1", c.Breaker.Failures())
	}
	if len(repo.runs) != 1 {
		t.Fatalf("timed-out run not recorded")
	}
}

func TestRun_ScanFailureCountsTowardBreaker(t *testing.T) {
	repo := &stubRepo{scanErr: errors.New("connection refused")}
	source := &stubSource{}
	c := newTestCollector(repo, source)

	run, err := c.Run(context.Background())
	if err == nil {
		t.Fatalf("expected scan error")
	}
	if run.Success || run.DatabaseFailures != 1 {
		t.Fatalf("run=%+v", run)
	}
	if c.Breaker.Failures() != 1 {
		t.Fatalf("breaker failures=%d want=1, scan failures must count", c.Breaker.Failures())
	}
	if source.calls != 0 {
		t.Fatalf("fetch attempted after failed scan")
	}
}
