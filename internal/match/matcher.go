package match

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fxmonitor/internal/models"
)

// ErrAmbiguous is returned when two candidates tie on scheduled-time
// proximity; the record is skipped rather than guessed.
var ErrAmbiguous = errors.New("ambiguous match: multiple candidates at equal proximity")

// ScrapedRecord is one row lifted from the freshly scraped calendar page.
type ScrapedRecord struct {
	Currency      string
	EventName     string
	ScheduledTime time.Time
	ImpactLevel   string
	PreviousValue *decimal.Decimal
	ForecastValue *decimal.Decimal
	ActualRaw     string
}

// Matcher fuzzy-matches scraped actual records back to stored events.
type Matcher struct {
	Scorer    Scorer
	Threshold float64
	// Window bounds the |scheduled - reported| time distance.
	Window time.Duration
}

func NewMatcher(scorer Scorer, threshold float64, window time.Duration) *Matcher {
	if scorer == nil {
		scorer = TokenScorer{}
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Matcher{Scorer: scorer, Threshold: threshold, Window: window}
}

// Match finds the stored event a scraped record refers to. Candidates are
// expected to be pre-filtered to past events still missing actual data;
// events already holding actual data must not be offered again. Returns
// (nil, nil) when nothing passes, ErrAmbiguous on an exact proximity tie.
func (m *Matcher) Match(rec ScrapedRecord, candidates []models.Event) (*models.Event, error) {
	var best *models.Event
	var bestDist time.Duration
	tied := false

	for i := range candidates {
		cand := &candidates[i]
		if cand.Currency != rec.Currency {
			continue
		}
		if m.Scorer.Similarity(cand.EventName, rec.EventName) < m.Threshold {
			continue
		}
		dist := absDuration(cand.ScheduledTime.Sub(rec.ScheduledTime))
		if dist > m.Window {
			continue
		}
		switch {
		case best == nil || dist < bestDist:
			best = cand
			bestDist = dist
			tied = false
		case dist == bestDist:
			tied = true
		}
	}

	if best == nil {
		return nil, nil
	}
	if tied {
		return nil, ErrAmbiguous
	}
	return best, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
