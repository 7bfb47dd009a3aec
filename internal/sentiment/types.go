package sentiment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Label string

const (
	Bullish Label = "Bullish"
	Bearish Label = "Bearish"
	Neutral Label = "Neutral"

	BullishConsolidation Label = "Bullish with Consolidation"
	BearishConsolidation Label = "Bearish with Consolidation"
)

// Reasons attached to per-event verdicts.
const (
	ReasonMissingData   = "missing forecast or previous value"
	ReasonSpeakingEvent = "speaking event - no directional sentiment"
	ReasonMeetsExpected = "meets expectations"
	ReasonWithinBand    = "within threshold"
	ReasonHigherNormal  = "higher value for normal indicator"
	ReasonLowerNormal   = "lower value for normal indicator"
	ReasonHigherInverse = "higher value for inverse indicator"
	ReasonLowerInverse  = "lower value for inverse indicator"
)

// Accuracy tags comparing forecast-derived vs actual-derived sentiment.
const (
	AccuracyMatch      = "match"
	AccuracyMismatch   = "mismatch"
	AccuracyNoData     = "no_data"
	AccuracyNoForecast = "no_forecast"
)

// Verdict is the outcome of one previous-vs-baseline comparison.
type Verdict struct {
	Value     int    `json:"value"` // +1 bullish, -1 bearish, 0 neutral
	Label     Label  `json:"label"`
	Reason    string `json:"reason"`
	IsInverse bool   `json:"is_inverse"`
	// Decisive is false for verdicts that must not count toward the
	// per-currency vote (missing data, speaking events).
	Decisive bool `json:"decisive"`
}

// EventSentiment is one event's entry in a currency breakdown.
type EventSentiment struct {
	EventID       uint64           `json:"event_id"`
	EventName     string           `json:"event_name"`
	Currency      string           `json:"currency"`
	ScheduledTime time.Time        `json:"scheduled_time"`
	PreviousValue *decimal.Decimal `json:"previous_value"`
	ForecastValue *decimal.Decimal `json:"forecast_value"`
	ActualValue   *decimal.Decimal `json:"actual_value,omitempty"`

	Verdict     Verdict `json:"verdict"`
	AccuracyTag string  `json:"accuracy_tag,omitempty"`
}

// Resolution is the majority-vote outcome for one currency.
type Resolution struct {
	FinalSentiment Label  `json:"final_sentiment"`
	FinalValue     int    `json:"final_value"`
	Reason         string `json:"reason"`
	BullishCount   int    `json:"bullish_count"`
	BearishCount   int    `json:"bearish_count"`
	NeutralCount   int    `json:"neutral_count"`
	DecisiveCount  int    `json:"decisive_count"`
	EventCount     int    `json:"event_count"`
}
