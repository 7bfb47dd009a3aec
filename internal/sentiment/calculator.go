package sentiment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// inverseIndicators lists series where a numeric decrease is economically
// positive. Matching is substring-based on the lowercased event name.
var inverseIndicators = []string{
	"unemployment claims",
	"initial jobless claims",
	"continuing jobless claims",
	"unemployment rate",
	"jobless claims",
	"weekly unemployment claims",
	"business inventories",
	"crude oil inventories",
}

// speakingKeywords mark events that carry no numeric direction at all.
var speakingKeywords = []string{
	"speaks", "speech", "meeting", "conference", "statement", "press",
}

func IsInverseIndicator(eventName string) bool {
	name := strings.ToLower(eventName)
	for _, ind := range inverseIndicators {
		if strings.Contains(name, ind) {
			return true
		}
	}
	return false
}

func isSpeakingEvent(eventName string) bool {
	name := strings.ToLower(eventName)
	for _, kw := range speakingKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Compute derives a directional verdict from a previous value and a baseline
// (forecast or actual). threshold is the non-negative noise band delta: a
// move must exceed it strictly to be decisive. Pure and deterministic.
func Compute(previous, baseline *decimal.Decimal, eventName string, threshold decimal.Decimal) Verdict {
	inverse := IsInverseIndicator(eventName)

	if previous == nil || baseline == nil {
		return Verdict{Value: 0, Label: Neutral, Reason: ReasonMissingData, IsInverse: inverse, Decisive: false}
	}
	if isSpeakingEvent(eventName) {
		return Verdict{Value: 0, Label: Neutral, Reason: ReasonSpeakingEvent, IsInverse: inverse, Decisive: false}
	}

	diff := baseline.Sub(*previous)
	if diff.IsZero() {
		return Verdict{Value: 0, Label: Neutral, Reason: ReasonMeetsExpected, IsInverse: inverse, Decisive: true}
	}

	up := diff.GreaterThan(threshold)
	down := diff.Neg().GreaterThan(threshold)

	switch {
	case up && !inverse:
		return Verdict{Value: 1, Label: Bullish, Reason: reasonFor(ReasonHigherNormal, eventName), IsInverse: false, Decisive: true}
	case down && !inverse:
		return Verdict{Value: -1, Label: Bearish, Reason: reasonFor(ReasonLowerNormal, eventName), IsInverse: false, Decisive: true}
	case up && inverse:
		return Verdict{Value: -1, Label: Bearish, Reason: reasonFor(ReasonHigherInverse, eventName), IsInverse: true, Decisive: true}
	case down && inverse:
		return Verdict{Value: 1, Label: Bullish, Reason: reasonFor(ReasonLowerInverse, eventName), IsInverse: true, Decisive: true}
	default:
		return Verdict{Value: 0, Label: Neutral, Reason: ReasonWithinBand, IsInverse: inverse, Decisive: true}
	}
}

func reasonFor(base, eventName string) string {
	return fmt.Sprintf("%s (%s)", base, eventName)
}
