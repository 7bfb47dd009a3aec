package sentiment

import (
	"fmt"
)

// Resolve aggregates per-event verdicts into one currency label by majority
// vote. Only decisive verdicts count; missing-data and speaking events stay
// in the breakdown but not in the tally. tieBreak decides which side a
// bullish/bearish tie consolidates toward (Bearish by historical policy,
// configurable).
func Resolve(events []EventSentiment, tieBreak Label) Resolution {
	res := Resolution{EventCount: len(events)}

	for _, ev := range events {
		if !ev.Verdict.Decisive {
			continue
		}
		res.DecisiveCount++
		switch {
		case ev.Verdict.Value > 0:
			res.BullishCount++
		case ev.Verdict.Value < 0:
			res.BearishCount++
		default:
			res.NeutralCount++
		}
	}

	if res.DecisiveCount == 0 {
		res.FinalSentiment = Neutral
		res.FinalValue = 0
		res.Reason = "no resolvable events"
		return res
	}

	bull, bear, neut := res.BullishCount, res.BearishCount, res.NeutralCount

	switch {
	case bull > bear && bull > neut:
		res.FinalSentiment = Bullish
		res.FinalValue = 1
		res.Reason = fmt.Sprintf("majority bullish (%d/%d decisive events)", bull, res.DecisiveCount)
	case bear > bull && bear > neut:
		res.FinalSentiment = Bearish
		res.FinalValue = -1
		res.Reason = fmt.Sprintf("majority bearish (%d/%d decisive events)", bear, res.DecisiveCount)
	case neut > bull && neut > bear:
		res.FinalSentiment = Neutral
		res.FinalValue = 0
		res.Reason = fmt.Sprintf("majority neutral (%d/%d decisive events)", neut, res.DecisiveCount)
	default:
		winner := consolidationWinner(bull, bear, tieBreak)
		if winner == Bullish {
			res.FinalSentiment = BullishConsolidation
			res.FinalValue = 1
		} else {
			res.FinalSentiment = BearishConsolidation
			res.FinalValue = -1
		}
		res.Reason = fmt.Sprintf("tie resolved %s (%d bullish, %d bearish, %d neutral)",
			winner, bull, bear, neut)
	}

	return res
}

func consolidationWinner(bull, bear int, tieBreak Label) Label {
	if bull > bear {
		return Bullish
	}
	if bear > bull {
		return Bearish
	}
	if tieBreak == Bullish {
		return Bullish
	}
	return Bearish
}
