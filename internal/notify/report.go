package notify

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"fxmonitor/internal/models"
	"fxmonitor/internal/sentiment"
)

// currencyPriority orders the majors ahead of everything else in reports.
var currencyPriority = []string{"USD", "EUR", "GBP", "JPY", "AUD", "NZD", "CAD", "CHF"}

var flagEmoji = map[string]string{
	"USD": "\U0001F1FA\U0001F1F8",
	"EUR": "\U0001F1EA\U0001F1FA",
	"GBP": "\U0001F1EC\U0001F1E7",
	"JPY": "\U0001F1EF\U0001F1F5",
	"AUD": "\U0001F1E6\U0001F1FA",
	"NZD": "\U0001F1F3\U0001F1FF",
	"CAD": "\U0001F1E8\U0001F1E6",
	"CHF": "\U0001F1E8\U0001F1ED",
}

// FormatWeeklyReport renders the per-currency sentiment rows into the
// Discord message posted every Monday.
func FormatWeeklyReport(rows []models.CurrencySentiment, weekStart time.Time) string {
	if len(rows) == 0 {
		return fmt.Sprintf(
			"**\U0001F4CA Economic Directional Analysis: Week of %s**\n\n"+
				"⚠️ **No high-impact economic events found for this week.**",
			weekStart.Format("January 02, 2006"))
	}

	byCurrency := map[string]models.CurrencySentiment{}
	for _, row := range rows {
		byCurrency[row.Currency] = row
	}

	var sections []string
	var summary []string
	for _, cur := range orderCurrencies(byCurrency) {
		row := byCurrency[cur]
		sections = append(sections, formatCurrencySection(row))
		summary = append(summary, fmt.Sprintf("%s: %s", cur, row.FinalSentiment))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**\U0001F4CA Economic Directional Analysis: Week of %s**\n\n",
		weekStart.Format("January 02, 2006"))
	sb.WriteString(strings.Join(sections, "\n"))
	sb.WriteString("\n\n**\U0001F4C8 Summary:** " + strings.Join(summary, " | "))
	fmt.Fprintf(&sb, "\n_Next run: %s 06:00 UTC_", weekStart.AddDate(0, 0, 7).Format("Jan 02"))
	return sb.String()
}

func formatCurrencySection(row models.CurrencySentiment) string {
	flag, ok := flagEmoji[row.Currency]
	if !ok {
		flag = "\U0001F3F3️"
	}

	var events []sentiment.EventSentiment
	_ = json.Unmarshal(row.EventBreakdown, &events)

	var bull, bear, neut int
	var keyEvents []string
	for _, ev := range events {
		switch {
		case ev.Verdict.Value > 0:
			bull++
		case ev.Verdict.Value < 0:
			bear++
		default:
			neut++
		}
		if ev.Verdict.Decisive && ev.Verdict.Value != 0 && len(keyEvents) < 2 {
			keyEvents = append(keyEvents, shortenEventName(ev.EventName))
		}
	}

	var counts []string
	if bull > 0 {
		counts = append(counts, fmt.Sprintf("\U0001F7E2%d", bull))
	}
	if bear > 0 {
		counts = append(counts, fmt.Sprintf("\U0001F534%d", bear))
	}
	if neut > 0 {
		counts = append(counts, fmt.Sprintf("⚪%d", neut))
	}
	eventsText := "No events"
	if len(counts) > 0 {
		eventsText = strings.Join(counts, " | ")
	}
	keyText := "No key events"
	if len(keyEvents) > 0 {
		keyText = strings.Join(keyEvents, ", ")
	}

	return fmt.Sprintf("**%s %s**: %s %s (%s)\n   Key: %s",
		flag, row.Currency, sentimentEmoji(row.FinalSentiment), row.FinalSentiment, eventsText, keyText)
}

func sentimentEmoji(s string) string {
	switch {
	case strings.Contains(s, string(sentiment.Bullish)):
		return "\U0001F7E2"
	case strings.Contains(s, string(sentiment.Bearish)):
		return "\U0001F534"
	default:
		return "⚪"
	}
}

func shortenEventName(name string) string {
	name = strings.ReplaceAll(name, "Preliminary", "Prelim")
	name = strings.ReplaceAll(name, "Manufacturing", "Mfg")
	if len(name) > 20 {
		name = name[:17] + "..."
	}
	return name
}

func orderCurrencies(byCurrency map[string]models.CurrencySentiment) []string {
	seen := map[string]bool{}
	var out []string
	for _, cur := range currencyPriority {
		if _, ok := byCurrency[cur]; ok {
			out = append(out, cur)
			seen[cur] = true
		}
	}
	var rest []string
	for cur := range byCurrency {
		if !seen[cur] {
			rest = append(rest, cur)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
