package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fxmonitor/internal/models"
)

const sampleCalendarHTML = `
<html><body>
<table class="calendar__table">
  <tr class="calendar__row calendar__row--day-breaker">
    <td class="calendar__cell calendar__date"><span>Tue Jun 23</span></td>
  </tr>
  <tr class="calendar__row">
    <td class="calendar__cell calendar__time">8:30am</td>
    <td class="calendar__cell calendar__currency">USD</td>
    <td class="calendar__cell calendar__impact"><span class="icon icon--ff-impact-red high"></span></td>
    <td class="calendar__cell calendar__event">Unemployment Claims</td>
    <td class="calendar__cell calendar__actual">227K</td>
    <td class="calendar__cell calendar__forecast">229K</td>
    <td class="calendar__cell calendar__previous">240K</td>
  </tr>
  <tr class="calendar__row">
    <td class="calendar__cell calendar__time">9:45am</td>
    <td class="calendar__cell calendar__currency">USD</td>
    <td class="calendar__cell calendar__impact"><span class="icon icon--ff-impact-yel medium"></span></td>
    <td class="calendar__cell calendar__event">Flash Services PMI</td>
    <td class="calendar__cell calendar__actual"></td>
    <td class="calendar__cell calendar__forecast">54.0</td>
    <td class="calendar__cell calendar__previous">54.8</td>
  </tr>
  <tr class="calendar__row calendar__row--day-breaker">
    <td class="calendar__cell calendar__date"><span>Wed Jun 24</span></td>
  </tr>
  <tr class="calendar__row">
    <td class="calendar__cell calendar__time">All Day</td>
    <td class="calendar__cell calendar__currency">EUR</td>
    <td class="calendar__cell calendar__impact"><span class="icon icon--ff-impact-red high"></span></td>
    <td class="calendar__cell calendar__event">German Bank Holiday</td>
    <td class="calendar__cell calendar__actual"></td>
    <td class="calendar__cell calendar__forecast"></td>
    <td class="calendar__cell calendar__previous"></td>
  </tr>
  <tr class="calendar__row">
    <td class="calendar__cell calendar__time">2:00pm</td>
    <td class="calendar__cell calendar__currency">GBP</td>
    <td class="calendar__cell calendar__impact"><span class="icon icon--ff-impact-red high"></span></td>
    <td class="calendar__cell calendar__event">CPI y/y</td>
    <td class="calendar__cell calendar__actual">2.5%</td>
    <td class="calendar__cell calendar__forecast">2.6%</td>
    <td class="calendar__cell calendar__previous">2.3%</td>
  </tr>
</table>
</body></html>`

func TestParseCalendar(t *testing.T) {
	now := time.Date(2026, 6, 24, 12, 0, 0, 0, time.UTC)

	records, err := ParseCalendar(strings.NewReader(sampleCalendarHTML), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	// Medium-impact row is dropped, both high-impact data rows and the
	// all-day row survive.
	if len(records) != 3 {
		t.Fatalf("records=%d want=3", len(records))
	}

	claims := records[0]
	if claims.Currency != "USD" || claims.EventName != "Unemployment Claims" {
		t.Fatalf("first record: %s %s", claims.Currency, claims.EventName)
	}
	if claims.ImpactLevel != models.ImpactHigh {
		t.Fatalf("impact=%s want=%s", claims.ImpactLevel, models.ImpactHigh)
	}
	wantTime := time.Date(2026, 6, 23, 8, 30, 0, 0, time.UTC)
	if !claims.ScheduledTime.Equal(wantTime) {
		t.Fatalf("scheduled=%s want=%s", claims.ScheduledTime, wantTime)
	}
	if claims.PreviousValue == nil || !claims.PreviousValue.Equal(decimal.NewFromInt(240000)) {
		t.Fatalf("previous=%v want=240000", claims.PreviousValue)
	}
	if claims.ForecastValue == nil || !claims.ForecastValue.Equal(decimal.NewFromInt(229000)) {
		t.Fatalf("forecast=%v want=229000", claims.ForecastValue)
	}
	if claims.ActualRaw != "227K" {
		t.Fatalf("actual raw=%q want=227K", claims.ActualRaw)
	}

	holiday := records[1]
	if !holiday.ScheduledTime.Equal(time.Date(2026, 6, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("all-day row scheduled=%s want midnight", holiday.ScheduledTime)
	}

	cpi := records[2]
	if cpi.Currency != "GBP" {
		t.Fatalf("third record currency=%s want=GBP", cpi.Currency)
	}
	if !cpi.ScheduledTime.Equal(time.Date(2026, 6, 24, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("cpi scheduled=%s", cpi.ScheduledTime)
	}
	if cpi.PreviousValue == nil || cpi.PreviousValue.String() != "2.3" {
		t.Fatalf("cpi previous=%v want=2.3", cpi.PreviousValue)
	}
}

func TestParseCalendar_NoTable(t *testing.T) {
	_, err := ParseCalendar(strings.NewReader("<html><body><p>maintenance</p></body></html>"), time.Now())
	if err == nil {
		t.Fatalf("expected parse error for missing table")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err=%T want *ParseError", err)
	}
}

func TestParseSourceDate_YearInference(t *testing.T) {
	// Early-January run still parsing late-December rows.
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	d, ok := parseSourceDate("Tue Dec 30", now)
	if !ok {
		t.Fatalf("parse failed")
	}
	if d.Year() != 2025 {
		t.Fatalf("year=%d want=2025", d.Year())
	}

	d, ok = parseSourceDate("Mon Jan 5", now)
	if !ok {
		t.Fatalf("parse failed")
	}
	if d.Year() != 2026 {
		t.Fatalf("year=%d want=2026", d.Year())
	}
}
