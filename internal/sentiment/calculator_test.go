package sentiment

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCompute_NormalIndicator(t *testing.T) {
	tests := []struct {
		name      string
		previous  *decimal.Decimal
		baseline  *decimal.Decimal
		event     string
		threshold string
		wantValue int
		wantLabel Label
		decisive  bool
	}{
		{"higher is bullish", dec("48.7"), dec("49.3"), "ISM Manufacturing PMI", "0", 1, Bullish, true},
		{"lower is bearish", dec("49.3"), dec("48.9"), "ISM Manufacturing PMI", "0", -1, Bearish, true},
		{"equal meets expectations", dec("2.5"), dec("2.5"), "CPI m/m", "0", 0, Neutral, true},
		{"within threshold band", dec("100"), dec("100.4"), "Retail Sales m/m", "0.5", 0, Neutral, true},
		{"exactly at threshold stays neutral", dec("100"), dec("100.5"), "Retail Sales m/m", "0.5", 0, Neutral, true},
		{"just past threshold is bullish", dec("100"), dec("100.5001"), "Retail Sales m/m", "0.5", 1, Bullish, true},
		{"missing previous", nil, dec("49.3"), "ISM Manufacturing PMI", "0", 0, Neutral, false},
		{"missing baseline", dec("48.7"), nil, "ISM Manufacturing PMI", "0", 0, Neutral, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.previous, tt.baseline, tt.event, decimal.RequireFromString(tt.threshold))
			if got.Value != tt.wantValue {
				t.Fatalf("value=%d want=%d", got.Value, tt.wantValue)
			}
			if got.Label != tt.wantLabel {
				t.Fatalf("label=%s want=%s", got.Label, tt.wantLabel)
			}
			if got.Decisive != tt.decisive {
				t.Fatalf("decisive=%v want=%v", got.Decisive, tt.decisive)
			}
		})
	}
}

func TestCompute_InverseIndicator(t *testing.T) {
	// Claims dropping from 240K to 227K is good news.
	got := Compute(dec("240000"), dec("227000"), "Unemployment Claims", decimal.Zero)
	if got.Value != 1 || got.Label != Bullish {
		t.Fatalf("got %s (%d), want Bullish (+1)", got.Label, got.Value)
	}
	if !got.IsInverse {
		t.Fatalf("IsInverse=false, want true")
	}

	got = Compute(dec("227000"), dec("240000"), "Initial Jobless Claims", decimal.Zero)
	if got.Value != -1 || got.Label != Bearish {
		t.Fatalf("got %s (%d), want Bearish (-1)", got.Label, got.Value)
	}
}

func TestCompute_SpeakingEvent(t *testing.T) {
	got := Compute(dec("1"), dec("2"), "Fed Chair Powell Speaks", decimal.Zero)
	if got.Value != 0 || got.Decisive {
		t.Fatalf("speaking event got value=%d decisive=%v, want 0/false", got.Value, got.Decisive)
	}
	if got.Reason != ReasonSpeakingEvent {
		t.Fatalf("reason=%q", got.Reason)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	first := Compute(dec("48.7"), dec("49.3"), "Flash Services PMI", decimal.Zero)
	for i := 0; i < 10; i++ {
		again := Compute(dec("48.7"), dec("49.3"), "Flash Services PMI", decimal.Zero)
		if again != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestIsInverseIndicator(t *testing.T) {
	inverse := []string{
		"Unemployment Claims",
		"Weekly Unemployment Claims",
		"Continuing Jobless Claims",
		"Unemployment Rate",
		"Crude Oil Inventories",
		"Business Inventories m/m",
	}
	for _, name := range inverse {
		if !IsInverseIndicator(name) {
			t.Fatalf("%q not detected as inverse", name)
		}
	}
	normal := []string{"Core CPI m/m", "Retail Sales m/m", "Non-Farm Employment Change"}
	for _, name := range normal {
		if IsInverseIndicator(name) {
			t.Fatalf("%q wrongly detected as inverse", name)
		}
	}
}
