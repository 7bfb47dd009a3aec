package match

import (
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Core CPI m/m", "core cpi mom"},
		{"GDP q/q", "gdp qoq"},
		{"Retail Sales y/y", "retail sales yoy"},
		{"  ISM   Manufacturing  PMI ", "ism manufacturing pmi"},
		{"Prelim UoM Consumer Sentiment (Revised)", "prelim uom consumer sentiment revised"},
		{"Avg. Earnings Index 3m/y", "avg earnings index 3m/y"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Fatalf("NormalizeName(%q)=%q want=%q", tt.in, got, tt.want)
		}
	}
}

func TestTokenScorer_Similarity(t *testing.T) {
	s := TokenScorer{}

	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "Core CPI m/m", "Core CPI m/m", 1, 1},
		{"format variants collapse", "Core CPI m/m", "core cpi mom", 1, 1},
		{"containment", "CPI m/m", "Core CPI m/m", 0.9, 0.9},
		{"token overlap", "Flash Manufacturing PMI", "Final Manufacturing PMI", 0.6, 0.7},
		{"unrelated", "Unemployment Claims", "Crude Oil Inventories", 0, 0.1},
		{"empty", "", "Core CPI m/m", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Similarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Fatalf("similarity=%v want in [%v,%v]", got, tt.min, tt.max)
			}
		})
	}
}

func TestTokenScorer_Symmetric(t *testing.T) {
	s := TokenScorer{}
	a, b := "Flash Services PMI", "Services PMI Final"
	if s.Similarity(a, b) != s.Similarity(b, a) {
		t.Fatalf("similarity is not symmetric for %q / %q", a, b)
	}
}
