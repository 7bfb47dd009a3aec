package parse

import (
	"errors"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
		null bool
	}{
		{"2.5%", "2.5", false},
		{"-0.3%", "-0.3", false},
		{"224K", "224000", false},
		{"1.2M", "1200000", false},
		{"0.5B", "500000000", false},
		{"1,250", "1250", false},
		{"1,250.75", "1250.75", false},
		{"48.7", "48.7", false},
		{"+0.4", "0.4", false},
		{"$12.3", "12.3", false},
		{"", "", true},
		{"N/A", "", true},
		{"n/a", "", true},
		{"-", "", true},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		if err != nil {
			t.Fatalf("ParseValue(%q) err=%v", tt.in, err)
		}
		if tt.null {
			if got != nil {
				t.Fatalf("ParseValue(%q)=%s want nil", tt.in, got.String())
			}
			continue
		}
		if got == nil || got.String() != tt.want {
			t.Fatalf("ParseValue(%q)=%v want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseValueMalformed(t *testing.T) {
	for _, in := range []string{"abc", "1.2.3", "%", "++1"} {
		_, err := ParseValue(in)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("ParseValue(%q) err=%v want ErrMalformed", in, err)
		}
	}
}
