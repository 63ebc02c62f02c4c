package runid

import (
	"regexp"
	"sort"
	"testing"
	"time"
)

var pattern = regexp.MustCompile(`^run_\d{8}T\d{6}Z_[0-9a-f]{8}$`)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		id := New()
		if !pattern.MatchString(id) {
			t.Fatalf("New() = %q, want run_<timestamp>_<8hex>", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestAt_RoundTrip(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	start := time.Date(2026, 10, 16, 11, 15, 0, 500, loc)

	id := At(start)
	got, err := Time(id)
	if err != nil {
		t.Fatalf("Time(%q): %v", id, err)
	}
	want := time.Date(2026, 10, 16, 9, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Time(%q) = %v, want %v", id, got, want)
	}
}

func TestIDsSortByTime(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ids := []string{
		At(base.Add(48 * time.Hour)),
		At(base),
		At(base.Add(time.Second)),
	}
	sort.Strings(ids)

	for i := 1; i < len(ids); i++ {
		prev, _ := Time(ids[i-1])
		cur, _ := Time(ids[i])
		if cur.Before(prev) {
			t.Errorf("sorted ids out of time order: %v", ids)
		}
	}
}

func TestTime_Invalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"wrong prefix", "dep_20260213T200102Z_6f2c9a1b"},
		{"no suffix", "run_20260213T200102Z"},
		{"bad timestamp", "run_2026-02-13_6f2c9a1b"},
		{"short suffix", "run_20260213T200102Z_6f2c"},
		{"uppercase suffix", "run_20260213T200102Z_6F2C9A1B"},
		{"non-hex suffix", "run_20260213T200102Z_zzzzzzzz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Valid(tt.id) {
				t.Errorf("Valid(%q) = true", tt.id)
			}
		})
	}
}
