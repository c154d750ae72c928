package optin

import (
	"errors"
	"testing"
	"time"
)

func TestValidateDate(t *testing.T) {
	valid := []string{"2026-01-01", "2026-12-31", "1999-02-28", "2024-02-29"}
	for _, d := range valid {
		if err := ValidateDate(d); err != nil {
			t.Errorf("ValidateDate(%q) = %v, want nil", d, err)
		}
	}
	invalid := []string{
		"",
		"today",
		"2026-1-1",
		"01-01-2026",
		"2026/01/01",
		"2026-01-01T00:00:00Z",
		"2026-13-01",
		"2026-00-10",
		"2026-02-30",
		"20260101",
		" 2026-01-01",
	}
	for _, d := range invalid {
		if err := ValidateDate(d); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ValidateDate(%q) = %v, want ErrInvalidDate", d, err)
		}
	}
}

func TestTodayUsesReferenceTimezone(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// 03:00 UTC on June 2nd is still June 1st in Denver (UTC-6 in DST).
	now := time.Date(2026, 6, 2, 3, 0, 0, 0, time.UTC)
	if got := Today(denver, now); got != "2026-06-01" {
		t.Errorf("Today = %q, want 2026-06-01", got)
	}
	if got := Today(time.UTC, now); got != "2026-06-02" {
		t.Errorf("Today UTC = %q, want 2026-06-02", got)
	}
}
