package workflow

import (
	"time"

	"github.com/aulas/aulas-bff/internal/models"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Progress is how far now is through the class period, as a percentage in
// [0, 100]. Missing, unparsable or inverted dates give 0.
func Progress(class models.ClassInfo, now time.Time) float64 {
	start, ok := parseDate(class.StartDate)
	if !ok {
		return 0
	}
	end, ok := parseDate(class.EndDate)
	if !ok {
		return 0
	}
	if start.After(end) || now.Before(start) {
		return 0
	}
	if now.After(end) {
		return 100
	}

	total := end.Sub(start)
	if total == 0 {
		return 100
	}
	pct := float64(now.Sub(start)) / float64(total) * 100
	return min(max(pct, 0), 100)
}

type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// GradeBand buckets a grade for display.
func GradeBand(grade int) Band {
	switch {
	case grade < 60:
		return BandLow
	case grade < 80:
		return BandMedium
	default:
		return BandHigh
	}
}
