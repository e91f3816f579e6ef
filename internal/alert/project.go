package alert

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Window returns the lookback duration for a time range, or zero for
// RangeAll (unbounded). Unknown ranges are treated as unbounded.
func (r TimeRange) Window() time.Duration {
	switch r {
	case RangeHour:
		return time.Hour
	case RangeDay:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Project maps a raw alert set through the user's filter criteria into an
// ordered slice of view models. The species filter is a case-insensitive
// exact match; the time filter is evaluated against the now argument, so
// results change between calls even with no new data.
//
// Output is sorted ascending by distance with ties kept in input order.
// Project holds no state and is safe to call from concurrent render passes.
func Project(alerts []RawAlert, criteria FilterCriteria, now time.Time) []ViewModel {
	window := criteria.TimeRange.Window()
	species := strings.ToLower(strings.TrimSpace(criteria.Species))

	out := make([]ViewModel, 0, len(alerts))
	for _, a := range alerts {
		if species != "" && strings.ToLower(a.Species) != species {
			continue
		}
		if window > 0 && now.Sub(a.DetectedAt) > window {
			continue
		}
		out = append(out, ViewModel{
			RawAlert: a,
			Severity: SeverityFor(a.DistanceKM),
			AgeLabel: AgeLabel(a.DetectedAt, now),
		})
	}

	// Stable keeps input order for equal distances so output stays
	// deterministic without a secondary key.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})

	return out
}

// AgeLabel renders the elapsed time since detection as a short
// human-readable label.
func AgeLabel(detectedAt, now time.Time) string {
	age := now.Sub(detectedAt)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
