package alert

import "time"

// RawAlert represents a server-authoritative alert record.
// A record is immutable once received; a refresh replaces the whole set.
type RawAlert struct {
	// ID is the unique identifier for this alert
	ID int64 `json:"id"`

	// Species is the detected species label (lowercase, server-side)
	Species string `json:"species"`

	// Latitude is the detection latitude
	Latitude float64 `json:"lat"`

	// Longitude is the detection longitude
	Longitude float64 `json:"lon"`

	// DistanceKM is the great-circle distance from the user's configured
	// location to the detection, computed server-side
	DistanceKM float64 `json:"distance_km"`

	// Confidence is the detection confidence percentage, if the detector
	// reported one
	Confidence *float64 `json:"confidence,omitempty"`

	// DetectedAt is when the detection occurred
	DetectedAt time.Time `json:"detected_at"`
}

// ViewModel is a RawAlert plus presentation facts derived at render time.
// View models are recomputed on every projection and never cached across
// a refresh.
type ViewModel struct {
	RawAlert

	// Severity is the urgency tier derived from DistanceKM
	Severity Severity `json:"severity"`

	// AgeLabel is a humanized recency string ("just now", "5m ago", ...)
	AgeLabel string `json:"ageLabel"`
}

// TimeRange selects how far back the projection looks.
type TimeRange string

const (
	RangeAll  TimeRange = "all"
	RangeHour TimeRange = "1h"
	RangeDay  TimeRange = "24h"
	RangeWeek TimeRange = "7d"
)

// FilterCriteria describes the user-chosen view filters. Criteria are
// mutated only by explicit user actions and persist across refreshes.
type FilterCriteria struct {
	// Species filters to a single species; empty string means no filter
	Species string `json:"species"`

	// TimeRange bounds how old an alert may be to stay visible
	TimeRange TimeRange `json:"timeRange"`
}
