package alert

// Severity is a coarse urgency bucket derived purely from distance.
// It is not a server-provided field.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Distance thresholds in kilometers. Each boundary belongs to the less
// severe bracket: a detection exactly 2km away is "high", not "critical".
const (
	criticalWithinKM = 2.0
	highWithinKM     = 5.0
	mediumWithinKM   = 10.0
)

// SeverityFor maps a distance in kilometers to a severity tier.
// Total over all inputs; severity is non-increasing as distance grows.
func SeverityFor(distanceKM float64) Severity {
	switch {
	case distanceKM < criticalWithinKM:
		return SeverityCritical
	case distanceKM < highWithinKM:
		return SeverityHigh
	case distanceKM < mediumWithinKM:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
