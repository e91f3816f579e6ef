package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unfiltered set is sorted ascending by distance with severity", func(t *testing.T) {
		alerts := []RawAlert{
			{ID: 2, Species: "tiger", DistanceKM: 6.0, DetectedAt: now.Add(-time.Minute)},
			{ID: 1, Species: "leopard", DistanceKM: 1.5, DetectedAt: now.Add(-time.Minute)},
		}

		vms := Project(alerts, FilterCriteria{Species: "", TimeRange: RangeAll}, now)
		require.Len(t, vms, 2)

		assert.Equal(t, int64(1), vms[0].ID)
		assert.Equal(t, SeverityCritical, vms[0].Severity)
		assert.Equal(t, int64(2), vms[1].ID)
		assert.Equal(t, SeverityMedium, vms[1].Severity)
	})

	t.Run("species filter is a case-insensitive exact match", func(t *testing.T) {
		alerts := []RawAlert{
			{ID: 1, Species: "leopard", DistanceKM: 1, DetectedAt: now},
			{ID: 2, Species: "Leopard", DistanceKM: 2, DetectedAt: now},
			{ID: 3, Species: "lion", DistanceKM: 3, DetectedAt: now},
		}

		vms := Project(alerts, FilterCriteria{Species: "LEOPARD", TimeRange: RangeAll}, now)
		require.Len(t, vms, 2)
		assert.Equal(t, int64(1), vms[0].ID)
		assert.Equal(t, int64(2), vms[1].ID)
	})

	t.Run("empty species string means no filter", func(t *testing.T) {
		alerts := []RawAlert{
			{ID: 1, Species: "leopard", DetectedAt: now},
			{ID: 2, Species: "tiger", DetectedAt: now},
		}

		vms := Project(alerts, FilterCriteria{TimeRange: RangeAll}, now)
		assert.Len(t, vms, 2)
	})

	t.Run("time filter keeps alerts within the window", func(t *testing.T) {
		alerts := []RawAlert{
			{ID: 1, Species: "tiger", DetectedAt: now.Add(-30 * time.Minute)},
			{ID: 2, Species: "tiger", DetectedAt: now.Add(-2 * time.Hour)},
			{ID: 3, Species: "tiger", DetectedAt: now.Add(-3 * 24 * time.Hour)},
			{ID: 4, Species: "tiger", DetectedAt: now.Add(-10 * 24 * time.Hour)},
		}

		assert.Len(t, Project(alerts, FilterCriteria{TimeRange: RangeHour}, now), 1)
		assert.Len(t, Project(alerts, FilterCriteria{TimeRange: RangeDay}, now), 2)
		assert.Len(t, Project(alerts, FilterCriteria{TimeRange: RangeWeek}, now), 3)
		assert.Len(t, Project(alerts, FilterCriteria{TimeRange: RangeAll}, now), 4)
	})

	t.Run("alert exactly at the window edge is kept", func(t *testing.T) {
		alerts := []RawAlert{
			{ID: 1, Species: "tiger", DetectedAt: now.Add(-time.Hour)},
		}

		vms := Project(alerts, FilterCriteria{TimeRange: RangeHour}, now)
		assert.Len(t, vms, 1, "now - detected_at == window must pass the filter")
	})

	t.Run("equal distances keep input order", func(t *testing.T) {
		alerts := []RawAlert{
			{ID: 10, Species: "lion", DistanceKM: 4.0, DetectedAt: now},
			{ID: 11, Species: "tiger", DistanceKM: 4.0, DetectedAt: now},
			{ID: 12, Species: "cheetah", DistanceKM: 4.0, DetectedAt: now},
		}

		vms := Project(alerts, FilterCriteria{TimeRange: RangeAll}, now)
		require.Len(t, vms, 3)
		assert.Equal(t, int64(10), vms[0].ID)
		assert.Equal(t, int64(11), vms[1].ID)
		assert.Equal(t, int64(12), vms[2].ID)
	})

	t.Run("projection is idempotent for unchanged inputs", func(t *testing.T) {
		alerts := []RawAlert{
			{ID: 1, Species: "leopard", DistanceKM: 8.3, DetectedAt: now.Add(-time.Hour)},
			{ID: 2, Species: "tiger", DistanceKM: 0.4, DetectedAt: now.Add(-time.Minute)},
		}
		criteria := FilterCriteria{Species: "", TimeRange: RangeAll}

		first := Project(alerts, criteria, now)
		second := Project(alerts, criteria, now)
		assert.Equal(t, first, second)
	})

	t.Run("output is a subset of the input", func(t *testing.T) {
		alerts := []RawAlert{
			{ID: 1, Species: "leopard", DetectedAt: now.Add(-2 * time.Hour)},
			{ID: 2, Species: "tiger", DetectedAt: now},
		}

		vms := Project(alerts, FilterCriteria{Species: "tiger", TimeRange: RangeHour}, now)
		byID := map[int64]RawAlert{1: alerts[0], 2: alerts[1]}
		for _, vm := range vms {
			assert.Equal(t, byID[vm.ID], vm.RawAlert)
		}
	})
}

func TestAgeLabel(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		age      time.Duration
		expected string
	}{
		{"seconds old", 20 * time.Second, "just now"},
		{"minutes old", 5 * time.Minute, "5m ago"},
		{"hours old", 3 * time.Hour, "3h ago"},
		{"days old", 49 * time.Hour, "2d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AgeLabel(now.Add(-tt.age), now))
		})
	}
}
