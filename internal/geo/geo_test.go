package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKM(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.InDelta(t, 0, HaversineKM(28.6139, 77.2090, 28.6139, 77.2090), 1e-9)
	})

	t.Run("delhi to mumbai is roughly 1150km", func(t *testing.T) {
		d := HaversineKM(28.6139, 77.2090, 19.0760, 72.8777)
		assert.InDelta(t, 1150, d, 20)
	})

	t.Run("symmetric in its arguments", func(t *testing.T) {
		ab := HaversineKM(13.0827, 80.2707, 22.5726, 88.3639)
		ba := HaversineKM(22.5726, 88.3639, 13.0827, 80.2707)
		assert.InDelta(t, ab, ba, 1e-9)
	})
}

func TestNearest(t *testing.T) {
	t.Run("picks the minimum-distance center", func(t *testing.T) {
		// Near Chennai
		nearest := Nearest(13.0, 80.2, WCCBCenters)
		require.NotNil(t, nearest)
		assert.Equal(t, "WCCB Southern Regional Office Chennai", nearest.Name)
		assert.Greater(t, nearest.DistanceKM, 0.0)
	})

	t.Run("nil for an empty center list", func(t *testing.T) {
		assert.Nil(t, Nearest(13.0, 80.2, nil))
	})
}
