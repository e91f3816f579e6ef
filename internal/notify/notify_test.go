package notify

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testViewModel() alert.ViewModel {
	confidence := 92.0
	return alert.ViewModel{
		RawAlert: alert.RawAlert{
			ID:         7,
			Species:    "leopard",
			DistanceKM: 1.4,
			Confidence: &confidence,
			DetectedAt: time.Now().Add(-5 * time.Minute),
		},
		Severity: alert.SeverityCritical,
		AgeLabel: "5m ago",
	}
}

func TestTerminalNotifier(t *testing.T) {
	t.Run("writes a banner with severity, species and distance", func(t *testing.T) {
		var buf bytes.Buffer
		n := New(&buf, true, testLogger())

		require.NoError(t, n.Notify(testViewModel()))

		out := buf.String()
		assert.Contains(t, out, "WILDLIFE ALERT")
		assert.Contains(t, out, "CRITICAL")
		assert.Contains(t, out, "LEOPARD")
		assert.Contains(t, out, "1.4km")
		assert.Contains(t, out, "confidence 92%")
	})

	t.Run("disabled channel is skipped silently", func(t *testing.T) {
		var buf bytes.Buffer
		n := New(&buf, false, testLogger())

		require.NoError(t, n.Notify(testViewModel()))
		assert.Empty(t, buf.String())
	})

	t.Run("omits confidence when the detector reported none", func(t *testing.T) {
		var buf bytes.Buffer
		n := New(&buf, true, testLogger())

		vm := testViewModel()
		vm.Confidence = nil
		require.NoError(t, n.Notify(vm))
		assert.NotContains(t, buf.String(), "confidence")
	})
}
