package sync

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/client"
)

func testAlerts() []alert.RawAlert {
	detected := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []alert.RawAlert{
		{ID: 1, Species: "leopard", DistanceKM: 1.5, DetectedAt: detected},
		{ID: 2, Species: "tiger", DistanceKM: 6.0, DetectedAt: detected},
		{ID: 3, Species: "leopard", DistanceKM: 9.9, DetectedAt: detected},
	}
}

func TestStore_Refresh(t *testing.T) {
	t.Run("success replaces the set and recomputes counts over the full set", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := NewMockFetcher(ctrl)
		fetcher.EXPECT().FetchAlerts(gomock.Any()).Return(testAlerts(), nil)

		store := NewStore(fetcher, testLogger())
		store.StartSession()

		err := store.Refresh(context.Background())
		require.NoError(t, err)

		assert.Equal(t, testAlerts(), store.Snapshot())
		assert.Equal(t, map[string]int{"leopard": 2, "tiger": 1}, store.SpeciesCounts())
	})

	t.Run("network failure retains the previous set unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := NewMockFetcher(ctrl)
		fetcher.EXPECT().FetchAlerts(gomock.Any()).Return(testAlerts(), nil)
		fetcher.EXPECT().FetchAlerts(gomock.Any()).Return(nil, errors.New("connection refused"))

		store := NewStore(fetcher, testLogger())
		store.StartSession()
		require.NoError(t, store.Refresh(context.Background()))
		before := store.Snapshot()

		err := store.Refresh(context.Background())
		var syncErr *SyncError
		require.ErrorAs(t, err, &syncErr)
		assert.Equal(t, KindNetwork, syncErr.Kind)
		assert.Equal(t, before, store.Snapshot(), "failed refresh must not touch the stored set")
		assert.True(t, store.Authenticated())
	})

	t.Run("malformed response is classified separately but retains the set", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := NewMockFetcher(ctrl)
		fetcher.EXPECT().FetchAlerts(gomock.Any()).Return(testAlerts(), nil)
		fetcher.EXPECT().FetchAlerts(gomock.Any()).Return(nil, errors.Wrap(client.ErrMalformedResponse, "decoding /api/alerts response"))

		store := NewStore(fetcher, testLogger())
		store.StartSession()
		require.NoError(t, store.Refresh(context.Background()))

		err := store.Refresh(context.Background())
		var syncErr *SyncError
		require.ErrorAs(t, err, &syncErr)
		assert.Equal(t, KindMalformed, syncErr.Kind)
		assert.Equal(t, testAlerts(), store.Snapshot())
	})

	t.Run("authoritative de-auth clears the set and fires the hook synchronously", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := NewMockFetcher(ctrl)
		fetcher.EXPECT().FetchAlerts(gomock.Any()).Return(testAlerts(), nil)
		fetcher.EXPECT().FetchAlerts(gomock.Any()).Return(nil, client.ErrUnauthenticated)

		store := NewStore(fetcher, testLogger())
		hookFired := false
		store.SetSessionExpiredHook(func() {
			hookFired = true
			assert.Empty(t, store.Snapshot(), "set must already be cleared when the hook fires")
		})
		store.StartSession()
		require.NoError(t, store.Refresh(context.Background()))

		err := store.Refresh(context.Background())
		var syncErr *SyncError
		require.ErrorAs(t, err, &syncErr)
		assert.Equal(t, KindSessionExpired, syncErr.Kind)
		assert.True(t, hookFired)
		assert.False(t, store.Authenticated())
		assert.Empty(t, store.Snapshot())
		assert.Empty(t, store.SpeciesCounts())
	})

	t.Run("result resolving after session end cannot repopulate the set", func(t *testing.T) {
		release := make(chan struct{})
		fetcher := &funcFetcher{fn: func(ctx context.Context) ([]alert.RawAlert, error) {
			<-release
			return testAlerts(), nil
		}}

		store := NewStore(fetcher, testLogger())
		store.StartSession()

		done := make(chan error, 1)
		go func() { done <- store.Refresh(context.Background()) }()

		// Session ends while the fetch is still in flight.
		store.EndSession()
		close(release)

		require.NoError(t, <-done)
		assert.Empty(t, store.Snapshot(), "stale result must not repopulate a cleared set")
		assert.False(t, store.Authenticated())
	})

	t.Run("result resolving after context cancellation is discarded", func(t *testing.T) {
		fetcher := &funcFetcher{fn: func(ctx context.Context) ([]alert.RawAlert, error) {
			return testAlerts(), nil
		}}

		store := NewStore(fetcher, testLogger())
		store.StartSession()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, store.Refresh(ctx))
		assert.Empty(t, store.Snapshot())
	})

	t.Run("update handler receives the refreshed set", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := NewMockFetcher(ctrl)
		fetcher.EXPECT().FetchAlerts(gomock.Any()).Return(testAlerts(), nil)

		store := NewStore(fetcher, testLogger())
		var received []alert.RawAlert
		store.SetUpdateHandler(updateFunc(func(alerts []alert.RawAlert) { received = alerts }))
		store.StartSession()

		require.NoError(t, store.Refresh(context.Background()))
		assert.Equal(t, testAlerts(), received)
	})
}

// updateFunc adapts a function to the UpdateHandler interface.
type updateFunc func(alerts []alert.RawAlert)

func (f updateFunc) HandleUpdate(alerts []alert.RawAlert) { f(alerts) }
