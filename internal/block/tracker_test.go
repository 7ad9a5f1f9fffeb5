package block_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-scanner/internal/block"
	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/logger"
	"github.com/feral-file/ff-token-scanner/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testTrackerMocks contains all the mocks needed for testing the tracker
type testTrackerMocks struct {
	ctrl    *gomock.Controller
	pool    *mocks.MockPool
	conn    *mocks.MockConnection
	tracker block.Tracker
}

// setupTest creates all the mocks and the tracker for testing
func setupTest(t *testing.T) *testTrackerMocks {
	ctrl := gomock.NewController(t)

	mockPool := mocks.NewMockPool(ctrl)
	mockConn := mocks.NewMockConnection(ctrl)

	return &testTrackerMocks{
		ctrl:    ctrl,
		pool:    mockPool,
		conn:    mockConn,
		tracker: block.NewTracker(mockPool, block.Config{LagThreshold: domain.DEFAULT_INDEXING_LAG_THRESHOLD}),
	}
}

// tearDownTest cleans up the test mocks
func tearDownTest(tm *testTrackerMocks) {
	tm.ctrl.Finish()
}

func TestTracker_GetIndexingProgress(t *testing.T) {
	tests := []struct {
		name        string
		current     uint64
		indexed     uint64
		wantPercent float64
		wantBehind  bool
	}{
		{name: "far behind", current: 1000, indexed: 850, wantPercent: 85, wantBehind: true},
		{name: "exactly at threshold", current: 1000, indexed: 900, wantPercent: 90, wantBehind: false},
		{name: "one past threshold", current: 1000, indexed: 899, wantPercent: 89.9, wantBehind: true},
		{name: "caught up", current: 1000, indexed: 1000, wantPercent: 100, wantBehind: false},
		{name: "ahead of head is unclamped", current: 1000, indexed: 1010, wantPercent: 101, wantBehind: false},
		{name: "nothing indexed", current: 19_000_000, indexed: 0, wantPercent: 0, wantBehind: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTest(t)
			defer tearDownTest(tm)

			ctx := context.Background()
			tm.pool.EXPECT().Connect(ctx, domain.ChainEthereumMainnet).Return(tm.conn, nil)
			tm.conn.EXPECT().LatestHeight(ctx).Return(tt.current, nil)
			tm.conn.EXPECT().Close()

			status, err := tm.tracker.GetIndexingProgress(ctx, domain.ChainEthereumMainnet, tt.indexed)
			require.NoError(t, err)

			assert.Equal(t, domain.ChainEthereumMainnet, status.Chain)
			assert.Equal(t, tt.current, status.CurrentHeight)
			assert.Equal(t, tt.indexed, status.IndexedHeight)
			assert.Equal(t, float64(tt.indexed)/float64(tt.current)*100, status.ProgressPercent)
			assert.InDelta(t, tt.wantPercent, status.ProgressPercent, 1e-9)
			assert.Equal(t, tt.wantBehind, status.IsBehind)
		})
	}
}

func TestTracker_GetIndexingProgress_ZeroHeight(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	tm.pool.EXPECT().Connect(ctx, domain.ChainTezosMainnet).Return(tm.conn, nil)
	tm.conn.EXPECT().LatestHeight(ctx).Return(uint64(0), nil)
	tm.conn.EXPECT().Close()

	status, err := tm.tracker.GetIndexingProgress(ctx, domain.ChainTezosMainnet, 0)
	assert.Nil(t, status)

	var unavailable *domain.ChainUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.ChainTezosMainnet, unavailable.Chain)
}

func TestTracker_GetIndexingProgress_HeightError(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	cause := errors.New("header not found")
	tm.pool.EXPECT().Connect(ctx, domain.ChainEthereumMainnet).Return(tm.conn, nil)
	tm.conn.EXPECT().LatestHeight(ctx).Return(uint64(0), cause)
	tm.conn.EXPECT().Close()

	_, err := tm.tracker.GetIndexingProgress(ctx, domain.ChainEthereumMainnet, 10)

	var unavailable *domain.ChainUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, err, cause)
}

func TestTracker_GetIndexingProgress_ConnectError(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	exhausted := &domain.AllEndpointsExhaustedError{
		Chain:         domain.ChainEthereumMainnet,
		AttemptedURLs: []string{"https://a.example", "https://b.example"},
		LastErr:       errors.New("dial tcp: refused"),
	}
	tm.pool.EXPECT().Connect(ctx, domain.ChainEthereumMainnet).Return(nil, exhausted)

	_, err := tm.tracker.GetIndexingProgress(ctx, domain.ChainEthereumMainnet, 10)

	var unavailable *domain.ChainUnavailableError
	require.ErrorAs(t, err, &unavailable)

	var gotExhausted *domain.AllEndpointsExhaustedError
	require.ErrorAs(t, err, &gotExhausted)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, gotExhausted.AttemptedURLs)
}
