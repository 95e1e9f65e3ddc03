package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	const now = int64(1_700_000_000)

	testCases := []struct {
		name     string
		market   types.Market
		expected Status
	}{
		{"open before close time", types.Market{CloseTime: now + 60}, StatusOpen},
		{"closed at close time", types.Market{CloseTime: now}, StatusClosed},
		{"closed after close time", types.Market{CloseTime: now - 1}, StatusClosed},
		{"explicitly closed", types.Market{CloseTime: now + 600, IsClosed: true}, StatusClosed},
		{"resolved overrides open window", types.Market{CloseTime: now + 600, Resolved: true}, StatusResolved},
		{"resolved overrides closed flag", types.Market{CloseTime: now - 600, IsClosed: true, Resolved: true}, StatusResolved},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Resolve(tc.market, now))
			assert.Equal(t, tc.expected == StatusOpen, IsBettingOpen(tc.market, now))
		})
	}
}

func TestDescribe(t *testing.T) {
	open := Describe(types.Market{CloseTime: 1100}, 1000)
	assert.Equal(t, StatusOpen, open.Status)
	assert.True(t, open.IsBettingOpen)
	assert.False(t, open.IsBettingClosed)
	assert.Equal(t, int64(100), open.SecondsRemaining)

	closed := Describe(types.Market{CloseTime: 1100, IsClosed: true}, 1000)
	assert.True(t, closed.IsBettingClosed)
	assert.False(t, closed.IsResolved)
	assert.Zero(t, closed.SecondsRemaining)

	resolved := Describe(types.Market{CloseTime: 900, Resolved: true}, 1000)
	assert.True(t, resolved.IsResolved)
	assert.True(t, resolved.IsBettingClosed)
	assert.Equal(t, int64(1000), resolved.CurrentTime)
}

func TestStatusMarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Status{"status": StatusResolved})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"status":"resolved"}`, string(data))
}

func TestSnapshotTrustworthy(t *testing.T) {
	fetched := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	open := NewSnapshot(types.Market{CloseTime: 2000}, 1000, fetched)
	assert.True(t, open.Trustworthy(fetched.Add(500*time.Millisecond)))
	assert.False(t, open.Trustworthy(fetched.Add(2*time.Second)))

	closed := NewSnapshot(types.Market{CloseTime: 500}, 1000, fetched)
	assert.True(t, closed.Trustworthy(fetched.Add(5*time.Second)))
	assert.False(t, closed.Trustworthy(fetched.Add(11*time.Second)))
}

func TestRefreshInterval(t *testing.T) {
	assert.Equal(t, OpenRefreshInterval, RefreshInterval(StatusOpen))
	assert.Equal(t, SettledRefreshInterval, RefreshInterval(StatusClosed))
	assert.Equal(t, SettledRefreshInterval, RefreshInterval(StatusResolved))
}
