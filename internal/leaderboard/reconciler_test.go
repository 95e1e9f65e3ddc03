package leaderboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStatsSource is a mock implementation of the StatsSource interface
type MockStatsSource struct {
	mock.Mock
}

func (m *MockStatsSource) GetAllParticipants(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]string)
	return p, args.Error(1)
}

func (m *MockStatsSource) GetUserStats(ctx context.Context, user string) (*types.UserStats, error) {
	args := m.Called(ctx, user)
	s, _ := args.Get(0).(*types.UserStats)
	return s, args.Error(1)
}

// MockProfileStore is a mock implementation of the ProfileStore interface
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetUserByAddress(address string) (*types.UserProfile, error) {
	args := m.Called(address)
	u, _ := args.Get(0).(*types.UserProfile)
	return u, args.Error(1)
}

func (m *MockProfileStore) GetUsersByAddresses(addresses []string) (map[string]types.UserProfile, error) {
	args := m.Called(addresses)
	p, _ := args.Get(0).(map[string]types.UserProfile)
	return p, args.Error(1)
}

func (m *MockProfileStore) GetRankedUsers(limit int) ([]types.UserProfile, error) {
	args := m.Called(limit)
	u, _ := args.Get(0).([]types.UserProfile)
	return u, args.Error(1)
}

func (m *MockProfileStore) GetWinnersExcluding(exclude []string, limit int) ([]types.UserProfile, error) {
	args := m.Called(exclude, limit)
	u, _ := args.Get(0).([]types.UserProfile)
	return u, args.Error(1)
}

const (
	addrA = "0xAAAA000000000000000000000000000000000001"
	addrB = "0xBBBB000000000000000000000000000000000002"
	addrC = "0xCCCC000000000000000000000000000000000003"
	ether = "000000000000000000"
)

func TestBuildTieBreaksOnAmountWon(t *testing.T) {
	chain := new(MockStatsSource)
	store := new(MockProfileStore)

	chain.On("GetAllParticipants", mock.Anything).Return([]string{addrA, addrB}, nil)
	chain.On("GetUserStats", mock.Anything, addrA).
		Return(&types.UserStats{TotalBets: 6, WonBets: 5, TotalWinnings: "10" + ether, WinRate: 8333}, nil)
	chain.On("GetUserStats", mock.Anything, addrB).
		Return(&types.UserStats{TotalBets: 6, WonBets: 5, TotalWinnings: "20" + ether, WinRate: 8333}, nil)
	store.On("GetUsersByAddresses", mock.Anything).Return(map[string]types.UserProfile{}, nil)
	store.On("GetWinnersExcluding", mock.Anything, OffChainOnlyLimit).Return([]types.UserProfile{}, nil)

	entries, err := NewReconciler(chain, store).Build(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0xbbbb000000000000000000000000000000000002", entries[0].Address)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "20", entries[0].TotalWon)
	assert.Equal(t, "0xBBBB...0002", entries[0].Name)
	assert.Equal(t, "83%", entries[0].WinRate)
	assert.Equal(t, 2, entries[1].Rank)
	chain.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestBuildSubstitutesOffChainEntryOnReadFailure(t *testing.T) {
	chain := new(MockStatsSource)
	store := new(MockProfileStore)

	chain.On("GetAllParticipants", mock.Anything).Return([]string{addrA, addrB, addrC}, nil)
	chain.On("GetUserStats", mock.Anything, addrA).
		Return(&types.UserStats{TotalBets: 2, WonBets: 1, TotalWinnings: "1" + ether}, nil)
	chain.On("GetUserStats", mock.Anything, addrB).Return(nil, fmt.Errorf("rpc timeout"))
	chain.On("GetUserStats", mock.Anything, addrC).Return(nil, fmt.Errorf("rpc timeout"))
	store.On("GetUsersByAddresses", mock.Anything).Return(map[string]types.UserProfile{
		"0xbbbb000000000000000000000000000000000002": {WalletAddress: "0xbbbb000000000000000000000000000000000002", Username: "SEER_SAGE", Wins: 3, Losses: 1, MonWon: "7.5"},
		"0xcccc000000000000000000000000000000000003": {WalletAddress: "0xcccc000000000000000000000000000000000003", Username: "IDLE", Wins: 0, Losses: 0, MonWon: "0"},
	}, nil)
	store.On("GetWinnersExcluding", mock.Anything, OffChainOnlyLimit).Return([]types.UserProfile{}, nil)

	entries, err := NewReconciler(chain, store).Build(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "SEER_SAGE", entries[0].Name)
	assert.Equal(t, 3, entries[0].Wins)
	assert.Equal(t, "75%", entries[0].WinRate)
	assert.Equal(t, "7.5", entries[0].TotalWon)
	assert.Equal(t, 4, entries[0].TotalBets)
	assert.Equal(t, 1, entries[1].Wins)
	assert.Equal(t, "50%", entries[1].WinRate)
}

func TestBuildLooksUpProfilesOneByOneWhenBatchFails(t *testing.T) {
	chain := new(MockStatsSource)
	store := new(MockProfileStore)

	chain.On("GetAllParticipants", mock.Anything).Return([]string{addrA, addrB, addrC}, nil)
	chain.On("GetUserStats", mock.Anything, addrA).
		Return(&types.UserStats{TotalBets: 2, WonBets: 1, TotalWinnings: "1" + ether}, nil)
	chain.On("GetUserStats", mock.Anything, addrB).Return(nil, fmt.Errorf("rpc timeout"))
	chain.On("GetUserStats", mock.Anything, addrC).Return(nil, fmt.Errorf("rpc timeout"))
	store.On("GetUsersByAddresses", mock.Anything).Return(nil, fmt.Errorf("too many parameters"))
	store.On("GetUserByAddress", addrA).Return(&types.UserProfile{Username: "QUICK_ORACLE"}, nil)
	store.On("GetUserByAddress", addrB).
		Return(&types.UserProfile{WalletAddress: "0xbbbb000000000000000000000000000000000002", Username: "SEER_SAGE", Wins: 3, Losses: 1, MonWon: "7.5"}, nil)
	store.On("GetUserByAddress", addrC).Return(nil, fmt.Errorf("connection reset"))
	store.On("GetWinnersExcluding", mock.Anything, OffChainOnlyLimit).Return([]types.UserProfile{}, nil)

	entries, err := NewReconciler(chain, store).Build(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "SEER_SAGE", entries[0].Name)
	assert.Equal(t, 3, entries[0].Wins)
	assert.Equal(t, "QUICK_ORACLE", entries[1].Name)
	store.AssertNumberOfCalls(t, "GetUserByAddress", 3)
}

func TestBuildPrefersNonzeroChainFigures(t *testing.T) {
	profile := types.UserProfile{WalletAddress: "0xaaaa000000000000000000000000000000000001", Username: "ORACLE", Wins: 2, MonWon: "3.25"}

	testCases := []struct {
		name     string
		stats    types.UserStats
		wins     int
		winRate  string
		totalWon string
	}{
		{"chain wins", types.UserStats{TotalBets: 4, WonBets: 3, WinRate: 7500, TotalWinnings: "1500" + ether}, 3, "75%", "1,500"},
		{"datastore wins when chain is zero", types.UserStats{TotalBets: 4, TotalWinnings: "0"}, 2, "50%", "3.25"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := mergeEntry(addrA, &tc.stats, &profile)
			assert.Equal(t, "ORACLE", e.Name)
			assert.Equal(t, tc.wins, e.Wins)
			assert.Equal(t, tc.winRate, e.WinRate)
			assert.Equal(t, tc.totalWon, e.TotalWon)
		})
	}
}

func TestBuildFallsBackWhenParticipantsUnavailable(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(*MockStatsSource)
	}{
		{"participants error", func(c *MockStatsSource) {
			c.On("GetAllParticipants", mock.Anything).Return(nil, fmt.Errorf("no rpc"))
		}},
		{"no participants", func(c *MockStatsSource) {
			c.On("GetAllParticipants", mock.Anything).Return([]string{}, nil)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chain := new(MockStatsSource)
			store := new(MockProfileStore)
			tc.setup(chain)
			store.On("GetRankedUsers", MaxEntries).Return([]types.UserProfile{
				{WalletAddress: "0xb", Username: "B", Wins: 5, Losses: 0, MonWon: "1234.5"},
				{WalletAddress: "0xa", Username: "A", Wins: 1, Losses: 2, MonWon: "0"},
			}, nil)

			entries, err := NewReconciler(chain, store).Build(context.Background())

			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "B", entries[0].Name)
			assert.Equal(t, "1,234.5", entries[0].TotalWon)
			assert.Equal(t, "100%", entries[0].WinRate)
			assert.Equal(t, 2, entries[1].Rank)
			assert.Equal(t, "33%", entries[1].WinRate)
			store.AssertNotCalled(t, "GetWinnersExcluding", mock.Anything, mock.Anything)
		})
	}
}

func TestBuildFallsBackWhenNoOnChainEntries(t *testing.T) {
	chain := new(MockStatsSource)
	store := new(MockProfileStore)

	chain.On("GetAllParticipants", mock.Anything).Return([]string{addrA}, nil)
	chain.On("GetUserStats", mock.Anything, addrA).Return(&types.UserStats{TotalBets: 0, TotalWinnings: "0"}, nil)
	store.On("GetUsersByAddresses", mock.Anything).Return(nil, fmt.Errorf("db down"))
	store.On("GetUserByAddress", addrA).Return(nil, &errors.NotFoundError{Resource: "user", Identifier: addrA})
	store.On("GetRankedUsers", MaxEntries).Return([]types.UserProfile{}, nil)

	entries, err := NewReconciler(chain, store).Build(context.Background())

	require.NoError(t, err)
	assert.Empty(t, entries)
	store.AssertCalled(t, "GetRankedUsers", MaxEntries)
}

func TestBuildUnionsOffChainOnlyWinners(t *testing.T) {
	chain := new(MockStatsSource)
	store := new(MockProfileStore)

	chain.On("GetAllParticipants", mock.Anything).Return([]string{addrA}, nil)
	chain.On("GetUserStats", mock.Anything, addrA).
		Return(&types.UserStats{TotalBets: 2, WonBets: 2, WinRate: 10000, TotalWinnings: "1" + ether}, nil)
	store.On("GetUsersByAddresses", mock.Anything).Return(map[string]types.UserProfile{}, nil)
	store.On("GetWinnersExcluding", []string{"0xaaaa000000000000000000000000000000000001"}, OffChainOnlyLimit).
		Return([]types.UserProfile{{WalletAddress: "0xDDDD", Username: "LEGACY", Wins: 4, Losses: 4, MonWon: "9"}}, nil)

	entries, err := NewReconciler(chain, store).Build(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "LEGACY", entries[0].Name)
	assert.Equal(t, "0xdddd", entries[0].Address)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestBuildTruncatesToMaxEntries(t *testing.T) {
	chain := new(MockStatsSource)
	store := new(MockProfileStore)

	participants := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		addr := fmt.Sprintf("0x%040x", i+1)
		participants = append(participants, addr)
		chain.On("GetUserStats", mock.Anything, addr).
			Return(&types.UserStats{TotalBets: 1, WonBets: uint64(i%7 + 1), TotalWinnings: "0"}, nil)
	}
	chain.On("GetAllParticipants", mock.Anything).Return(participants, nil)
	store.On("GetUsersByAddresses", mock.Anything).Return(map[string]types.UserProfile{}, nil)
	store.On("GetWinnersExcluding", mock.Anything, OffChainOnlyLimit).Return([]types.UserProfile{}, nil)

	entries, err := NewReconciler(chain, store).Build(context.Background())

	require.NoError(t, err)
	assert.Len(t, entries, MaxEntries)
	assert.Equal(t, 7, entries[0].Wins)
	assert.Equal(t, MaxEntries, entries[MaxEntries-1].Rank)
}
