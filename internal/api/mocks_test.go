package api

import (
	"context"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/admin"
	"github.com/SIMPLYBOYS/tachi/internal/db"
	"github.com/SIMPLYBOYS/tachi/internal/ethereum"
	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

// MockDBService is a mock implementation of db.DBService
type MockDBService struct {
	mock.Mock
}

func (m *MockDBService) GetUserByAddress(address string) (*types.UserProfile, error) {
	args := m.Called(address)
	u, _ := args.Get(0).(*types.UserProfile)
	return u, args.Error(1)
}

func (m *MockDBService) GetUsersByAddresses(addresses []string) (map[string]types.UserProfile, error) {
	args := m.Called(addresses)
	u, _ := args.Get(0).(map[string]types.UserProfile)
	return u, args.Error(1)
}

func (m *MockDBService) CreateUser(address, username string) (*types.UserProfile, error) {
	args := m.Called(address, username)
	u, _ := args.Get(0).(*types.UserProfile)
	return u, args.Error(1)
}

func (m *MockDBService) EnsureUser(address string) (*types.UserProfile, bool, error) {
	args := m.Called(address)
	u, _ := args.Get(0).(*types.UserProfile)
	return u, args.Bool(1), args.Error(2)
}

func (m *MockDBService) UpdateUser(address string, update db.UserUpdate) (*types.UserProfile, error) {
	args := m.Called(address, update)
	u, _ := args.Get(0).(*types.UserProfile)
	return u, args.Error(1)
}

func (m *MockDBService) UpdateBalance(address, balance string, updatedAt time.Time) error {
	args := m.Called(address, balance, updatedAt)
	return args.Error(0)
}

func (m *MockDBService) UsernameExists(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBService) GetRankedUsers(limit int) ([]types.UserProfile, error) {
	args := m.Called(limit)
	u, _ := args.Get(0).([]types.UserProfile)
	return u, args.Error(1)
}

func (m *MockDBService) GetWinnersExcluding(exclude []string, limit int) ([]types.UserProfile, error) {
	args := m.Called(exclude, limit)
	u, _ := args.Get(0).([]types.UserProfile)
	return u, args.Error(1)
}

func (m *MockDBService) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockContract is a mock implementation of ethereum.ContractService
type MockContract struct {
	mock.Mock
}

func (m *MockContract) HasSigner() bool {
	return m.Called().Bool(0)
}

func (m *MockContract) SignerAddress() (common.Address, bool) {
	args := m.Called()
	return args.Get(0).(common.Address), args.Bool(1)
}

func (m *MockContract) CreateMarket(ctx context.Context, question string, durationSeconds int64, betAmountEther string) (*types.CreateMarketResult, error) {
	args := m.Called(ctx, question, durationSeconds, betAmountEther)
	r, _ := args.Get(0).(*types.CreateMarketResult)
	return r, args.Error(1)
}

func (m *MockContract) PlaceBet(ctx context.Context, marketID uint64, prediction bool) (string, error) {
	args := m.Called(ctx, marketID, prediction)
	return args.String(0), args.Error(1)
}

func (m *MockContract) CloseBetting(ctx context.Context, marketID uint64) (string, error) {
	args := m.Called(ctx, marketID)
	return args.String(0), args.Error(1)
}

func (m *MockContract) ResolveMarket(ctx context.Context, marketID uint64, outcome bool) (string, error) {
	args := m.Called(ctx, marketID, outcome)
	return args.String(0), args.Error(1)
}

func (m *MockContract) AddHouseFunds(ctx context.Context, marketID uint64, amountEther string) (string, error) {
	args := m.Called(ctx, marketID, amountEther)
	return args.String(0), args.Error(1)
}

func (m *MockContract) SetOrganizer(ctx context.Context, newOrganizer string) (string, error) {
	args := m.Called(ctx, newOrganizer)
	return args.String(0), args.Error(1)
}

func (m *MockContract) GetMarket(ctx context.Context, marketID uint64) (*types.Market, error) {
	args := m.Called(ctx, marketID)
	r, _ := args.Get(0).(*types.Market)
	return r, args.Error(1)
}

func (m *MockContract) GetMarketSnapshot(ctx context.Context, marketID uint64) (*market.Snapshot, error) {
	args := m.Called(ctx, marketID)
	r, _ := args.Get(0).(*market.Snapshot)
	return r, args.Error(1)
}

func (m *MockContract) GetUserBet(ctx context.Context, marketID uint64, user string) (*types.Bet, error) {
	args := m.Called(ctx, marketID, user)
	r, _ := args.Get(0).(*types.Bet)
	return r, args.Error(1)
}

func (m *MockContract) GetUserStats(ctx context.Context, user string) (*types.UserStats, error) {
	args := m.Called(ctx, user)
	r, _ := args.Get(0).(*types.UserStats)
	return r, args.Error(1)
}

func (m *MockContract) GetMarketStatus(ctx context.Context, marketID uint64) (*types.MarketStatusInfo, error) {
	args := m.Called(ctx, marketID)
	r, _ := args.Get(0).(*types.MarketStatusInfo)
	return r, args.Error(1)
}

func (m *MockContract) GetMarketCount(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockContract) GetAllParticipants(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]string)
	return r, args.Error(1)
}

func (m *MockContract) GetCurrentTimestamp(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContract) GetContractBalance(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockContract) GetOrganizer(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockContract) GetMinBetAmount(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockContract) GetMaxBetAmount(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockContract) GetContractInfo(ctx context.Context) (*types.ContractInfo, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*types.ContractInfo)
	return r, args.Error(1)
}

var _ ethereum.ContractService = (*MockContract)(nil)

// fakeContracts serves a fixed read-only and optional signer façade.
type fakeContracts struct {
	readOnly ethereum.ContractService
	signer   ethereum.ContractService
}

func (f *fakeContracts) ReadOnly() ethereum.ContractService { return f.readOnly }

func (f *fakeContracts) Signer() (ethereum.ContractService, bool) {
	return f.signer, f.signer != nil
}

// MockLeaderboard is a mock implementation of LeaderboardBuilder
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) Build(ctx context.Context) ([]types.LeaderboardEntry, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]types.LeaderboardEntry)
	return r, args.Error(1)
}

// MockBalances is a mock implementation of BalanceSyncer
type MockBalances struct {
	mock.Mock
}

func (m *MockBalances) Sync(ctx context.Context, address string) (*types.Balance, error) {
	args := m.Called(ctx, address)
	r, _ := args.Get(0).(*types.Balance)
	return r, args.Error(1)
}

// MockPending is a mock implementation of PendingSource
type MockPending struct {
	mock.Mock
}

func (m *MockPending) Running() bool {
	return m.Called().Bool(0)
}

func (m *MockPending) Pending() ([]admin.PendingMarket, time.Time) {
	args := m.Called()
	return args.Get(0).([]admin.PendingMarket), args.Get(1).(time.Time)
}

func (m *MockPending) Scan(ctx context.Context) ([]admin.PendingMarket, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]admin.PendingMarket)
	return r, args.Error(1)
}

func (m *MockPending) MarkResolved(marketID uint64) {
	m.Called(marketID)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BroadcastMarketResolved(marketID uint64, outcome bool, txHash string) error {
	args := m.Called(marketID, outcome, txHash)
	return args.Error(0)
}
