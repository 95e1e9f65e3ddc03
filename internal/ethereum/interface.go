package ethereum

import (
	"context"

	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/ethereum/go-ethereum/common"
)

// ContractService is the full surface of the market contract façade.
type ContractService interface {
	HasSigner() bool
	SignerAddress() (common.Address, bool)

	CreateMarket(ctx context.Context, question string, durationSeconds int64, betAmountEther string) (*types.CreateMarketResult, error)
	PlaceBet(ctx context.Context, marketID uint64, prediction bool) (string, error)
	CloseBetting(ctx context.Context, marketID uint64) (string, error)
	ResolveMarket(ctx context.Context, marketID uint64, outcome bool) (string, error)
	AddHouseFunds(ctx context.Context, marketID uint64, amountEther string) (string, error)
	SetOrganizer(ctx context.Context, newOrganizer string) (string, error)

	GetMarket(ctx context.Context, marketID uint64) (*types.Market, error)
	GetMarketSnapshot(ctx context.Context, marketID uint64) (*market.Snapshot, error)
	GetUserBet(ctx context.Context, marketID uint64, user string) (*types.Bet, error)
	GetUserStats(ctx context.Context, user string) (*types.UserStats, error)
	GetMarketStatus(ctx context.Context, marketID uint64) (*types.MarketStatusInfo, error)
	GetMarketCount(ctx context.Context) (uint64, error)
	GetAllParticipants(ctx context.Context) ([]string, error)
	GetCurrentTimestamp(ctx context.Context) (int64, error)
	GetContractBalance(ctx context.Context) (string, error)
	GetOrganizer(ctx context.Context) (string, error)
	GetMinBetAmount(ctx context.Context) (string, error)
	GetMaxBetAmount(ctx context.Context) (string, error)
	GetContractInfo(ctx context.Context) (*types.ContractInfo, error)
}

var _ ContractService = (*Contract)(nil)
