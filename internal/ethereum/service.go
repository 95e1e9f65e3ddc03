package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var contractABI = mustParseABI(TachiFactoryABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("failed to parse contract ABI: %v", err))
	}
	return parsed
}

// Contract is the single choke point for reads and writes against the market
// contract. Without a signer it is read-only.
type Contract struct {
	address common.Address
	backend EthereumClient
	bound   *bind.BoundContract
	signer  *bind.TransactOpts
	limiter *rate.Limiter
	now     func() time.Time
}

// Option configures a Contract.
type Option func(*Contract)

// WithSigner enables write operations signed by opts.
func WithSigner(opts *bind.TransactOpts) Option {
	return func(c *Contract) { c.signer = opts }
}

// WithReadLimit throttles contract reads to rps requests per second.
func WithReadLimit(rps float64, burst int) Option {
	return func(c *Contract) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewContract binds the market contract at address on backend.
func NewContract(address common.Address, backend EthereumClient, opts ...Option) *Contract {
	c := &Contract{
		address: address,
		backend: backend,
		bound:   bind.NewBoundContract(address, contractABI, backend, backend, backend),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Contract) Address() common.Address { return c.address }

func (c *Contract) HasSigner() bool { return c.signer != nil }

// SignerAddress returns the signing address, if a signer is configured.
func (c *Contract) SignerAddress() (common.Address, bool) {
	if c.signer == nil {
		return common.Address{}, false
	}
	return c.signer.From, true
}

// call performs a throttled eth_call and returns the unpacked outputs.
func (c *Contract) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.NewChainError(errors.KindTransientRead, method, err)
		}
	}
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, classifyRead(method, err)
	}
	return out, nil
}

func (c *Contract) GetMarket(ctx context.Context, marketID uint64) (*types.Market, error) {
	out, err := c.call(ctx, "getMarket", new(big.Int).SetUint64(marketID))
	if err != nil {
		return nil, err
	}
	return &types.Market{
		ID:               marketID,
		Question:         *abi.ConvertType(out[0], new(string)).(*string),
		CloseTime:        toBig(out[1]).Int64(),
		BetAmount:        toBig(out[2]).String(),
		YesPool:          toBig(out[3]).String(),
		NoPool:           toBig(out[4]).String(),
		IsClosed:         *abi.ConvertType(out[5], new(bool)).(*bool),
		Resolved:         *abi.ConvertType(out[6], new(bool)).(*bool),
		Outcome:          *abi.ConvertType(out[7], new(bool)).(*bool),
		ParticipantCount: toBig(out[8]).Uint64(),
	}, nil
}

// GetMarketSnapshot reads the market and the chain clock together.
func (c *Contract) GetMarketSnapshot(ctx context.Context, marketID uint64) (*market.Snapshot, error) {
	var (
		m   *types.Market
		now int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		m, err = c.GetMarket(gctx, marketID)
		return err
	})
	g.Go(func() error {
		var err error
		now, err = c.GetCurrentTimestamp(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap := market.NewSnapshot(*m, now, c.now())
	return &snap, nil
}

func (c *Contract) GetUserBet(ctx context.Context, marketID uint64, user string) (*types.Bet, error) {
	addr, err := parseAddress("getUserBet", user)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, "getUserBet", new(big.Int).SetUint64(marketID), addr)
	if err != nil {
		return nil, err
	}
	return &types.Bet{
		HasBet:     *abi.ConvertType(out[0], new(bool)).(*bool),
		Prediction: *abi.ConvertType(out[1], new(bool)).(*bool),
		Amount:     toBig(out[2]).String(),
		Claimed:    *abi.ConvertType(out[3], new(bool)).(*bool),
		Won:        *abi.ConvertType(out[4], new(bool)).(*bool),
	}, nil
}

func (c *Contract) GetUserStats(ctx context.Context, user string) (*types.UserStats, error) {
	addr, err := parseAddress("getUserStats", user)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, "getUserStats", addr)
	if err != nil {
		return nil, err
	}
	return &types.UserStats{
		TotalBets:      toBig(out[0]).Uint64(),
		WonBets:        toBig(out[1]).Uint64(),
		LostBets:       toBig(out[2]).Uint64(),
		TotalWinnings:  toBig(out[3]).String(),
		NetProfit:      toBig(out[4]).String(),
		TotalAmountBet: toBig(out[5]).String(),
		WinRate:        toBig(out[6]).Uint64(),
	}, nil
}

func (c *Contract) GetMarketStatus(ctx context.Context, marketID uint64) (*types.MarketStatusInfo, error) {
	out, err := c.call(ctx, "getMarketStatus", new(big.Int).SetUint64(marketID))
	if err != nil {
		return nil, err
	}
	return &types.MarketStatusInfo{
		Question:         *abi.ConvertType(out[0], new(string)).(*string),
		SecondsRemaining: toBig(out[1]).Int64(),
		IsBettingOpen:    *abi.ConvertType(out[2], new(bool)).(*bool),
		IsBettingClosed:  *abi.ConvertType(out[3], new(bool)).(*bool),
		IsResolved:       *abi.ConvertType(out[4], new(bool)).(*bool),
		CurrentTime:      toBig(out[5]).Int64(),
		CloseTime:        toBig(out[6]).Int64(),
	}, nil
}

func (c *Contract) GetMarketCount(ctx context.Context) (uint64, error) {
	v, err := c.callUint(ctx, "getMarketCount")
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (c *Contract) GetAllParticipants(ctx context.Context) ([]string, error) {
	out, err := c.call(ctx, "getAllParticipants")
	if err != nil {
		return nil, err
	}
	addrs := *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address)
	participants := make([]string, len(addrs))
	for i, a := range addrs {
		participants[i] = a.Hex()
	}
	return participants, nil
}

// GetCurrentTimestamp returns the chain clock, the only clock betting
// windows are judged against.
func (c *Contract) GetCurrentTimestamp(ctx context.Context) (int64, error) {
	v, err := c.callUint(ctx, "getCurrentTimestamp")
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

func (c *Contract) GetContractBalance(ctx context.Context) (string, error) {
	v, err := c.callUint(ctx, "getContractBalance")
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (c *Contract) GetOrganizer(ctx context.Context) (string, error) {
	out, err := c.call(ctx, "organizer")
	if err != nil {
		return "", err
	}
	return (*abi.ConvertType(out[0], new(common.Address)).(*common.Address)).Hex(), nil
}

func (c *Contract) GetMinBetAmount(ctx context.Context) (string, error) {
	v, err := c.callUint(ctx, "MIN_BET_AMOUNT")
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (c *Contract) GetMaxBetAmount(ctx context.Context) (string, error) {
	v, err := c.callUint(ctx, "MAX_BET_AMOUNT")
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// GetContractInfo reads the organizer, balance, bet bounds and market count
// concurrently. Bet bounds fall back to the compiled-in defaults.
func (c *Contract) GetContractInfo(ctx context.Context) (*types.ContractInfo, error) {
	info := &types.ContractInfo{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info.Organizer, err = c.GetOrganizer(gctx)
		return err
	})
	g.Go(func() (err error) {
		info.ContractBalance, err = c.GetContractBalance(gctx)
		return err
	})
	g.Go(func() error {
		info.MinBetAmount = c.boundOrDefault(gctx, "MIN_BET_AMOUNT", market.DefaultMinBet)
		return nil
	})
	g.Go(func() error {
		info.MaxBetAmount = c.boundOrDefault(gctx, "MAX_BET_AMOUNT", market.DefaultMaxBet)
		return nil
	})
	g.Go(func() (err error) {
		info.MarketCount, err = c.GetMarketCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Contract) boundOrDefault(ctx context.Context, method string, def *big.Int) string {
	v, err := c.callUint(ctx, method)
	if err != nil || v.Sign() <= 0 {
		logger.Warn("Falling back to default %s: %v", method, err)
		return def.String()
	}
	return v.String()
}

func (c *Contract) callUint(ctx context.Context, method string) (*big.Int, error) {
	out, err := c.call(ctx, method)
	if err != nil {
		return nil, err
	}
	return toBig(out[0]), nil
}

func toBig(v interface{}) *big.Int {
	b := *abi.ConvertType(v, new(*big.Int)).(**big.Int)
	if b == nil {
		return new(big.Int)
	}
	return b
}

func parseAddress(op, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.NewValidationError(op, fmt.Sprintf("Invalid address: %s", s))
	}
	return common.HexToAddress(s), nil
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
