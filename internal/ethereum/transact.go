package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"
)

func (c *Contract) requireSigner(op string) error {
	if c.signer == nil {
		return &errors.ChainError{
			Kind:      errors.KindUnauthorized,
			Operation: op,
			Message:   fmt.Sprintf("Signer required for %s", op),
		}
	}
	return nil
}

// transact submits method and blocks until it is mined. Only ctx bounds the
// wait. A mined receipt with a failed status is reported as a revert.
func (c *Contract) transact(ctx context.Context, value *big.Int, gasLimit uint64, method string, params ...interface{}) (*ethtypes.Receipt, error) {
	opts := *c.signer
	opts.Context = ctx
	opts.Value = value
	opts.GasLimit = gasLimit

	tx, err := c.bound.Transact(&opts, method, params...)
	if err != nil {
		return nil, Classify(method, err)
	}
	logger.Info("Submitted %s transaction %s", method, tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, Classify(method, err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, Classify(method, fmt.Errorf("transaction %s: execution reverted", tx.Hash().Hex()))
	}
	logger.Info("Transaction %s mined in block %v", tx.Hash().Hex(), receipt.BlockNumber)
	return receipt, nil
}

// CreateMarket opens a new market. Inputs are checked locally before any
// transaction is built.
func (c *Contract) CreateMarket(ctx context.Context, question string, durationSeconds int64, betAmountEther string) (*types.CreateMarketResult, error) {
	const op = "createMarket"
	if err := c.requireSigner(op); err != nil {
		return nil, err
	}
	if strings.TrimSpace(question) == "" {
		return nil, errors.NewValidationError(op, "Question is required")
	}
	if durationSeconds <= 0 || durationSeconds > market.MaxDurationSeconds {
		return nil, errors.NewValidationError(op,
			fmt.Sprintf("Duration must be between 1 and %d seconds", market.MaxDurationSeconds))
	}
	betWei, err := market.ParseEther(betAmountEther)
	if err != nil {
		return nil, errors.NewValidationError(op, "Invalid bet amount")
	}
	if err := market.ValidateBetAmount(betWei, market.DefaultMinBet, market.DefaultMaxBet); err != nil {
		return nil, err
	}

	receipt, err := c.transact(ctx, nil, 0, op, question, big.NewInt(durationSeconds), betWei)
	if err != nil {
		return nil, err
	}

	id, ok := c.marketIDFromReceipt(receipt)
	if !ok {
		// No MarketCreated log; assume the newest market is ours.
		count, err := c.GetMarketCount(ctx)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, errors.NewChainError(errors.KindUnknown, op, fmt.Errorf("market id not found in receipt %s", receipt.TxHash.Hex()))
		}
		logger.Warn("MarketCreated event missing from %s, using market count %d", receipt.TxHash.Hex(), count)
		id = count - 1
	}

	return &types.CreateMarketResult{TxHash: receipt.TxHash.Hex(), MarketID: id}, nil
}

// PlaceBet re-reads the market, the chain clock and the caller's bet, and
// only submits when the bet could succeed. It pays exactly the market's
// current bet amount.
func (c *Contract) PlaceBet(ctx context.Context, marketID uint64, prediction bool) (string, error) {
	const op = "placeBet"
	if err := c.requireSigner(op); err != nil {
		return "", err
	}

	var (
		m   *types.Market
		now int64
		bet *types.Bet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m, err = c.GetMarket(gctx, marketID)
		return err
	})
	g.Go(func() (err error) {
		now, err = c.GetCurrentTimestamp(gctx)
		return err
	})
	g.Go(func() (err error) {
		bet, err = c.GetUserBet(gctx, marketID, c.signer.From.Hex())
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	switch {
	case m.Resolved:
		return "", &errors.ChainError{Kind: errors.KindMarketClosed, Operation: op, Reason: "market already resolved"}
	case m.IsClosed:
		return "", &errors.ChainError{Kind: errors.KindMarketClosed, Operation: op, Reason: "betting closed"}
	case now >= m.CloseTime:
		return "", &errors.ChainError{Kind: errors.KindMarketClosed, Operation: op, Reason: "betting time has ended"}
	case bet.HasBet:
		return "", &errors.ChainError{Kind: errors.KindAlreadyBet, Operation: op, Reason: "already bet"}
	}

	betAmount, ok := new(big.Int).SetString(m.BetAmount, 10)
	if !ok {
		return "", errors.NewChainError(errors.KindUnknown, op, fmt.Errorf("invalid bet amount %q", m.BetAmount))
	}

	logger.Info("Placing bet on market %d: prediction=%t amount=%s %s signer=%s",
		marketID, prediction, market.FormatEther(betAmount), market.Currency, c.signer.From.Hex())

	receipt, err := c.transact(ctx, betAmount, market.PlaceBetGasLimit, op, new(big.Int).SetUint64(marketID), prediction)
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

func (c *Contract) CloseBetting(ctx context.Context, marketID uint64) (string, error) {
	const op = "closeBetting"
	if err := c.requireSigner(op); err != nil {
		return "", err
	}
	receipt, err := c.transact(ctx, nil, 0, op, new(big.Int).SetUint64(marketID))
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

// ResolveMarket records the outcome; the contract distributes winnings in the same transaction.
func (c *Contract) ResolveMarket(ctx context.Context, marketID uint64, outcome bool) (string, error) {
	const op = "resolveMarket"
	if err := c.requireSigner(op); err != nil {
		return "", err
	}
	receipt, err := c.transact(ctx, nil, 0, op, new(big.Int).SetUint64(marketID), outcome)
	if err != nil {
		return "", err
	}
	for _, vLog := range receipt.Logs {
		if ev, ok := ParseMarketResolved(*vLog); ok {
			logger.Info("Market %d resolved with outcome %t in %s", ev.MarketID, ev.Outcome, ev.TxHash)
		}
	}
	return receipt.TxHash.Hex(), nil
}

// AddHouseFunds seeds both pools of a market with amountEther, split evenly by the contract.
func (c *Contract) AddHouseFunds(ctx context.Context, marketID uint64, amountEther string) (string, error) {
	const op = "addHouseFunds"
	if err := c.requireSigner(op); err != nil {
		return "", err
	}
	amount, err := market.ParseEther(amountEther)
	if err != nil || amount.Sign() <= 0 {
		return "", errors.NewValidationError(op, "Amount must be a positive number")
	}
	receipt, err := c.transact(ctx, amount, 0, op, new(big.Int).SetUint64(marketID))
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

func (c *Contract) SetOrganizer(ctx context.Context, newOrganizer string) (string, error) {
	const op = "setOrganizer"
	if err := c.requireSigner(op); err != nil {
		return "", err
	}
	if !common.IsHexAddress(newOrganizer) {
		return "", errors.NewValidationError(op, fmt.Sprintf("Invalid address: %s", newOrganizer))
	}
	receipt, err := c.transact(ctx, nil, 0, op, common.HexToAddress(newOrganizer))
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}
