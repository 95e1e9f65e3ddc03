package balance

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/poller"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/ethereum/go-ethereum/common"
)

// SyncInterval is how often a watched wallet is re-read.
const SyncInterval = 30 * time.Second

// Reader is the wallet provider. It is the only source of truth for balances.
type Reader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Mirror receives a copy of every fresh balance.
type Mirror interface {
	UpdateBalance(address, balance string, updatedAt time.Time) error
}

type Synchronizer struct {
	reader   Reader
	mirror   Mirror
	interval time.Duration
	now      func() time.Time
	writes   sync.WaitGroup
}

func NewSynchronizer(reader Reader, mirror Mirror) *Synchronizer {
	return &Synchronizer{
		reader:   reader,
		mirror:   mirror,
		interval: SyncInterval,
		now:      time.Now,
	}
}

// Sync reads the wallet's native balance and mirrors it in the background.
// The returned balance does not depend on the mirror write succeeding.
func (s *Synchronizer) Sync(ctx context.Context, address string) (*types.Balance, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.NewValidationError("syncBalance", "Invalid wallet address")
	}

	wei, err := s.reader.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, errors.NewChainError(errors.KindTransientRead, "syncBalance", err)
	}

	result := &types.Balance{
		Balance:          wei.String(),
		BalanceUpdatedAt: s.now().UTC(),
	}

	s.writes.Add(1)
	go func(address string, balance types.Balance) {
		defer s.writes.Done()
		if err := s.mirror.UpdateBalance(address, balance.Balance, balance.BalanceUpdatedAt); err != nil {
			logger.Warn("Failed to mirror balance for %s: %v", address, err)
		}
	}(strings.ToLower(address), *result)

	return result, nil
}

// Wait blocks until all background mirror writes have finished.
func (s *Synchronizer) Wait() {
	s.writes.Wait()
}

// Watch syncs address now and every interval, handing each fresh balance to
// apply. Results from a stopped watch are dropped. Callers stop the returned
// poller or cancel ctx.
func (s *Synchronizer) Watch(ctx context.Context, address string, apply func(types.Balance)) *poller.Poller {
	var p *poller.Poller
	p = poller.New("balance:"+strings.ToLower(address), s.interval, func(ctx context.Context) {
		b, err := s.Sync(ctx, address)
		if err != nil {
			logger.Warn("Balance sync for %s failed: %v", address, err)
			return
		}
		p.Deliver(ctx, func() { apply(*b) })
	})
	p.Start(ctx)
	return p
}
