package admin

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/poller"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// ScanInterval is how often pending markets are re-scanned while running.
	ScanInterval = 30 * time.Second
	// RemoveDelay is how long a freshly resolved market stays listed.
	RemoveDelay = 2 * time.Second

	scanConcurrency = 8
)

// PendingMarket is a market whose betting window has closed but which has
// not been resolved yet.
type PendingMarket struct {
	Market types.Market           `json:"market"`
	Status types.MarketStatusInfo `json:"status"`
}

// PendingScanner keeps the list of markets awaiting resolution.
type PendingScanner struct {
	chain       Chain
	onUpdate    func([]PendingMarket)
	interval    time.Duration
	removeDelay time.Duration
	poller      *poller.Poller

	mu        sync.Mutex
	pending   []PendingMarket
	scannedAt time.Time
}

// NewPendingScanner returns a stopped scanner. onUpdate, if set, is called
// with every fresh list.
func NewPendingScanner(chain Chain, onUpdate func([]PendingMarket)) *PendingScanner {
	return &PendingScanner{
		chain:       chain,
		onUpdate:    onUpdate,
		interval:    ScanInterval,
		removeDelay: RemoveDelay,
	}
}

// Scan reads every market and its status. Markets that fail to read are
// skipped. The result is ordered newest first.
func (s *PendingScanner) Scan(ctx context.Context) ([]PendingMarket, error) {
	count, err := s.chain.GetMarketCount(ctx)
	if err != nil {
		return nil, err
	}

	slots := make([]*PendingMarket, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for id := uint64(0); id < count; id++ {
		id := id
		g.Go(func() error {
			pm, err := s.readOne(gctx, id)
			if err != nil {
				logger.Warn("Skipping market %d during pending scan: %v", id, err)
				return nil
			}
			if pm.Status.IsBettingClosed && !pm.Market.Resolved {
				slots[id] = pm
			}
			return nil
		})
	}
	_ = g.Wait()

	pending := make([]PendingMarket, 0)
	for _, pm := range slots {
		if pm != nil {
			pending = append(pending, *pm)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Market.ID > pending[j].Market.ID
	})
	return pending, nil
}

func (s *PendingScanner) readOne(ctx context.Context, id uint64) (*PendingMarket, error) {
	var pm PendingMarket
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.chain.GetMarket(gctx, id)
		if err != nil {
			return err
		}
		pm.Market = *m
		return nil
	})
	g.Go(func() error {
		status, err := s.chain.GetMarketStatus(gctx, id)
		if err != nil {
			return err
		}
		pm.Status = *status
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &pm, nil
}

// Start scans now and every interval until Stop or ctx is cancelled.
func (s *PendingScanner) Start(ctx context.Context) {
	s.mu.Lock()
	if s.poller == nil {
		s.poller = poller.New("pending-markets", s.interval, s.poll)
	}
	p := s.poller
	s.mu.Unlock()
	p.Start(ctx)
}

func (s *PendingScanner) Stop() {
	s.mu.Lock()
	p := s.poller
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

func (s *PendingScanner) Running() bool {
	s.mu.Lock()
	p := s.poller
	s.mu.Unlock()
	return p != nil && p.Running()
}

func (s *PendingScanner) poll(ctx context.Context) {
	pending, err := s.Scan(ctx)
	if err != nil {
		logger.Warn("Pending market scan failed: %v", err)
		return
	}
	if s.poller.Deliver(ctx, func() { s.store(pending) }) && s.onUpdate != nil {
		s.onUpdate(pending)
	}
}

func (s *PendingScanner) store(pending []PendingMarket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = pending
	s.scannedAt = time.Now()
}

// Pending returns the last scanned list and when it was taken.
func (s *PendingScanner) Pending() ([]PendingMarket, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingMarket, len(s.pending))
	copy(out, s.pending)
	return out, s.scannedAt
}

// MarkResolved drops marketID from the list after a short delay and asks
// for a fresh scan.
func (s *PendingScanner) MarkResolved(marketID uint64) {
	time.AfterFunc(s.removeDelay, func() {
		s.mu.Lock()
		kept := s.pending[:0:0]
		for _, pm := range s.pending {
			if pm.Market.ID != marketID {
				kept = append(kept, pm)
			}
		}
		s.pending = kept
		p := s.poller
		s.mu.Unlock()

		if s.onUpdate != nil {
			s.onUpdate(kept)
		}
		if p != nil {
			p.Trigger()
		}
	})
}
