package admin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Chain is the part of the contract façade the resolution workflow needs.
type Chain interface {
	GetMarketCount(ctx context.Context) (uint64, error)
	GetMarket(ctx context.Context, marketID uint64) (*types.Market, error)
	GetMarketStatus(ctx context.Context, marketID uint64) (*types.MarketStatusInfo, error)
	ResolveMarket(ctx context.Context, marketID uint64, outcome bool) (string, error)
}

type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateResolving
	StateResolved
	StateFailed
)

var stateNames = map[State]string{
	StateUnloaded:  "unloaded",
	StateLoading:   "loading",
	StateLoaded:    "loaded",
	StateResolving: "resolving",
	StateResolved:  "resolved",
	StateFailed:    "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View is a point-in-time copy of a workflow.
type View struct {
	State    State                   `json:"state"`
	MarketID uint64                  `json:"marketId"`
	Market   *types.Market           `json:"market,omitempty"`
	Status   *types.MarketStatusInfo `json:"status,omitempty"`
	Outcome  *bool                   `json:"outcome,omitempty"`
	TxHash   string                  `json:"txHash,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Workflow drives the resolution of a single market:
// Unloaded -> Loading -> Loaded -> Resolving -> Resolved, with Failed
// reachable from Loading and Resolving.
type Workflow struct {
	chain Chain
	now   func() time.Time

	mu       sync.Mutex
	state    State
	marketID uint64
	market   *types.Market
	status   *types.MarketStatusInfo
	loadedAt time.Time
	outcome  *bool
	txHash   string
	err      error
}

func NewWorkflow(chain Chain) *Workflow {
	return &Workflow{chain: chain, now: time.Now}
}

// Load reads the market and its status together.
func (w *Workflow) Load(ctx context.Context, marketID uint64) error {
	w.mu.Lock()
	if w.state == StateLoading || w.state == StateResolving {
		w.mu.Unlock()
		return errors.NewValidationError("loadMarket", "Another operation is in progress")
	}
	w.state = StateLoading
	w.marketID = marketID
	w.market, w.status, w.outcome, w.txHash, w.err = nil, nil, nil, "", nil
	w.mu.Unlock()

	m, status, err := w.read(ctx, marketID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateFailed
		w.err = err
		return err
	}
	w.state = StateLoaded
	w.market = m
	w.status = status
	w.loadedAt = w.now()
	return nil
}

// refresh re-reads a loaded market whose copy is older than one polling
// interval. The chosen outcome is kept.
func (w *Workflow) refresh(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateLoaded {
		w.mu.Unlock()
		return nil
	}
	snapshot := market.NewSnapshot(*w.market, w.status.CurrentTime, w.loadedAt)
	if snapshot.Trustworthy(w.now()) {
		w.mu.Unlock()
		return nil
	}
	w.state = StateLoading
	marketID := w.marketID
	w.mu.Unlock()

	logger.Debug("Market %d was loaded at %s, re-reading before resolve", marketID, snapshot.FetchedAt.Format(time.RFC3339))
	m, status, err := w.read(ctx, marketID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateFailed
		w.err = err
		return err
	}
	w.state = StateLoaded
	w.market = m
	w.status = status
	w.loadedAt = w.now()
	return nil
}

func (w *Workflow) read(ctx context.Context, marketID uint64) (*types.Market, *types.MarketStatusInfo, error) {
	count, err := w.chain.GetMarketCount(ctx)
	if err != nil {
		return nil, nil, err
	}
	if marketID >= count {
		return nil, nil, &errors.ChainError{
			Kind:      errors.KindNotFound,
			Operation: "loadMarket",
			Message:   fmt.Sprintf("Market %d does not exist", marketID),
		}
	}

	var (
		m      *types.Market
		status *types.MarketStatusInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		m, err = w.chain.GetMarket(gctx, marketID)
		return err
	})
	g.Go(func() error {
		var err error
		status, err = w.chain.GetMarketStatus(gctx, marketID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return m, status, nil
}

// ChooseOutcome records the outcome the organizer intends to resolve with.
func (w *Workflow) ChooseOutcome(outcome bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.outcome = &outcome
}

func (w *Workflow) CanResolve() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canResolve()
}

func (w *Workflow) canResolve() bool {
	return w.state == StateLoaded &&
		w.status != nil && w.status.IsBettingClosed &&
		w.market != nil && !w.market.Resolved &&
		w.outcome != nil
}

// Resolve submits the chosen outcome. A stale market is re-read first; it
// then refuses locally, without submitting, unless CanResolve holds.
func (w *Workflow) Resolve(ctx context.Context) (string, error) {
	if err := w.refresh(ctx); err != nil {
		return "", err
	}

	w.mu.Lock()
	if !w.canResolve() {
		err := w.refusal()
		w.mu.Unlock()
		return "", err
	}
	w.state = StateResolving
	marketID, outcome := w.marketID, *w.outcome
	w.mu.Unlock()

	txHash, err := w.chain.ResolveMarket(ctx, marketID, outcome)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateFailed
		w.err = err
		return "", err
	}
	w.state = StateResolved
	w.txHash = txHash
	w.market.Resolved = true
	w.market.Outcome = outcome
	logger.Info("Market %d resolved as %t in %s", marketID, outcome, txHash)
	return txHash, nil
}

func (w *Workflow) refusal() error {
	const op = "resolveMarket"
	switch {
	case w.state != StateLoaded:
		return errors.NewValidationError(op, fmt.Sprintf("Market is %s, not loaded", w.state))
	case w.market.Resolved:
		return &errors.ChainError{Kind: errors.KindMarketClosed, Operation: op, Message: "Market already resolved"}
	case !w.status.IsBettingClosed:
		return errors.NewChainError(errors.KindNotYetClosed, op, nil)
	default:
		return errors.NewValidationError(op, "Choose an outcome before resolving")
	}
}

func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		State:    w.state,
		MarketID: w.marketID,
		Outcome:  w.outcome,
		TxHash:   w.txHash,
	}
	if w.market != nil {
		m := *w.market
		v.Market = &m
	}
	if w.status != nil {
		s := *w.status
		v.Status = &s
	}
	if w.err != nil {
		v.Error = w.err.Error()
	}
	return v
}
