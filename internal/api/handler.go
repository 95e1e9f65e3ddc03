package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/admin"
	"github.com/SIMPLYBOYS/tachi/internal/db"
	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/ethereum"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/gin-gonic/gin"
)

// Contracts hands out the read-only and signer-bound contract façades.
type Contracts interface {
	ReadOnly() ethereum.ContractService
	Signer() (ethereum.ContractService, bool)
}

type LeaderboardBuilder interface {
	Build(ctx context.Context) ([]types.LeaderboardEntry, error)
}

type BalanceSyncer interface {
	Sync(ctx context.Context, address string) (*types.Balance, error)
}

// PendingSource tracks markets awaiting resolution.
type PendingSource interface {
	Running() bool
	Pending() ([]admin.PendingMarket, time.Time)
	Scan(ctx context.Context) ([]admin.PendingMarket, error)
	MarkResolved(marketID uint64)
}

// Notifier pushes events to connected clients.
type Notifier interface {
	BroadcastMarketResolved(marketID uint64, outcome bool, txHash string) error
}

type Handler struct {
	db        db.DBService
	contracts Contracts
	board     LeaderboardBuilder
	balances  BalanceSyncer
	pending   PendingSource
	notifier  Notifier
}

func NewHandler(dbService db.DBService, contracts Contracts, board LeaderboardBuilder,
	balances BalanceSyncer, pending PendingSource, notifier Notifier) *Handler {
	return &Handler{
		db:        dbService,
		contracts: contracts,
		board:     board,
		balances:  balances,
		pending:   pending,
		notifier:  notifier,
	}
}

func badRequest(message string, err error) *errors.APIError {
	return &errors.APIError{StatusCode: http.StatusBadRequest, Message: message, Err: err}
}

// marketID parses the :id path parameter.
func marketID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(badRequest("Invalid market id", err))
		return 0, false
	}
	return id, true
}
