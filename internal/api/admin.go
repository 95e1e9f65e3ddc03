package api

import (
	"net/http"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/admin"
	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/ethereum"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/gin-gonic/gin"
)

const signerKey = "signer"

type createMarketRequest struct {
	Question        string `json:"question"`
	DurationSeconds int64  `json:"durationSeconds"`
	BetAmount       string `json:"betAmount"`
}

type placeBetRequest struct {
	Prediction *bool `json:"prediction"`
}

type resolveRequest struct {
	Outcome *bool `json:"outcome"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type organizerRequest struct {
	Address string `json:"address"`
}

// RequireSigner rejects admin requests when no signer is attached.
func (h *Handler) RequireSigner() gin.HandlerFunc {
	return func(c *gin.Context) {
		signer, ok := h.contracts.Signer()
		if !ok {
			c.Error(&errors.ChainError{
				Kind:      errors.KindUnauthorized,
				Operation: c.FullPath(),
				Message:   "Signer required for admin operations",
			})
			c.Abort()
			return
		}
		c.Set(signerKey, signer)
		c.Next()
	}
}

func signerFrom(c *gin.Context) ethereum.ContractService {
	return c.MustGet(signerKey).(ethereum.ContractService)
}

func bindBody(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Error(badRequest("Invalid request body", err))
		return false
	}
	return true
}

// CreateMarket handles POST /admin/markets
func (h *Handler) CreateMarket(c *gin.Context) {
	var req createMarketRequest
	if !bindBody(c, &req) {
		return
	}

	result, err := signerFrom(c).CreateMarket(c.Request.Context(), req.Question, req.DurationSeconds, req.BetAmount)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// PlaceBet handles POST /admin/markets/:id/bets
func (h *Handler) PlaceBet(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}
	var req placeBetRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Prediction == nil {
		c.Error(badRequest("Prediction is required", nil))
		return
	}

	txHash, err := signerFrom(c).PlaceBet(c.Request.Context(), id, *req.Prediction)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txHash": txHash})
}

// CloseBetting handles POST /admin/markets/:id/close
func (h *Handler) CloseBetting(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}

	txHash, err := signerFrom(c).CloseBetting(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txHash": txHash})
}

// ResolveMarket handles POST /admin/markets/:id/resolve. The market is
// re-read and checked before anything is submitted.
func (h *Handler) ResolveMarket(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}
	var req resolveRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Outcome == nil {
		c.Error(badRequest("Outcome is required", nil))
		return
	}

	ctx := c.Request.Context()
	workflow := admin.NewWorkflow(signerFrom(c))
	if err := workflow.Load(ctx, id); err != nil {
		c.Error(err)
		return
	}
	workflow.ChooseOutcome(*req.Outcome)

	txHash, err := workflow.Resolve(ctx)
	if err != nil {
		c.Error(err)
		return
	}

	if h.pending != nil {
		h.pending.MarkResolved(id)
	}
	if h.notifier != nil {
		if err := h.notifier.BroadcastMarketResolved(id, *req.Outcome, txHash); err != nil {
			logger.LogError(err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"txHash": txHash, "workflow": workflow.View()})
}

// AddHouseFunds handles POST /admin/markets/:id/house-funds
func (h *Handler) AddHouseFunds(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}
	var req amountRequest
	if !bindBody(c, &req) {
		return
	}

	txHash, err := signerFrom(c).AddHouseFunds(c.Request.Context(), id, req.Amount)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txHash": txHash})
}

// SetOrganizer handles POST /admin/organizer
func (h *Handler) SetOrganizer(c *gin.Context) {
	var req organizerRequest
	if !bindBody(c, &req) {
		return
	}

	txHash, err := signerFrom(c).SetOrganizer(c.Request.Context(), req.Address)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"txHash": txHash})
}

// GetPendingMarkets handles GET /admin/markets/pending. A running scanner
// answers from its last scan; otherwise the chain is scanned now.
func (h *Handler) GetPendingMarkets(c *gin.Context) {
	if h.pending.Running() {
		markets, scannedAt := h.pending.Pending()
		c.JSON(http.StatusOK, gin.H{"markets": markets, "scannedAt": scannedAt})
		return
	}

	markets, err := h.pending.Scan(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"markets": markets, "scannedAt": time.Now()})
}
