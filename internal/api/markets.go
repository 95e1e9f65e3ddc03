package api

import (
	"fmt"
	"net/http"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const listConcurrency = 8

// ListMarkets handles GET /markets. Markets that fail to load are left out.
func (h *Handler) ListMarkets(c *gin.Context) {
	ctx := c.Request.Context()
	contract := h.contracts.ReadOnly()

	count, err := contract.GetMarketCount(ctx)
	if err != nil {
		c.Error(err)
		return
	}

	slots := make([]*market.View, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for id := uint64(0); id < count; id++ {
		id := id
		g.Go(func() error {
			snapshot, err := contract.GetMarketSnapshot(gctx, id)
			if err != nil {
				logger.Warn("Failed to load market %d: %v", id, err)
				return nil
			}
			view := market.NewView(*snapshot)
			slots[id] = &view
			return nil
		})
	}
	_ = g.Wait()

	views := make([]market.View, 0, count)
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i] != nil {
			views = append(views, *slots[i])
		}
	}
	c.JSON(http.StatusOK, views)
}

// GetMarket handles GET /markets/:id
func (h *Handler) GetMarket(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	contract := h.contracts.ReadOnly()

	count, err := contract.GetMarketCount(ctx)
	if err != nil {
		c.Error(err)
		return
	}
	if id >= count {
		c.Error(&errors.ChainError{
			Kind:      errors.KindNotFound,
			Operation: "getMarket",
			Message:   fmt.Sprintf("Market %d does not exist", id),
		})
		return
	}

	snapshot, err := contract.GetMarketSnapshot(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, market.NewView(*snapshot))
}

// GetUserBet handles GET /markets/:id/bets/:address
func (h *Handler) GetUserBet(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}

	bet, err := h.contracts.ReadOnly().GetUserBet(c.Request.Context(), id, c.Param("address"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, bet)
}

// GetContractInfo handles GET /contract
func (h *Handler) GetContractInfo(c *gin.Context) {
	info, err := h.contracts.ReadOnly().GetContractInfo(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, info)
}
