package api

import (
	"net/http"
	"strings"

	"github.com/SIMPLYBOYS/tachi/internal/db"
	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type walletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type updateUserRequest struct {
	WalletAddress string `json:"walletAddress"`
	db.UserUpdate
}

func walletFromQuery(c *gin.Context) (string, bool) {
	address := strings.TrimSpace(c.Query("walletAddress"))
	if address == "" {
		c.Error(badRequest("Wallet address is required", nil))
		return "", false
	}
	return address, true
}

func bindWallet(c *gin.Context, req interface{}, address *string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Error(badRequest("Invalid request body", err))
		return false
	}
	*address = strings.TrimSpace(*address)
	if *address == "" {
		c.Error(badRequest("Wallet address is required", nil))
		return false
	}
	if !common.IsHexAddress(*address) {
		c.Error(badRequest("Invalid wallet address", nil))
		return false
	}
	return true
}

// GetUser handles GET /users?walletAddress=
func (h *Handler) GetUser(c *gin.Context) {
	address, ok := walletFromQuery(c)
	if !ok {
		return
	}

	user, err := h.db.GetUserByAddress(address)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /users. It is idempotent: an existing profile is
// returned with 200, a new one with 201.
func (h *Handler) CreateUser(c *gin.Context) {
	var req walletRequest
	if !bindWallet(c, &req, &req.WalletAddress) {
		return
	}

	user, created, err := h.db.EnsureUser(req.WalletAddress)
	if err != nil {
		c.Error(err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PATCH /users
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if !bindWallet(c, &req, &req.WalletAddress) {
		return
	}
	if (req.Wins != nil && *req.Wins < 0) || (req.Losses != nil && *req.Losses < 0) {
		c.Error(badRequest("Wins and losses must not be negative", nil))
		return
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		c.Error(badRequest("Username must not be empty", nil))
		return
	}
	if req.MonWon != nil {
		monWon, ok := market.NormalizeDisplayAmount(*req.MonWon)
		if !ok {
			c.Error(badRequest("Invalid monWon amount", nil))
			return
		}
		req.MonWon = &monWon
	}

	user, err := h.db.UpdateUser(req.WalletAddress, req.UserUpdate)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetBalance handles GET /users/balance and returns the stored copy.
func (h *Handler) GetBalance(c *gin.Context) {
	address, ok := walletFromQuery(c)
	if !ok {
		return
	}

	user, err := h.db.GetUserByAddress(address)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":          user.Balance,
		"balanceUpdatedAt": user.BalanceUpdatedAt,
	})
}

// SyncBalance handles POST /users/balance and returns a fresh wallet read.
func (h *Handler) SyncBalance(c *gin.Context) {
	var req walletRequest
	if !bindWallet(c, &req, &req.WalletAddress) {
		return
	}

	balance, err := h.balances.Sync(c.Request.Context(), req.WalletAddress)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// GetLeaderboard handles GET /users/leaderboard
func (h *Handler) GetLeaderboard(c *gin.Context) {
	leaderboard, err := h.board.Build(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, leaderboard)
}

// GetUserStats handles GET /users/:address/stats
func (h *Handler) GetUserStats(c *gin.Context) {
	stats, err := h.contracts.ReadOnly().GetUserStats(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
