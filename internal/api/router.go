package api

import (
	"github.com/SIMPLYBOYS/tachi/internal/websocket"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes the Gin router and sets up the routes
func SetupRouter(h *Handler, wsManager *websocket.WebSocketManager, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(), CORS(allowedOrigins), ErrorMiddleware())

	// User-related routes
	users := r.Group("/users")
	users.GET("", h.GetUser)
	users.POST("", h.CreateUser)
	users.PATCH("", h.UpdateUser)
	users.GET("/balance", h.GetBalance)
	users.POST("/balance", h.SyncBalance)
	users.GET("/leaderboard", h.GetLeaderboard)
	users.GET("/:address/stats", h.GetUserStats)

	// Market reads
	r.GET("/markets", h.ListMarkets)
	r.GET("/markets/:id", h.GetMarket)
	r.GET("/markets/:id/bets/:address", h.GetUserBet)
	r.GET("/contract", h.GetContractInfo)

	// Organizer operations
	adminGroup := r.Group("/admin", h.RequireSigner())
	adminGroup.POST("/markets", h.CreateMarket)
	adminGroup.GET("/markets/pending", h.GetPendingMarkets)
	adminGroup.POST("/markets/:id/bets", h.PlaceBet)
	adminGroup.POST("/markets/:id/close", h.CloseBetting)
	adminGroup.POST("/markets/:id/resolve", h.ResolveMarket)
	adminGroup.POST("/markets/:id/house-funds", h.AddHouseFunds)
	adminGroup.POST("/organizer", h.SetOrganizer)

	// WebSocket route
	if wsManager != nil {
		r.GET("/ws", func(c *gin.Context) {
			wsManager.HandleWebSocket(c.Writer, c.Request)
		})
	}

	return r
}
