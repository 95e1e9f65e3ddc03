package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/admin"
	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/poller"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Note: Adjust this for production!
	},
}

// BalanceWatcher keeps a wallet's balance fresh for a connected client.
type BalanceWatcher interface {
	Watch(ctx context.Context, address string, apply func(types.Balance)) *poller.Poller
}

type client struct {
	id    string
	conn  *websocket.Conn
	send  chan []byte
	mu    sync.Mutex
	watch *poller.Poller
}

func (c *client) stopWatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watch != nil {
		c.watch.Stop()
		c.watch = nil
	}
}

// inbound is a message sent by a client.
type inbound struct {
	Type    string `json:"type"`
	Address string `json:"address"`
}

type WebSocketManager struct {
	clients    map[string]*client
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mutex      sync.Mutex
	balances   BalanceWatcher
	ctx        context.Context
}

// NewWebSocketManager returns a manager. balances may be nil, in which case
// clients cannot watch a wallet.
func NewWebSocketManager(balances BalanceWatcher) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]*client),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		balances:   balances,
		ctx:        context.Background(),
	}
}

// Run dispatches registrations and broadcasts until ctx is cancelled.
func (manager *WebSocketManager) Run(ctx context.Context) {
	manager.mutex.Lock()
	manager.ctx = ctx
	manager.mutex.Unlock()

	for {
		select {
		case <-ctx.Done():
			manager.mutex.Lock()
			var gone []*client
			for id, c := range manager.clients {
				close(c.send)
				delete(manager.clients, id)
				gone = append(gone, c)
			}
			manager.mutex.Unlock()
			stopWatches(gone)
			return
		case c := <-manager.register:
			manager.mutex.Lock()
			manager.clients[c.id] = c
			manager.mutex.Unlock()
			logger.Debug("WebSocket client %s connected", c.id)
		case c := <-manager.unregister:
			manager.mutex.Lock()
			_, ok := manager.clients[c.id]
			if ok {
				delete(manager.clients, c.id)
				close(c.send)
			}
			manager.mutex.Unlock()
			if ok {
				stopWatches([]*client{c})
			}
			logger.Debug("WebSocket client %s disconnected", c.id)
		case message := <-manager.broadcast:
			manager.mutex.Lock()
			var dropped []*client
			for id, c := range manager.clients {
				select {
				case c.send <- message:
				default:
					logger.Warn("Dropping slow WebSocket client %s", id)
					delete(manager.clients, id)
					close(c.send)
					dropped = append(dropped, c)
				}
			}
			manager.mutex.Unlock()
			stopWatches(dropped)
		}
	}
}

// stopWatches must be called without manager.mutex held: a balance delivery
// in flight takes that mutex in sendTo before its poller can stop.
func stopWatches(clients []*client) {
	for _, c := range clients {
		c.stopWatch()
	}
}

func (manager *WebSocketManager) context() context.Context {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	return manager.ctx
}

// ClientCount returns the number of connected clients.
func (manager *WebSocketManager) ClientCount() int {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	return len(manager.clients)
}

func (manager *WebSocketManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade connection: %v", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	select {
	case manager.register <- c:
	case <-manager.context().Done():
		conn.Close()
		return
	}

	go manager.readPump(c)
	go manager.writePump(c)
}

func (manager *WebSocketManager) readPump(c *client) {
	defer func() {
		select {
		case manager.unregister <- c:
		case <-manager.context().Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("Unexpected close error: %v", err)
			}
			break
		}
		manager.handleInbound(c, data)
	}
}

func (manager *WebSocketManager) handleInbound(c *client, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Debug("Ignoring malformed message from %s: %v", c.id, err)
		return
	}

	switch msg.Type {
	case "watch_balance":
		if manager.balances == nil || !common.IsHexAddress(msg.Address) {
			manager.sendTo(c, map[string]interface{}{"type": "error", "message": "Cannot watch balance"})
			return
		}
		c.stopWatch()
		address := msg.Address
		p := manager.balances.Watch(manager.context(), address, func(b types.Balance) {
			manager.sendTo(c, map[string]interface{}{
				"type":             "balance_update",
				"address":          address,
				"balance":          b.Balance,
				"balanceUpdatedAt": b.BalanceUpdatedAt,
			})
		})
		c.mu.Lock()
		c.watch = p
		c.mu.Unlock()
	case "unwatch_balance":
		c.stopWatch()
	default:
		logger.Debug("Ignoring message of type %q from %s", msg.Type, c.id)
	}
}

// sendTo queues a message for a single client if it is still connected.
func (manager *WebSocketManager) sendTo(c *client, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.LogError(&errors.WebSocketError{Operation: "marshal direct message", Err: err})
		return
	}
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	if _, ok := manager.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (manager *WebSocketManager) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Error writing to client %s: %v", c.id, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (manager *WebSocketManager) publish(operation string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &errors.WebSocketError{Operation: operation, Err: err}
	}

	ctx := manager.context()
	if err := ctx.Err(); err != nil {
		return &errors.WebSocketError{Operation: operation, Err: err}
	}
	select {
	case manager.broadcast <- data:
		return nil
	case <-ctx.Done():
		return &errors.WebSocketError{Operation: operation, Err: ctx.Err()}
	}
}

func (manager *WebSocketManager) BroadcastLeaderboardUpdate(leaderboard []types.LeaderboardEntry) error {
	return manager.publish("marshal leaderboard update", map[string]interface{}{
		"type":        "leaderboard_update",
		"leaderboard": leaderboard,
	})
}

func (manager *WebSocketManager) BroadcastMarketResolved(marketID uint64, outcome bool, txHash string) error {
	return manager.publish("marshal market resolved", map[string]interface{}{
		"type":     "market_resolved",
		"marketId": marketID,
		"outcome":  outcome,
		"txHash":   txHash,
	})
}

func (manager *WebSocketManager) BroadcastPendingMarkets(markets []admin.PendingMarket) error {
	return manager.publish("marshal pending markets", map[string]interface{}{
		"type":    "pending_markets",
		"markets": markets,
	})
}
