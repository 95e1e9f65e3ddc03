package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/admin"
	"github.com/SIMPLYBOYS/tachi/internal/api"
	"github.com/SIMPLYBOYS/tachi/internal/balance"
	"github.com/SIMPLYBOYS/tachi/internal/config"
	"github.com/SIMPLYBOYS/tachi/internal/db"
	"github.com/SIMPLYBOYS/tachi/internal/ethereum"
	"github.com/SIMPLYBOYS/tachi/internal/leaderboard"
	"github.com/SIMPLYBOYS/tachi/internal/poller"
	"github.com/SIMPLYBOYS/tachi/internal/session"
	"github.com/SIMPLYBOYS/tachi/internal/websocket"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", os.Getenv("TACHI_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize logger
	level, _ := logger.ParseLevel(cfg.Log.Level)
	logger.SetLevel(level)
	if cfg.Log.Dir != "" {
		if err := logger.EnableFileLogging(cfg.Log.Dir); err != nil {
			log.Fatalf("Failed to enable file logging: %v", err)
		}
	}

	logger.Info("Tachi starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	dbService, err := db.NewDBService(db.PostgresOperations{MigrationsPath: cfg.Database.MigrationsPath}, cfg.DSN())
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer dbService.Close()

	// Initialize Ethereum client and contract session
	client, err := ethereum.Dial(cfg.Chain.RPCURL, nil)
	if err != nil {
		logger.Fatal("Failed to initialize Ethereum client: %v", err)
	}
	defer client.Close()

	sess := session.New(session.ContractFactory(cfg.ContractAddress(), client,
		ethereum.WithReadLimit(cfg.Chain.ReadRPS, cfg.Chain.ReadBurst)))
	if cfg.HasSigner() {
		opts, err := ethereum.NewSigner(ctx, cfg.Chain.PrivateKey, cfg.Chain.ChainID, client)
		if err != nil {
			logger.Fatal("Failed to load organizer key: %v", err)
		}
		sess.Attach(opts)
		if ok, err := sess.IsOrganizer(ctx); err != nil {
			logger.Warn("Could not verify organizer: %v", err)
		} else if !ok {
			logger.Warn("Signer %s is not the contract organizer; admin writes will revert", opts.From.Hex())
		}
	}

	synchronizer := balance.NewSynchronizer(client, dbService)
	defer synchronizer.Wait()

	// Initialize WebSocket manager
	wsManager := websocket.NewWebSocketManager(synchronizer)
	go wsManager.Run(ctx)

	reconciler := leaderboard.NewReconciler(sess.ReadOnly(), dbService)
	scanner := admin.NewPendingScanner(sess.ReadOnly(), func(pending []admin.PendingMarket) {
		if err := wsManager.BroadcastPendingMarkets(pending); err != nil {
			logger.LogError(err)
		}
	})
	if _, ok := sess.Signer(); ok {
		scanner.Start(ctx)
		defer scanner.Stop()
	}

	leaderboardTask := poller.New("leaderboard", cfg.LeaderboardInterval(), func(ctx context.Context) {
		broadcastLeaderboard(ctx, reconciler, wsManager)
	})
	leaderboardTask.Start(ctx)
	defer leaderboardTask.Stop()

	// Set up and run the API server
	gin.SetMode(cfg.Server.Mode)
	handler := api.NewHandler(dbService, sess, reconciler, synchronizer, scanner, wsManager)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.SetupRouter(handler, wsManager, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}

func broadcastLeaderboard(ctx context.Context, reconciler *leaderboard.Reconciler, wsManager *websocket.WebSocketManager) {
	entries, err := reconciler.Build(ctx)
	if err != nil {
		logger.Error("Failed to build leaderboard: %v", err)
		return
	}
	if err := wsManager.BroadcastLeaderboardUpdate(entries); err != nil {
		logger.LogError(err)
	}
}
