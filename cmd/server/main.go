package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rpggio/grantmate/internal/ai"
	"github.com/rpggio/grantmate/internal/collab"
	"github.com/rpggio/grantmate/internal/config"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/proposal"
	"github.com/rpggio/grantmate/internal/mcp"
	"github.com/rpggio/grantmate/internal/sqlite"
	"github.com/rpggio/grantmate/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logWriter := io.Writer(os.Stdout)
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path, cfg.Log.MaxBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = io.MultiWriter(os.Stdout, fileWriter)
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cache ai.Cache
	if cfg.Cache.RedisURL != "" {
		redisCache, err := ai.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			logger.Warn("draft cache disabled", "error", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
			logger.Info("draft cache enabled", "ttl", cfg.Cache.TTL)
		}
	}
	if cfg.AI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, proposals will use the offline draft")
	}
	generator := ai.NewGenerator(ai.Config{
		APIKey:        cfg.AI.APIKey,
		BaseURL:       cfg.AI.BaseURL,
		PrimaryModel:  cfg.AI.PrimaryModel,
		FallbackModel: cfg.AI.FallbackModel,
	}, cache, logger)

	proposalRepo := sqlite.NewProposalRepository(db)
	collaboratorRepo := sqlite.NewCollaboratorRepository(db)
	updateRepo := sqlite.NewUpdateRepository(db)

	proposalSvc := proposal.NewService(proposalRepo, generator, logger)
	rosterSvc := collaborator.NewService(collaboratorRepo, proposalRepo, logger)
	historySvc := history.NewService(updateRepo, logger)

	protocol := collab.NewProtocol(collab.NewRegistry(), rosterSvc, historySvc, logger)
	hub := collab.NewHub(protocol, logger)
	go hub.Run(ctx)

	deps := transport.Deps{
		Proposals:      proposalSvc,
		Roster:         rosterSvc,
		Updates:        historySvc,
		Announcer:      hub,
		WebSocket:      collab.NewHandler(hub, cfg.Server.CORSOrigins, logger),
		AllowedOrigins: cfg.Server.CORSOrigins,
		Logger:         logger,
	}
	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer(mcp.Config{
			Services: mcp.Services{
				Proposals: proposalSvc,
				Roster:    rosterSvc,
				Updates:   historySvc,
			},
			Logger: logger,
		})
		deps.MCP = mcp.NewHTTPHandler(mcpServer)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "mcp", cfg.MCP.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	waitForShutdown(ctx, logger, httpServer, hub)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server, hub *collab.Hub) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	// Hub sessions are hijacked connections that Shutdown does not wait for.
	select {
	case <-hub.Done():
	case <-shutdownCtx.Done():
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
