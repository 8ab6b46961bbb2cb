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

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/joaodperes/stardust/internal/config"
	"github.com/joaodperes/stardust/internal/engine"
	"github.com/joaodperes/stardust/internal/journal"
	"github.com/joaodperes/stardust/internal/mcp"
	"github.com/joaodperes/stardust/internal/sqlite"
	"github.com/joaodperes/stardust/internal/ticker"
	"github.com/joaodperes/stardust/internal/transport"
	"github.com/joaodperes/stardust/internal/tuning"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries JSON-RPC in stdio mode.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tun, err := tuning.Load(cfg.Tuning.Path)
	if err != nil {
		return fmt.Errorf("loading tuning: %w", err)
	}

	opts := engine.Options{Tuning: tun}
	if cfg.Journal.Dir != "" {
		jw := journal.NewWriter(cfg.Journal.Dir, "missions", nil)
		defer func() {
			if err := jw.Close(); err != nil {
				logger.Error("closing journal", "error", err)
			}
		}()
		opts.Journal = jw
	}
	eng := engine.New(sqlite.NewKVStore(db), logger, opts)

	keys := sqlite.NewAPIKeyRepository(db)
	handler := mcp.NewHandler(eng.Services(), logger)
	mcpServer := mcp.NewServerWithHandler(mcp.Config{
		Resolver:      keys,
		AuthEnabled:   cfg.Auth.Enabled,
		DefaultPlayer: cfg.Auth.DefaultPlayer,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	}, handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Driver(ticker.Config{
			Interval: cfg.Ticker.Interval,
			Workers:  cfg.Ticker.Workers,
		}).Run(ctx)
	})

	if cfg.Transport.Mode == "stdio" {
		g.Go(func() error {
			defer stop()
			return runStdio(ctx, logger, mcpServer)
		})
	} else {
		auth := transport.DefaultPlayerMiddleware(cfg.Auth.DefaultPlayer)
		if cfg.Auth.Enabled {
			auth = transport.AuthMiddleware(keys)
		}
		router := transport.NewServer(handler, transport.Options{
			Auth: auth,
			MCP: sdkmcp.NewStreamableHTTPHandler(
				func(*http.Request) *sdkmcp.Server { return mcpServer },
				&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
			),
			RateLimiter:    transport.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Logger:         logger,
		})
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			return waitForShutdown(ctx, logger, httpServer)
		})
	}

	return g.Wait()
}

func runStdio(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")
	// Run returns when stdin closes or ctx is cancelled.
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
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

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server) error {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
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
