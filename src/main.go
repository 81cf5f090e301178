package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// Recover from panics and write crash log
	defer func() {
		if r := recover(); r != nil {
			writeCrashLog(r, "main")
			os.Exit(1)
		}
	}()

	initLogger()

	cfg := loadConfig()

	cli, err := newDockerClient()
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating Docker client")
	}
	defer cli.Close()

	svc := newContainerService(cli, cfg)
	stream := newContainersStream(svc.collectSnapshot, cfg.RefreshInterval)
	web := newWebServer(cfg, svc, stream)

	// Goroutine count monitor: warn on high counts, panic on runaway leaks
	// so the crash log captures the stacks instead of a silent lockup.
	safeGo("goroutine-monitor", func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			count := getGoroutineCount()
			if count > 1000 {
				logger.Warn().Int("goroutines", count).Msg("high goroutine count")
			}
			if count > 10000 {
				panic(fmt.Sprintf("FATAL: Goroutine leak detected - %d goroutines active (threshold: 10000)", count))
			}
		}
	})

	webErrChan := make(chan error, 1)
	safeGo("web-server", func() {
		if err := web.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webErrChan <- err
		}
	})

	var mcpServer *MCPServer
	mcpErrChan := make(chan error, 1)
	if cfg.MCPEnabled {
		mcpServer, err = NewMCPServer(svc, stream, cfg.MCPPort)
		if err != nil {
			logger.Fatal().Err(err).Msg("error creating MCP server")
		}
		safeGo("mcp-server", func() {
			if err := mcpServer.Start(); err != nil {
				mcpErrChan <- err
			}
		})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-webErrChan:
		logger.Error().Err(err).Str("addr", cfg.ListenAddr).Msg("web server failed")
	case err := <-mcpErrChan:
		logger.Error().Err(err).Int("port", cfg.MCPPort).Msg("MCP server failed, check the port is not already in use")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := web.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("web server shutdown error")
	}
	if mcpServer != nil {
		if err := mcpServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("MCP server shutdown error")
		}
	}
}
