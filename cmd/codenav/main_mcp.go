package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/standardbeagle/codenav/internal/debug"
	"github.com/standardbeagle/codenav/internal/mcp"

	"github.com/urfave/cli/v2"
)

func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol from here on
	debug.SetMCPMode(true)

	w, err := openWorkspace(c)
	if err != nil {
		return debug.Fatal("failed to load project: %v\n", err)
	}

	mcpServer, err := mcp.NewServer(w.project, w.engine, w.cfg)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- mcpServer.Start(ctx)
	}()

	shutdown := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := mcpServer.Shutdown(shutdownCtx); err != nil {
			debug.LogMCP("shutdown: %v\n", err)
		}
	}

	select {
	case err := <-errChan:
		shutdown()
		if err != nil {
			return debug.Fatal("MCP server error: %v\n", err)
		}
		return nil
	case sig := <-sigChan:
		debug.LogMCP("Received signal %v, shutting down gracefully...\n", sig)
		cancel()

		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()

		select {
		case err := <-errChan:
			debug.LogMCP("Server shutdown completed\n")
			shutdown()
			return err
		case <-shutdownTimer.C:
			debug.LogMCP("Graceful shutdown timeout, forcing exit\n")
			// Closing stdin breaks the stdio transport's read loop
			os.Stdin.Close()

			forceTimer := time.NewTimer(500 * time.Millisecond)
			defer forceTimer.Stop()

			select {
			case err := <-errChan:
				shutdown()
				return err
			case <-forceTimer.C:
				debug.LogMCP("Force shutdown timeout exceeded\n")
				shutdown()
				return nil
			}
		}
	}
}
