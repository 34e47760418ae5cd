package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ganot/laptrack/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Expose the stopwatch as an MCP tool server (stdio or http)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// In stdio mode stdout carries JSON-RPC; logs go to stderr.
			app, err := newApp(true)
			if err != nil {
				return err
			}
			defer app.Close()

			mcpServer := mcp.NewServer(mcp.Config{
				Services: mcp.Services{
					Timer:    app.engine,
					History:  app.history,
					Identity: app.identity,
				},
				Logger: app.logger,
			})

			if app.cfg.Transport.Mode == "stdio" {
				return runStdio(app, mcpServer)
			}
			return runHTTP(app, mcpServer)
		},
	}
}

func runStdio(app *app, mcpServer *sdkmcp.Server) error {
	app.logger.Info("starting stdio transport")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		app.logger.Info("shutting down")
		cancel()
	}()

	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		return fmt.Errorf("stdio server error: %w", err)
	}
	return nil
}

func runHTTP(app *app, mcpServer *sdkmcp.Server) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	rpcHandler, err := mcp.NewHTTPHandler(mcpServer, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create rpc bridge: %w", err)
	}

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.Handle("/rpc", rpcHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", app.cfg.Server.Host, app.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	app.logger.Info("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
