// Package main provides a standalone HTTP server for E2E testing.
// It runs the same routes and handlers as the main server, but the Anthropic
// client talks to an in-process mock Messages API with canned replies, so
// browser tests need no credential.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ipo-radar/config"
	"ipo-radar/e2e/mocks"
	"ipo-radar/internal/api"
	"ipo-radar/internal/app"
	"ipo-radar/observability"
)

func main() {
	// Initialize logger in development mode for tests
	observability.InitLogger(false)
	observability.InitMetrics()

	port := os.Getenv("E2E_SERVER_PORT")
	if port == "" {
		port = "9090"
	}

	// Serve the mock upstream on a loopback listener of its own
	mock := mocks.NewHandler(time.Now())
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		observability.Fatal("failed to start mock upstream", "error", err)
	}
	mockServer := &http.Server{Handler: mock, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := mockServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("mock upstream error", "error", err)
		}
	}()
	mockURL := "http://" + listener.Addr().String()
	observability.Info("mock anthropic upstream started", "url", mockURL)

	if d, err := time.ParseDuration(os.Getenv("E2E_UPSTREAM_DELAY")); err == nil {
		mock.SetDelay(d)
	}

	cfg := config.NewTestConfig()
	cfg.Anthropic.APIKey = "sk-ant-e2e"
	cfg.Anthropic.BaseURL = mockURL
	cfg.Upstream.TimeoutSeconds = 30
	cfg.HTTP.Port = port

	ctx := context.Background()

	application := app.NewFromConfig(cfg)
	application.Startup(ctx)

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		observability.Info("starting E2E test server", "port", port, "url", fmt.Sprintf("http://localhost:%s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down E2E test server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}
	if err := mockServer.Shutdown(shutdownCtx); err != nil {
		observability.Error("mock upstream forced to shutdown", "error", err)
	}

	application.Shutdown(shutdownCtx)
	observability.Info("E2E test server stopped")
}
