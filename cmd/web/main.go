package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/circus/internal/config"
	"github.com/tomz197/circus/internal/loop/server"
	"github.com/tomz197/circus/internal/netplay"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"

	drainTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

//go:embed index.html
var htmlPage string

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "env: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger("web")
	if err := run(logger); err != nil {
		logger.Fatal("web server failed", "err", err)
	}
}

func run(logger *log.Logger) error {
	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")

	tuning, stopTuning, err := config.OpenTuning(logger)
	if err != nil {
		return err
	}
	defer stopTuning()

	hub := server.NewHub(logger)
	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", html.EscapeString(sshHost))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok %d\n", hub.Count())
	})
	mux.Handle("/ws", netplay.NewHandler(netplay.Options{
		Hub:    hub,
		Tuning: tuning,
		Logger: logger,
	}))

	addr := net.JoinHostPort(host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	logger.Info("starting web server", "url", "http://"+addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-done:
	}
	logger.Info("shutting down")

	// Websockets are hijacked, so the hub drains them; Shutdown covers the rest.
	hub.Shutdown(drainTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
