package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"dupe-checker/internal/handlers"
	"dupe-checker/internal/logging"
	"dupe-checker/internal/media"
	"dupe-checker/internal/metrics"
	"dupe-checker/internal/middleware"
	"dupe-checker/internal/pipeline"
	"dupe-checker/internal/reveal"
	"dupe-checker/internal/startup"
	"dupe-checker/internal/view"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the review server with its live websocket view",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		return err
	}

	lock, err := startup.AcquireLock(config.LockPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.Warn("Failed to release instance lock %s: %v", lock.Path(), err)
		}
	}()
	logging.Debug("Holding instance lock %s", lock.Path())

	bins := media.LocateBinaries(config.FFmpegPath, config.FFprobePath)
	startup.LogMediaTools(bins.FFmpeg, bins.FFprobe)

	metrics.InitializeMetrics(mediaKinds())

	manager := newManager(config, bins)
	model := view.NewModel()
	hub := view.NewHub(model)

	viewCtx, stopView := context.WithCancel(context.Background())
	viewDone := make(chan struct{})
	go func() {
		defer close(viewDone)
		view.Run(viewCtx, manager.Queue(), model, hub)
	}()

	h := handlers.New(manager, model, hub, reveal.New())

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogThumbnails, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogThumbnails = config.LogThumbnails
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	srv := newServer(":"+config.Port, handler)

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(":"+config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		handleShutdown(srv, metricsSrv, h, manager, hub, lock.Path(), func() {
			stopView()
			<-viewDone
		})
	}()

	h.SetReady(true)
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		RuntimeDir:      config.RuntimeDir,
		LockPath:        lock.Path(),
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		manager.Close()
		stopView()
		return err
	}

	<-shutdownDone
	return nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// The websocket stream stays open for the whole session.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
}

func newMetricsServer(addr string, h *handlers.Handlers) *http.Server {
	r := http.NewServeMux()
	r.Handle("/metrics", h.MetricsHandler())
	r.HandleFunc("/health", h.HealthCheck)

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Pipelines
	api.HandleFunc("/import", h.StartImport).Methods("POST").Name("StartImport")
	api.HandleFunc("/import/cancel", h.CancelImport).Methods("POST").Name("CancelImport")
	api.HandleFunc("/previews", h.StartPreviews).Methods("POST").Name("StartPreviews")
	api.HandleFunc("/previews/cancel", h.CancelPreviews).Methods("POST").Name("CancelPreviews")
	api.HandleFunc("/status", h.GetStatus).Methods("GET").Name("GetStatus")

	// Duplicate rows
	api.HandleFunc("/rows", h.ListRows).Methods("GET").Name("ListRows")
	api.HandleFunc("/rows/{index:[0-9]+}/thumbnail", h.GetThumbnail).Methods("GET").Name("GetThumbnail")
	api.HandleFunc("/rows/{index:[0-9]+}/reveal", h.RevealRow).Methods("POST").Name("RevealRow")

	// Live view
	api.HandleFunc("/ws", h.Stream).Methods("GET").Name("Stream")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, h *handlers.Handlers, manager *pipeline.Manager, hub *view.Hub, lockPath string, stopView func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	signal.Stop(sigChan)

	startup.LogShutdownInitiated(sig.String())
	began := time.Now()
	h.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Cancelling pipelines")
	manager.Close()
	startup.LogShutdownStepComplete("Pipelines stopped")

	startup.LogShutdownStep("Flushing view")
	stopView()
	hub.Close()
	startup.LogShutdownStepComplete("View closed")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete(lockPath, time.Since(began))
}
