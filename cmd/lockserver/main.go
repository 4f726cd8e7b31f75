package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pkt.systems/pslog"

	"github.com/vigor8or/lockserver/pkg/clock"
	"github.com/vigor8or/lockserver/pkg/registry"
	"github.com/vigor8or/lockserver/pkg/server"
)

func main() {
	var (
		addr        = flag.String("addr", ":8000", "HTTP listen address")
		interval    = flag.Duration("interval", registry.DefaultInterval, "Lease duration for every holder")
		sweep       = flag.Duration("sweep", 0, "Sweep period (defaults to half the interval)")
		auth        = flag.String("auth", "", "Require HTTP Basic auth, user:password")
		certFile    = flag.String("cert", "", "TLS certificate file (enables TLS with -key)")
		keyFile     = flag.String("key", "", "TLS private key file")
		metricsAddr = flag.String("metrics-addr", "", "Prometheus listen address (disabled if empty)")
	)
	flag.Parse()

	logger := pslog.NewStructured(os.Stderr).With("app", "lockserver")

	var creds *server.Credentials
	if *auth != "" {
		var err error
		creds, err = server.ParseCredentials(*auth)
		if err != nil {
			logger.Error("startup.bad_auth_flag", "error", err)
			os.Exit(1)
		}
	}

	reg := registry.New(clock.Real{}, *interval)
	sweeper := registry.NewSweeper(reg, *sweep, logger.With("sys", "sweeper"))
	sweeper.Start()
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:         *addr,
		Handler:      server.NewServer(reg, creds, logger.With("sys", "http")).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		var err error
		if *certFile != "" {
			logger.Info("http.listening", "addr", *addr, "tls", true)
			err = srv.ListenAndServeTLS(*certFile, *keyFile)
		} else {
			logger.Info("http.listening", "addr", *addr, "tls", false)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http.serve_failed", "error", err)
			os.Exit(1)
		}
	}()

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			logger.Info("metrics.listening", "addr", *metricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics.serve_failed", "error", err)
			}
		}()
	}

	logger.Info("lockserver.ready",
		"interval", interval.String(),
		"sweep", sweeper.Period().String(),
		"auth", creds != nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("lockserver.shutting_down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http.shutdown_failed", "error", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}
	logger.Info("lockserver.stopped")
}
