package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	v1 "cdc_zoning/api/v1"
	"cdc_zoning/internal/auth"
	"cdc_zoning/internal/model"
	"cdc_zoning/internal/ws"
	"cdc_zoning/internal/zoning"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API, metrics and live updates",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	var hub *ws.Hub
	a, err := newApp(cmd, zoning.WithNotifier(zoning.NotifierFunc(func(cfg *model.ZoneConfig) {
		if hub != nil {
			hub.ZoneConfigChanged(cfg)
		}
	})))
	if err != nil {
		return err
	}
	defer a.close()
	cfg, log := a.cfg, a.log

	deps := v1.Deps{Coordinator: a.coord, Logs: a.logs, Log: log}
	if cfg.Auth.Enabled {
		deps.Credentials, err = auth.LoadCredentials(cfg.Auth.CredentialsFile)
		if err != nil {
			return err
		}
		deps.Issuer, err = auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpireHours)*time.Hour)
		if err != nil {
			return err
		}
		log.WithField("users", len(deps.Credentials)).Info("✓ Login enabled")
	}

	hub = ws.NewHub(a.coord.ZoneConfig, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	v1.SetupRouter(r, deps)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Any("/socket.io/*any", gin.WrapH(hub.Handler(deps.Issuer)))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := hub.Serve(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("socket.io server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Infof("✓ Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if cerr := hub.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
