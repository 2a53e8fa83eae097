// cdcsim simulates the REST API of a centralized discovery controller for
// running the zoning console without hardware.
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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cdc_zoning/internal/config"
	"cdc_zoning/internal/model"
	"cdc_zoning/internal/remote"
	"cdc_zoning/internal/simulator"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cdcsim",
		Short:        "Simulated CDC device API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}
	f := rootCmd.Flags()
	f.String("addr", "", "Listen address (SIM_ADDR when empty)")
	f.String("nodes", "", "Node inventory served on /nvmenodes (SIM_NODES_FILE when empty)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Sim.Addr = v
	}
	if v, _ := cmd.Flags().GetString("nodes"); v != "" {
		cfg.Sim.NodesFile = v
	}

	log := logrus.NewEntry(logrus.StandardLogger()).WithField("component", "cdcsim")

	var nodes []model.RegisteredNode
	nodes, err = remote.FileRegistry{Path: cfg.Sim.NodesFile}.Nodes(cmd.Context())
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.WithField("file", cfg.Sim.NodesFile).Warn("Node inventory not found, serving none")
	case err != nil:
		return err
	default:
		log.WithField("nodes", len(nodes)).Info("✓ Node inventory loaded")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	simulator.NewHandler(simulator.NewDevice(nodes), log).Register(r)

	srv := &http.Server{Addr: cfg.Sim.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("✓ Simulator listening on %s", cfg.Sim.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("simulator: %w", err)
	}
	return nil
}
