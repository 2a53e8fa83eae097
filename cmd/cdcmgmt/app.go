package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"cdc_zoning/internal/audit"
	"cdc_zoning/internal/config"
	"cdc_zoning/internal/db"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/lock"
	"cdc_zoning/internal/remote"
	"cdc_zoning/internal/storage"
	"cdc_zoning/internal/zoning"
)

// app holds the services every command needs
type app struct {
	cfg   *config.Config
	log   *logrus.Entry
	store *storage.FileStore
	coord *zoning.Coordinator
	logs  audit.Log

	closers []func()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromINI(path)
	}
	return config.Load()
}

func newLogger(cfg config.LogConfig) (*logrus.Entry, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	l := logrus.New()
	l.SetLevel(level)
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logrus.NewEntry(l), nil
}

// newApp loads the configuration and wires the coordinator. extra options are
// applied last.
func newApp(cmd *cobra.Command, extra ...zoning.Option) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	httpx.SetLogger(log)
	log.Info("✓ Configuration loaded")

	a := &app{cfg: cfg, log: log}

	a.store, err = storage.NewFileStore(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	log.WithField("dir", cfg.DataDir).Info("✓ Data directory ready")

	opts := []zoning.Option{
		zoning.WithLogger(log),
		zoning.WithEagerOrphanCleanup(cfg.Zoning.EagerOrphanCleanup),
	}

	var client *remote.Client
	if cfg.CDC.Enabled {
		client = remote.NewClient(cfg.CDC.URL, cfg.CDC.Timeout(), log)
		opts = append(opts, zoning.WithRemote(client))
		log.WithField("url", cfg.CDC.URL).Info("✓ CDC device client configured")
	} else {
		log.Warn("CDC device disabled, changes are kept locally only")
	}

	switch cfg.Registry.Source {
	case config.RegistryRemote:
		opts = append(opts, zoning.WithRegistry(client))
	default:
		opts = append(opts, zoning.WithRegistry(remote.FileRegistry{Path: cfg.Registry.File}))
	}

	if cfg.Redis.LockEnabled {
		rdb, err := lock.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		ttl := time.Duration(cfg.Redis.LockTTLSec) * time.Second
		opts = append(opts, zoning.WithLocker(lock.NewRedis(rdb, cfg.Redis.LockKey, ttl, log)))
		log.WithField("addr", cfg.Redis.Addr).Info("✓ Redis lock enabled")
	}

	if cfg.MySQL.DSN != "" {
		gdb, err := openAuditDB(cfg, log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close(gdb) })
		a.logs = audit.NewGormLog(gdb)
		log.Info("✓ Operation log stored in MySQL")
	} else {
		a.logs = audit.NewMemory(1000)
	}
	opts = append(opts, zoning.WithRecorder(a.logs))

	a.coord = zoning.NewCoordinator(a.store, append(opts, extra...)...)
	return a, nil
}

func openAuditDB(cfg *config.Config, log *logrus.Entry) (*gorm.DB, error) {
	gdb, err := db.Open(cfg.MySQL.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := db.Migrate(gdb, log.WithField("component", "db")); err != nil {
			_ = db.Close(gdb)
			return nil, err
		}
	}
	return gdb, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
