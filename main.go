package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kasuganosora/modguard/api/rest"
	"github.com/kasuganosora/modguard/async"
	"github.com/kasuganosora/modguard/audit"
	"github.com/kasuganosora/modguard/cache"
	"github.com/kasuganosora/modguard/config"
	dbadapter "github.com/kasuganosora/modguard/db"
	"github.com/kasuganosora/modguard/notify"
	"github.com/kasuganosora/modguard/punish"
	"github.com/kasuganosora/modguard/scheduler"
	"github.com/kasuganosora/modguard/schema"
	"github.com/kasuganosora/modguard/store"
	"go.uber.org/zap"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.AdminKeyHash == "" {
		logger.Warn("security.admin_key_hash is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	// A half-initialized punishment store must never serve traffic: any
	// failure from here through schema creation aborts startup.
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := schema.CreateAll(db, schema.Dialect(cfg.Database.Backend), cfg.Database.TablePrefix); err != nil {
		log.Fatalf("db schema: %v", err)
	}
	logger.Info("DB initialized",
		zap.String("backend", cfg.Database.Backend),
		zap.String("table_prefix", cfg.Database.TablePrefix))

	st := store.New(db, logger)

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop()

	// ---- Cache ----
	punishCache := cache.NewPunishments(cfg.Cache)
	logger.Info("cache tiers initialized",
		zap.Int("punishment_max", cfg.Cache.PunishmentMax),
		zap.Duration("punishment_ttl", cfg.Cache.PunishmentTTL))

	// ---- Worker pool ----
	pool := async.NewPool(cfg.Workers.Count, cfg.Workers.QueueSize, logger)
	defer pool.Close()

	// ---- Notifier ----
	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		log.Fatalf("notify: %v", err)
	}

	// ---- Service ----
	svc := punish.NewService(st, punishCache, pool, notifier, auditSvc, cfg.Server.Name, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	svc.RegisterTasks(sched,
		cfg.Cache.SweepInterval,
		cfg.Punish.PointsDecayInterval,
		cfg.Punish.PointsDecayAmount)

	// ---- HTTP ----
	r := rest.NewRouter(cfg, svc, st, sched, logger)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("modguard listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("http: %v", err)
	}
}
