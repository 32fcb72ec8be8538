package commands

import (
	"context"
	"fmt"

	"github.com/wonny/divcal/internal/api"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/internal/external/dividendapi"
	"github.com/wonny/divcal/internal/profile"
	"github.com/wonny/divcal/internal/watchlist"
	"github.com/wonny/divcal/pkg/config"
	"github.com/wonny/divcal/pkg/database"
	"github.com/wonny/divcal/pkg/httputil"
	"github.com/wonny/divcal/pkg/logger"
	"github.com/wonny/divcal/pkg/redis"
)

// app holds the wired services shared by every command
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	dividends *dividends.Service
	watchlist *watchlist.Service
	profile   *profile.Profile // nil without CALENDAR_PROFILE
	checks    map[string]api.HealthCheck
	closers   []func()
}

// Close releases connections in reverse order of opening
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp loads config and wires upstream client, cache and watchlist store.
// quiet silences logs for commands that print their own output.
func buildApp(ctx context.Context, quiet bool) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	if quiet && !verbose {
		log = logger.Nop()
	}

	a := &app{cfg: cfg, log: log, checks: map[string]api.HealthCheck{}}

	// 2-1. Overlay the optional YAML profile
	if cfg.Calendar.ProfilePath != "" {
		p, err := loadProfile(cfg, log)
		if err != nil {
			return nil, err
		}
		a.profile = p
	}

	// 3. Connect to Redis (disabled → in-process cache)
	redisClient, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { redisClient.Close() })
	a.checks["redis"] = redisClient.Ping

	// 4. Create HTTP client, rate limited per upstream quota
	httpClient := httputil.New(cfg, log)
	if redisClient.Enabled() {
		httpClient.WithRateLimiter(
			redis.NewRateLimiter(redisClient, "divcal"),
			redis.UpstreamRateLimit(cfg.Upstream.RatePerSec),
		)
	} else {
		httpClient.WithLocalRateLimit(cfg.Upstream.RatePerSec)
	}

	// 5. Create upstream client and dividend service
	source := dividendapi.NewClient(httpClient, cfg.Upstream, log.WithComponent("upstream"))
	cache := redis.NewCache(redisClient, "divcal")
	a.dividends = dividends.NewService(source, cache, log.WithComponent("dividends"))

	// 6. Open watchlist store
	store, err := openWatchlistStore(ctx, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.watchlist = watchlist.NewService(store, log.WithComponent("watchlist"))

	log.WithFields(map[string]interface{}{
		"upstream":  cfg.Upstream.BaseURL,
		"redis":     redisClient.Enabled(),
		"watchlist": cfg.Watchlist.Driver,
	}).Debug("Application wired")

	return a, nil
}

func openWatchlistStore(ctx context.Context, a *app) (watchlist.Store, error) {
	switch a.cfg.Watchlist.Driver {
	case "memory":
		return watchlist.NewMemoryStore(), nil

	case "postgres":
		db, err := database.New(ctx, a.cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if err := watchlist.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		a.checks["database"] = db.Check
		return watchlist.NewPostgresStore(db.Pool), nil

	default:
		store, err := watchlist.OpenSQLite(ctx, a.cfg.Watchlist.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { store.Close() })
		a.checks["sqlite"] = store.Ping
		return store, nil
	}
}

// loadProfile reads CALENDAR_PROFILE and applies it onto cfg
func loadProfile(cfg *config.Config, log *logger.Logger) (*profile.Profile, error) {
	p, data, err := profile.Load(cfg.Calendar.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p.Apply(cfg)

	for _, w := range profile.Warn(p) {
		log.WithFields(map[string]interface{}{
			"code": w.Code,
		}).Warn(w.Message)
	}

	snap, err := profile.NewSnapshot(p, data)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]interface{}{
		"profile_id": snap.ProfileID,
		"version":    snap.Version,
		"hash":       snap.Hash,
	}).Info("Calendar profile loaded")

	return p, nil
}
