package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/CarTrack/config"
	cartrackapi "github.com/BearBump/CarTrack/internal/api/cartrack_api"
	"github.com/BearBump/CarTrack/internal/broker/kafka"
	"github.com/BearBump/CarTrack/internal/cache/rediscache"
	"github.com/BearBump/CarTrack/internal/services/auth"
	"github.com/BearBump/CarTrack/internal/services/leads"
	"github.com/BearBump/CarTrack/internal/services/notify"
	"github.com/BearBump/CarTrack/internal/services/shipments"
	"github.com/BearBump/CarTrack/internal/services/showcase"
	"github.com/BearBump/CarTrack/internal/services/statuses"
	"github.com/BearBump/CarTrack/internal/services/templates"
	"github.com/BearBump/CarTrack/internal/storage/pgstore"
	"github.com/redis/go-redis/v9"
)

type carTrackAPIApp struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   carTrackAPIOpts
	api    *cartrackapi.CarTrackAPI
	deps   map[string]pinger

	closeProducer func() error
	closeRedis    func() error
	closeDB       func()
}

func mustBootstrapCarTrackAPI() *carTrackAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	ct := cfg.CarTrack
	if ct.JWTSecret == "" {
		panic("cartrack.jwt_secret is required")
	}

	httpAddr := ct.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	topic := cfg.Kafka.NotificationsTopicName
	if topic == "" {
		topic = "notification.requested"
	}
	cacheTTL := time.Duration(ct.TrackingCacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	maxAttempts := ct.LoginMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	loginWindow := time.Duration(ct.LoginWindowSeconds) * time.Second
	if loginWindow <= 0 {
		loginWindow = 15 * time.Minute
	}
	lockout := time.Duration(ct.LoginLockoutSeconds) * time.Second
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	leadsPerMin := int64(ct.LeadRateLimitPerMinute)
	if leadsPerMin <= 0 {
		leadsPerMin = 5
	}

	st := mustOpenPostgresWithRetry(cfg.Database.ConnString(), 60*time.Second)

	// один клиент на кэш, лимит заявок и блокировку входа
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	rc := rediscache.NewWithClient(rdb)
	rl := rediscache.NewRateLimiterWithClient(rdb)
	throttle := rediscache.NewLoginThrottle(rdb, int64(maxAttempts), loginWindow, lockout)

	producer := kafka.NewProducer(cfg.Kafka.Brokers())
	notifier := notify.New(st, producer, topic, ct.BaseURL)

	shipmentsSvc := shipments.New(st,
		shipments.WithNotifier(notifier),
		shipments.WithTrackingCache(rc, cacheTTL),
	)

	api := cartrackapi.New(cartrackapi.Deps{
		Auth:      auth.New(st, throttle, ct.JWTSecret, time.Duration(ct.JWTTTLMinutes)*time.Minute),
		Shipments: shipmentsSvc,
		Statuses:  statuses.New(st, statuses.WithTrackingInvalidator(shipmentsSvc)),
		Templates: templates.New(st, ct.BaseURL),
		Leads:     leads.New(st, rl, leadsPerMin, ct.DefaultPhoneRegion),
		Showcase:  showcase.New(st),
		Notifier:  notifier,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &carTrackAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: carTrackAPIOpts{
			httpAddr:    httpAddr,
			swaggerPath: swaggerPath,
		},
		api: api,
		deps: map[string]pinger{
			"postgres": st,
			"redis":    rc,
		},
		closeProducer: producer.Close,
		closeRedis:    rdb.Close,
		closeDB:       st.Close,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgstore.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgstore.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *carTrackAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.closeProducer != nil {
		_ = a.closeProducer()
	}
	if a.closeRedis != nil {
		_ = a.closeRedis()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *carTrackAPIApp) Run() error {
	return runCarTrackAPI(a.ctx, a.opts, a.api, a.deps)
}
