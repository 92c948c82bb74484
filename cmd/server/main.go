// Command server runs the blood bank API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	diseasehandler "bloodbank/internal/disease/handler"
	diseasesvc "bloodbank/internal/disease/service"
	diseasestore "bloodbank/internal/disease/store"
	invcache "bloodbank/internal/inventory/cache"
	invhandler "bloodbank/internal/inventory/handler"
	invmetrics "bloodbank/internal/inventory/metrics"
	invsvc "bloodbank/internal/inventory/service"
	invstore "bloodbank/internal/inventory/store"
	jwttoken "bloodbank/internal/jwt_token"
	lochandler "bloodbank/internal/location/handler"
	locsvc "bloodbank/internal/location/service"
	locstore "bloodbank/internal/location/store"
	"bloodbank/internal/notify"
	notifhandler "bloodbank/internal/notify/handler"
	"bloodbank/internal/notify/kafka"
	notifsvc "bloodbank/internal/notify/service"
	notifstore "bloodbank/internal/notify/store"
	"bloodbank/internal/platform/config"
	"bloodbank/internal/platform/httpserver"
	"bloodbank/internal/platform/logger"
	"bloodbank/internal/platform/metrics"
	"bloodbank/internal/platform/postgres"
	"bloodbank/internal/platform/redisclient"
	recphandler "bloodbank/internal/recipient/handler"
	recpsvc "bloodbank/internal/recipient/service"
	recpstore "bloodbank/internal/recipient/store"
	reghandler "bloodbank/internal/registration/handler"
	regmetrics "bloodbank/internal/registration/metrics"
	regsvc "bloodbank/internal/registration/service"
	regstore "bloodbank/internal/registration/store"
	reqhandler "bloodbank/internal/request/handler"
	reqmetrics "bloodbank/internal/request/metrics"
	reqsvc "bloodbank/internal/request/service"
	reqstore "bloodbank/internal/request/store"
	httptransport "bloodbank/internal/transport/http"
	userhandler "bloodbank/internal/user/handler"
	usersvc "bloodbank/internal/user/service"
	userstore "bloodbank/internal/user/store"
)

const jwtIssuer = "bloodbank"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	users    usersvc.Store
	inv      invsvc.Store
	regs     regsvc.Store
	reqs     reqsvc.Store
	locs     locsvc.Store
	diseases diseasesvc.Store
	recps    recpsvc.Store
	notifs   notifsvc.Store

	regTx regsvc.TxRunner
	reqTx reqsvc.TxRunner
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, cfg.JWTTTL)

	var notifier notify.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifier = publisher
		log.Info("kafka notifications enabled", "topic", cfg.KafkaTopic)
	} else {
		notifier = notify.NewLogNotifier(log)
	}
	dispatcher := notify.NewDispatcher(notifier, log)
	defer dispatcher.Close()

	notifications := notifsvc.New(st.notifs, dispatcher, log)
	users := usersvc.New(st.users, jwtService, log)

	inventorySvc := invsvc.New(st.inv, log).WithMetrics(invmetrics.New())
	if cfg.RedisURL != "" {
		client, err := redisclient.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		inventorySvc.WithCache(invcache.NewAvailabilityCache(client))
		log.Info("availability cache enabled")
	}

	registrations := regsvc.New(st.regs, st.regTx, users, notifications, log).
		WithMetrics(regmetrics.New())
	requests := reqsvc.New(st.reqs, st.reqTx, notifications, log).
		WithMetrics(reqmetrics.New())
	locations := locsvc.New(st.locs, log)
	diseases := diseasesvc.New(st.diseases, log)
	recipients := recpsvc.New(st.recps, log)

	httpMetrics := metrics.New()
	router := httptransport.NewRouter(log, httpMetrics,
		userhandler.New(users, log, jwtService),
		invhandler.New(inventorySvc, log, jwtService),
		reghandler.New(registrations, log, jwtService),
		reqhandler.New(requests, log, jwtService),
		lochandler.New(locations, log, jwtService),
		diseasehandler.New(diseases, log, jwtService),
		recphandler.New(recipients, log, jwtService),
		notifhandler.New(notifications, log, jwtService),
	)

	server := httpserver.New(cfg.ListenAddr, router, log)
	return server.Run(ctx)
}

// buildStores selects persistence: postgres when DATABASE_URL is set, the
// in-memory stores otherwise.
func buildStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory stores")
		regs := regstore.NewMemoryStore()
		reqs := reqstore.NewMemoryStore()
		inv := invstore.NewMemoryStore().WithLockTimeout(cfg.LockTimeout)
		return &stores{
			users:    userstore.NewMemoryStore(),
			inv:      inv,
			regs:     regs,
			reqs:     reqs,
			locs:     locstore.NewMemoryStore(),
			diseases: diseasestore.NewMemoryStore(),
			recps:    recpstore.NewMemoryStore(),
			notifs:   notifstore.NewMemoryStore(),
			regTx:    regsvc.NewMemoryTxRunner(regs, inv),
			reqTx:    reqsvc.NewMemoryTxRunner(reqs, inv),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, err
	}
	log.Info("using postgres stores")
	return &stores{
		users:    userstore.NewPostgresStore(db),
		inv:      invstore.NewPostgresStore(db),
		regs:     regstore.NewPostgresStore(db),
		reqs:     reqstore.NewPostgresStore(db),
		locs:     locstore.NewPostgresStore(db),
		diseases: diseasestore.NewPostgresStore(db),
		recps:    recpstore.NewPostgresStore(db),
		notifs:   notifstore.NewPostgresStore(db),
		regTx:    &registrationTxRunner{db: db},
		reqTx:    &requestTxRunner{db: db},
	}, nil
}
