package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"clubhouse/internal/adapters/config"
	"clubhouse/internal/adapters/email"
	web "clubhouse/internal/adapters/http"
	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/adapters/http/perf"
	"clubhouse/internal/adapters/storage"
	accountStore "clubhouse/internal/adapters/storage/account"
	auditStore "clubhouse/internal/adapters/storage/audit"
	clubStore "clubhouse/internal/adapters/storage/club"
	eventStore "clubhouse/internal/adapters/storage/event"
	membershipStore "clubhouse/internal/adapters/storage/membership"
	outboxStore "clubhouse/internal/adapters/storage/outbox"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	if err := run(*configDir); err != nil {
		slog.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(configDir string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	db, err := storage.Open(cfg.Database.Path, cfg.Database.MaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.InitDB(db); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.Database.SlowQuery)

	stores := &web.Stores{
		AccountStore:    accountStore.NewSQLiteStore(timedDB),
		ClubStore:       clubStore.NewSQLiteStore(timedDB),
		MembershipStore: membershipStore.NewSQLiteStore(timedDB),
		EventStore:      eventStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStore.NewSQLiteStore(timedDB),
		AuditStore:      auditStore.NewSQLiteStore(timedDB),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = orchestrators.ExecuteSeed(ctx, orchestrators.SeedDeps{
		AccountStore:    stores.AccountStore,
		ClubStore:       stores.ClubStore,
		MembershipStore: stores.MembershipStore,
		EventStore:      stores.EventStore,
	}, orchestrators.SeedConfig{
		AdminEmail:      cfg.Seed.AdminEmail,
		AdminPassword:   cfg.Seed.AdminPassword,
		StudentPassword: cfg.Seed.StudentPassword,
		AdminOnly:       !cfg.Seed.DemoData,
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	var sender email.Sender
	if cfg.Email.ResendKey != "" {
		sender = email.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = email.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "note", "announcements are not delivered")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEventAnnouncement: &orchestrators.EventAnnouncementExecutor{
			Sender:  sender,
			From:    cfg.Email.From,
			ReplyTo: cfg.Email.ReplyTo,
		},
	})

	var sessions middleware.SessionStore
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client := cfg.Redis.Client()
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
		}
		sessions = middleware.NewRedisSessionStore(client)
	default:
		sessions = middleware.NewMemorySessionStore()
	}

	hashKey := cfg.Session.HashKey
	if hashKey == nil {
		hashKey = securecookie.GenerateRandomKey(32)
		slog.Warn("session_key_generated", "note", "sessions will not survive a restart")
	}
	csrfKey := cfg.CSRFKey
	if csrfKey == nil {
		csrfKey = securecookie.GenerateRandomKey(32)
	}

	handler := web.NewMux(stores, web.Options{
		Sessions:           sessions,
		SessionHashKey:     hashKey,
		CSRFKey:            csrfKey,
		SecureCookies:      cfg.IsProduction(),
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
		MaxInFlight:        cfg.Server.MaxInFlight,
		AdmissionWait:      cfg.Server.AdmissionWait,
		Collector:          collector,
		DB:                 timedDB,
		Outbox:             processor,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return orchestrators.RunWorker(gctx, processor, time.Minute)
	})
	g.Go(func() error {
		slog.Info("server_started", "addr", cfg.Server.Addr, "version", version, "env", cfg.Env, "sessions", cfg.Session.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("server_stopping")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
