package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edvart/gamers-league/internal/config"
	"github.com/edvart/gamers-league/internal/league"
	"github.com/edvart/gamers-league/internal/push"
	"github.com/edvart/gamers-league/internal/store"
	"github.com/edvart/gamers-league/internal/web"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	// Ensure the data directory exists
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.WithError(err).Fatal("failed to create data directory")
		}
	}

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize store")
	}
	defer db.Close()

	svc := league.NewService(db, log)

	pushSvc := push.NewService(db, log, push.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		VAPIDSubject:    cfg.VAPIDSubject,
	})
	if !pushSvc.Enabled() {
		log.Warn("VAPID keys not set, push notifications disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := push.NewNotifier(pushSvc, db, log)
	go notifier.Run(ctx, svc.Events())

	server := web.NewServer(svc, pushSvc, db, log)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server,
	}

	go func() {
		log.WithField("addr", cfg.Addr).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
