package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"foodarena/arena"
	"foodarena/config"
	"foodarena/logging"
	"foodarena/store"
	"foodarena/world"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to YAML config (embedded defaults when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Errorw("server stopped", "err", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		db        *store.DB
		analytics *store.Analytics
		err       error
	)
	if cfg.Store.Path != "" {
		db, err = store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		analytics = store.NewAnalytics(db, log.Named("analytics"), cfg.Store.FlushInterval, cfg.Store.FlushBatch)
		log.Infow("session history enabled", "path", cfg.Store.Path)
	}

	auth, err := NewAuth(cfg.Admin)
	if err != nil {
		return err
	}

	w := world.New(cfg.WorldParams())
	w.SeedFood(cfg.World.InitialFood)

	opts := arena.Options{
		LeaderboardPeriod: cfg.Tick.LeaderboardPeriod,
		Logger:            log.Named("room"),
	}
	if analytics != nil {
		opts.Tracker = analytics
	}
	room := arena.New(w, opts)

	// The room and hub outlive the signal context so shutdown can be ordered
	bgCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go room.Run(bgCtx)

	hub := NewHub(room, cfg.Server, log.Named("hub"))
	go hub.Run(bgCtx)

	srv := &Server{
		Hub:       hub,
		Room:      room,
		Auth:      auth,
		DB:        db,
		Analytics: analytics,
		Config:    cfg.Server,
		Log:       log.Named("http"),
	}
	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: srv.Routes()}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", cfg.Server.Addr, "static", cfg.Server.StaticDir, "admin", auth != nil)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http shutdown", "err", err)
	}

	// Stopping the room closes every websocket
	cancel()
	<-room.Done()
	if analytics != nil {
		analytics.Stop()
	}
	return nil
}
