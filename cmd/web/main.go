package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tryon-studio/internal/config"
	"tryon-studio/internal/form"
	"tryon-studio/internal/httpclient"
	"tryon-studio/internal/tryon"
	"tryon-studio/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := config.NewLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	client := tryon.New(tryon.Options{
		BaseURL:    cfg.TryOnBaseURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	store := form.NewStore(form.StoreOptions{
		Submitter: client,
		Logger:    logger,
		TTL:       cfg.SessionTTL,
	})

	srv := web.New(web.Options{
		Store:          store,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		ResultBaseURL:  cfg.TryOnBaseURL,
	})

	httpServer := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("web started", "addr", cfg.WebAddr, "backend", client.Endpoint())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				store.Sweep(now)
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("web server failed", "err", err)
		os.Exit(1)
	}
}
