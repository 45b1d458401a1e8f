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

	"tryon-studio/internal/config"
	"tryon-studio/internal/form"
	"tryon-studio/internal/handlers"
	"tryon-studio/internal/httpclient"
	"tryon-studio/internal/mediagroup"
	"tryon-studio/internal/telegram"
	"tryon-studio/internal/tryon"
)

// Downloads and Telegram calls made while handling one update are bounded;
// submissions are not.
const (
	updateTimeout = 2 * time.Minute
	shutdownWait  = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBot()
	if err != nil {
		panic(err)
	}

	logger := config.NewLogger(cfg)

	backendClient, telegramClient := newHTTPClients(cfg)

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: telegramClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	client := tryon.New(tryon.Options{
		BaseURL:    cfg.TryOnBaseURL,
		HTTPClient: backendClient,
		Logger:     logger,
	})

	store := form.NewStore(form.StoreOptions{
		Submitter: client,
		Logger:    logger,
		TTL:       cfg.SessionTTL,
	})

	handler := handlers.New(handlers.Options{
		Telegram:      tg,
		Store:         store,
		Logger:        logger,
		ResultBaseURL: cfg.TryOnBaseURL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	onGroupFlush := func(group mediagroup.Group) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		go func() {
			defer func() { <-sem }()

			reqCtx, cancel := context.WithTimeout(ctx, updateTimeout)
			defer cancel()

			handler.HandleMediaGroup(reqCtx, group)
		}()
	}

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		OnFlush:  onGroupFlush,
	})
	handler.SetMediaGroupAggregator(aggregator)

	logger.Info("bot started", "username", tg.Username(), "backend", client.Endpoint())

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			waitSubmissions(handler, shutdownWait)
			return
		case now := <-sweep.C:
			store.Sweep(now)
			handler.Sweep(now, cfg.SessionTTL)
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, updateTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
			}(update)
		}
	}
}

// newHTTPClients returns the try-on backend client, unbounded unless
// HTTP_TIMEOUT_SECONDS is set, and the Telegram client, which is always
// bounded.
func newHTTPClients(cfg config.Config) (backend, tg *http.Client) {
	backend = httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})
	tg = httpclient.New(httpclient.Options{
		PreferIPv4:            cfg.PreferIPv4,
		Timeout:               cfg.TelegramHTTPTimeout,
		ResponseHeaderTimeout: 60 * time.Second,
	})
	return backend, tg
}

// waitSubmissions gives in-flight submissions a chance to deliver their
// result before the process exits.
func waitSubmissions(handler *handlers.Handler, limit time.Duration) bool {
	done := make(chan struct{})
	go func() {
		handler.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(limit):
		return false
	}
}
