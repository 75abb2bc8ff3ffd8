package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/k1networth/itdesk/internal/docstore"
	"github.com/k1networth/itdesk/internal/shared/config"
	"github.com/k1networth/itdesk/internal/shared/events"
	"github.com/k1networth/itdesk/internal/shared/httpx"
	"github.com/k1networth/itdesk/internal/shared/kafkax"
	"github.com/k1networth/itdesk/internal/shared/logger"
	"github.com/k1networth/itdesk/internal/ticket"
)

const appName = "ticket-service"

func main() {
	cfg := config.Load()
	log := logger.New(appName, cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	docs := openStore(ctx, log, cfg.DatabaseURL)
	docs = docstore.Instrument(docs, docstore.NewMetrics(reg))
	defer func() {
		if err := docs.Close(); err != nil {
			log.Error("store_close_failed", slog.String("err", err.Error()))
		}
	}()

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafkax.NewProducer(kafkax.ProducerConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			ClientID: appName,
		})
		defer func() { _ = producer.Close() }()
		pub = events.NewBrokerPublisher(producer, reg)
		log.Info("events_enabled",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaTopic),
		)
	}

	ticketH := &ticket.Handler{
		Log:                log,
		Store:              ticket.NewStore(docs),
		Events:             pub,
		DatabaseConfigured: cfg.DatabaseURL != "",
	}

	handler := httpx.NewRouter(log, httpx.Options{
		Registry:           reg,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              docs.Ping,
	}, ticketH)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("http_listen", slog.String("addr", srv.Addr))

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", slog.String("err", err.Error()))
			stop()
		}
	}()

	httpx.WaitAndShutdown(ctx, log, srv, cfg.ShutdownTimeout)
}

// openStore connects to the configured document store. A missing or broken
// store does not stop the service: requests fail with store_unavailable and
// /readyz reports not ready until restart.
func openStore(ctx context.Context, log *slog.Logger, url string) docstore.Store {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	docs, err := docstore.Open(openCtx, url)
	if err != nil {
		log.Error("store_open_failed", slog.String("err", err.Error()))
		return docstore.Unavailable{Cause: err}
	}

	name, _ := docs.Name(openCtx)
	log.Info("store_ready", slog.String("database", name))
	return docs
}
