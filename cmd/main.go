// Gateway entry point: flags, environment, logging, wiring, lifecycle.
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/relaymesh/inference-gateway/internal/awssig"
	"github.com/relaymesh/inference-gateway/internal/config"
	"github.com/relaymesh/inference-gateway/internal/forward"
	"github.com/relaymesh/inference-gateway/internal/gateway"
	"github.com/relaymesh/inference-gateway/internal/monitoring"
	"github.com/relaymesh/inference-gateway/internal/routing"
	"github.com/relaymesh/inference-gateway/internal/server"
	"github.com/relaymesh/inference-gateway/internal/usage"
)

func main() {
	configPath := flag.String("config", "gateway.yaml", "path to config file")
	port := flag.Int("port", 0, "listen port (overrides config)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	initLogging(cfg.Logging)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("gateway exited")
	}
}

// initLogging sets the global level and switches to the console writer
// when stderr is a terminal.
func initLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(cfg *config.Config) error {
	registry, err := routing.NewRegistry(routing.DefaultStrategies()...)
	if err != nil {
		return fmt.Errorf("build provider registry: %w", err)
	}

	recorder, err := monitoring.NewRecorder(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	metrics := monitoring.NewMetrics()

	// Optional usage sinks beyond the default structured log.
	var sinks []usage.Sink
	accumulator := usage.NewAccumulator()
	defer accumulator.Close()
	sinks = append(sinks, accumulator)

	if cfg.Usage.SQLitePath != "" {
		sqlSink, err := usage.NewSQLiteSink(cfg.Usage.SQLitePath)
		if err != nil {
			return fmt.Errorf("init usage database: %w", err)
		}
		defer func() { _ = sqlSink.Close() }()
		sinks = append(sinks, sqlSink)
	}

	var feed *usage.Feed
	if cfg.Usage.FeedEnabled {
		feed = usage.NewFeed()
		sinks = append(sinks, feed)
	}

	trackers := usage.Trackers{
		usage.NewOpenAITracker(sinks...),
		usage.NewAnthropicTracker(sinks...),
	}

	var signer *awssig.Signer
	if cfg.Bedrock.SignRequests {
		signer, err = awssig.New(context.Background(), cfg.Bedrock.DefaultRegion)
		if err != nil {
			return fmt.Errorf("init bedrock signer: %w", err)
		}
		log.Info().Str("region", cfg.Bedrock.DefaultRegion).Msg("bedrock sigv4 signing enabled")
	}

	client := forward.NewClient(cfg.Upstream.ConnectTimeout.Std(), cfg.Upstream.IdleTimeout.Std())
	forwarder := forward.New(client, signer)
	gw := gateway.New(registry, forwarder, trackers, recorder, metrics)

	handler := server.New(gw, server.Options{Accumulator: accumulator, Feed: feed})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Int("providers", len(registry.Names())).
			Msg("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
