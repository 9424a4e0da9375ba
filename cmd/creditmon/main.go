package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/batch"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/cfg"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/dashboard"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/metrics"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/model"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/pipeline"
	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/storage"
)

func main() {
	var (
		mode     = flag.String("mode", "metrics", "Run mode: score or metrics")
		input    = flag.String("input", "", "Path to the batch file (.csv, .json, .jsonl)")
		output   = flag.String("output", "", "Output file for the JSON result (default stdout)")
		batchID  = flag.String("batch-id", "", "Batch identifier (default: input file name)")
		logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	// Local .env overrides are optional.
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *input == "" {
		log.Fatal().Msg("-input is required")
	}
	if *batchID == "" {
		*batchID = strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))
	}

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	provider, err := model.Load(settings.ArtifactsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("model initialization failed")
	}

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	store := initializeStorage(settings)
	if store != nil {
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startMetricsServer(ctx, settings)

	p := pipeline.New(provider, pipeline.Options{
		ReferenceGroups: settings.ReferenceGroups,
		Alpha:           settings.Alpha,
		Metrics:         mw,
	})

	b, err := batch.LoadFile(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("batch load failed")
	}

	var result any
	switch *mode {
	case "score":
		scored, err := p.Score(b)
		if err != nil {
			log.Fatal().Err(err).Msg("scoring failed")
		}
		if store != nil {
			if err := store.RecordRun(*batchID, scored); err != nil {
				log.Warn().Err(err).Msg("failed to record scoring run")
			}
		}
		result = scored

	case "metrics":
		rep, err := p.Metrics(b)
		if err != nil {
			log.Fatal().Err(err).Msg("metrics computation failed")
		}
		if settings.DashboardURL != "" {
			pub := dashboard.New(settings.DashboardURL, settings.DashboardTimeout)
			pushErr := pub.Push(*batchID, rep)
			mw.DashboardPush(pushErr)
			if pushErr != nil {
				log.Warn().Err(pushErr).Msg("dashboard push failed")
			}
		}
		result = rep

	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode, want score or metrics")
	}

	if err := writeResult(*output, result); err != nil {
		log.Fatal().Err(err).Msg("failed to write result")
	}
}

// initializeStorage opens the run ledger when a data path is configured.
func initializeStorage(s cfg.Settings) *storage.Store {
	if s.DataPath == "" {
		return nil
	}
	store, err := storage.New(s.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without run ledger")
		return nil
	}
	return store
}

// startMetricsServer exposes /metrics and /health while the batch runs.
func startMetricsServer(ctx context.Context, s cfg.Settings) {
	if s.MetricsPort == 0 {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Int("port", s.MetricsPort).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("metrics server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func writeResult(path string, result any) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
