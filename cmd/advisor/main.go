package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/snow-ghost/advisor/advisor"
	"github.com/snow-ghost/advisor/channel"
	"github.com/snow-ghost/advisor/config"
	"github.com/snow-ghost/advisor/convo"
	"github.com/snow-ghost/advisor/core"
	llmmock "github.com/snow-ghost/advisor/llm/mock"
	llmopenai "github.com/snow-ghost/advisor/llm/openai"
	"github.com/snow-ghost/advisor/pkg/accounting"
	"github.com/snow-ghost/advisor/pkg/cache"
	"github.com/snow-ghost/advisor/pkg/limiter"
	"github.com/snow-ghost/advisor/pkg/logging"
	"github.com/snow-ghost/advisor/pkg/metrics"
	"github.com/snow-ghost/advisor/pkg/tokens"
	"github.com/snow-ghost/advisor/pkg/tracing"
)

func main() {
	cfg := advisor.LoadConfig()

	logger, err := logging.NewLogger(logging.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	slog.SetDefault(logger.GetSlog())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The experiment config is shared with the driver; when present, its
	// retry budget wins and the transcript lands in the experiment tree.
	if cfg.ConfigPath != "" {
		expCfg, err := config.Load(cfg.ConfigPath)
		if err != nil {
			log.Fatalf("load experiment config: %v", err)
		}
		if err := expCfg.EnsureDirectories(); err != nil {
			log.Fatalf("create experiment directories: %v", err)
		}
		cfg.MaxRetries = expCfg.LLM.MaxRetries
		if cfg.TranscriptPath == "output.txt" {
			cfg.TranscriptPath = filepath.Join(expCfg.Paths.TempDir(), "output.txt")
		}
		logger.Info("experiment config loaded",
			"path", cfg.ConfigPath,
			"max_retries", cfg.MaxRetries,
			"output_dir", expCfg.Paths.OutputDir(),
		)
	}

	m := metrics.New()

	tracer := tracing.NewNoopTracer()
	if cfg.TracingEnabled {
		tracer, err = tracing.NewTracer(tracing.Config{
			ServiceName:    "llm-advisor",
			ServiceVersion: "v1",
			JaegerEndpoint: cfg.JaegerEndpoint,
			Environment:    "production",
		})
		if err != nil {
			log.Fatalf("init tracing: %v", err)
		}
		defer tracer.Shutdown(context.Background())
	}

	// Usage accounting: sqlite when a path is configured, memory otherwise.
	var store accounting.Store = accounting.NewMemoryStore()
	if cfg.UsageDBPath != "" {
		store, err = accounting.NewSQLiteStore(cfg.UsageDBPath)
		if err != nil {
			log.Fatalf("init usage store: %v", err)
		}
	}
	defer store.Close()

	model := buildModel(cfg, logger, accounting.NewRecorder(store))

	inbound := channel.NewMemory(cfg.QueueSize)
	outbound := channel.NewMemory(cfg.QueueSize)

	transcript, err := convo.OpenTranscript(cfg.TranscriptPath)
	if err != nil {
		log.Fatalf("open transcript: %v", err)
	}
	defer transcript.Close()

	coordOpts := []advisor.CoordinatorOption{
		advisor.WithMetrics(m),
		advisor.WithTracer(tracer),
		advisor.WithModelName(cfg.Model),
		advisor.WithLogger(logger),
	}
	if respCache, err := cache.New(cfg.CacheSize, cfg.CacheTTL); err == nil {
		coordOpts = append(coordOpts, advisor.WithCache(respCache))
	}
	if enc, err := tokens.NewTiktokenEncoder(""); err == nil {
		coordOpts = append(coordOpts, advisor.WithTokenEncoder(enc))
	} else {
		coordOpts = append(coordOpts, advisor.WithTokenEncoder(tokens.MockEncoder{}))
	}

	coord := advisor.NewCoordinator(model, outbound, cfg.MaxRetries, coordOpts...)
	dispatcher := advisor.NewDispatcher(inbound, coord, transcript, cfg.PollTimeout,
		advisor.WithDispatcherMetrics(m),
		advisor.WithDispatcherTracer(tracer),
		advisor.WithDispatcherLogger(logger),
	)

	mux := http.NewServeMux()
	mux.Handle("/envelopes", channel.NewIngestor(inbound, outbound))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","service":"llm-advisor"}`))
	})
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("advisor worker starting", "addr", cfg.HTTPAddr, "llm_mode", cfg.LLMMode, "model", cfg.Model)
		err := dispatcher.Run(gctx)
		stop() // exit command also winds down the HTTP side
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("advisor worker stopped: %v", err)
	}
	logger.Info("advisor worker stopped")
}

func buildModel(cfg *advisor.Config, logger *logging.Logger, recorder core.UsageRecorder) core.ModelClient {
	if cfg.LLMMode == "mock" {
		return llmmock.NewClient()
	}

	client := llmopenai.NewClient(llmopenai.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	}, llmopenai.WithUsageRecorder(recorder))

	protCfg := limiter.DefaultConfig("model-backend")
	protCfg.Retry.MaxRetries = cfg.TransportRetries
	if cfg.RateLimitRPS > 0 {
		protCfg.RateLimit = rate.Limit(cfg.RateLimitRPS)
	}
	return limiter.Wrap(client, protCfg, logger)
}
