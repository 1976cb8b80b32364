package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/preplab/preptalk/internal/brain"
	"github.com/preplab/preptalk/internal/code"
	"github.com/preplab/preptalk/internal/config"
	"github.com/preplab/preptalk/internal/evaluate"
	"github.com/preplab/preptalk/internal/httpapi"
	"github.com/preplab/preptalk/internal/interview"
	"github.com/preplab/preptalk/internal/observability"
	"github.com/preplab/preptalk/internal/question"
	"github.com/preplab/preptalk/internal/speech"
	"github.com/preplab/preptalk/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := interview.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("session store init failed: %v", err)
	}
	defer store.Close()
	if cfg.DatabaseURL != "" {
		log.Printf("session store: postgres")
	} else {
		log.Printf("session store: in-memory")
	}

	var brainClient brain.Client
	if cfg.OpenAIAPIKey != "" {
		brainClient = brain.NewOpenAIClient(brain.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.OpenAITemperature,
			Timeout:     cfg.BrainTimeout,
		})
		log.Printf("question generation: openai (%s)", cfg.OpenAIModel)
	} else {
		log.Printf("question generation: rule-based (no OPENAI_API_KEY)")
	}

	var synth speech.Synthesizer
	switch strings.ToLower(cfg.SpeechProvider) {
	case "http":
		synth, err = speech.NewHTTPSynthesizer(speech.HTTPConfig{
			Endpoint: cfg.SpeechEndpoint,
			APIKey:   cfg.SpeechAPIKey,
			Format:   cfg.SpeechFormat,
			Timeout:  cfg.SpeechTimeout,
		})
		if err != nil {
			log.Fatalf("speech provider init failed: %v", err)
		}
		log.Printf("speech provider: http (%s)", cfg.SpeechEndpoint)
	case "mock":
		synth = speech.NewMockSynthesizer()
		log.Printf("speech provider: mock")
	case "off":
		log.Printf("speech provider: off")
	case "auto":
		if cfg.SpeechEndpoint != "" {
			synth, err = speech.NewHTTPSynthesizer(speech.HTTPConfig{
				Endpoint: cfg.SpeechEndpoint,
				APIKey:   cfg.SpeechAPIKey,
				Format:   cfg.SpeechFormat,
				Timeout:  cfg.SpeechTimeout,
			})
			if err != nil {
				log.Fatalf("speech provider init failed: %v", err)
			}
			log.Printf("speech provider: http (%s)", cfg.SpeechEndpoint)
		} else {
			log.Printf("speech provider: off (no SPEECH_ENDPOINT)")
		}
	}

	var analyzer vision.Analyzer
	if strings.EqualFold(cfg.VisionProvider, "heuristic") {
		analyzer = vision.NewHeuristicAnalyzer()
		log.Printf("vision provider: heuristic")
	} else {
		log.Printf("vision provider: off")
	}

	bank, err := code.NewBank()
	if err != nil {
		log.Fatalf("question bank init failed: %v", err)
	}

	engine := interview.NewEngine(
		store,
		question.NewProvider(brainClient),
		evaluate.New(brainClient),
		bank,
		code.NewAssessor(bank),
		synth,
		analyzer,
		metrics,
		interview.Options{
			MaxQuestions:       cfg.MaxQuestions,
			GateAfterQuestions: cfg.GateAfterQuestions,
			SpeechTimeout:      cfg.SpeechTimeout,
			VisionTimeout:      cfg.VisionTimeout,
		},
	)

	api := httpapi.New(cfg, engine, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	interview.StartJanitor(runCtx, store, cfg.SessionTTL, time.Minute, func(n int) {
		for i := 0; i < n; i++ {
			metrics.SessionEvents.WithLabelValues("expired").Inc()
		}
		if active, err := store.ActiveCount(runCtx); err == nil {
			metrics.ActiveSessions.Set(float64(active))
		}
	})

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
