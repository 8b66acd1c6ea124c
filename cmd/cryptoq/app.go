package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"crypto-query-lab/internal/aggregator"
	"crypto-query-lab/internal/config"
	"crypto-query-lab/internal/engine"
	"crypto-query-lab/internal/intent"
	"crypto-query-lab/internal/llm"
	"crypto-query-lab/internal/logging"
	"crypto-query-lab/internal/observability"
	"crypto-query-lab/internal/orchestrator"
	"crypto-query-lab/internal/registry"
	"crypto-query-lab/internal/synthesis"
	"crypto-query-lab/internal/synthetic"
)

// app holds the wired components of one process.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	engine *engine.Engine
	close  func() error
}

// newApp loads configuration and wires the engine.
func newApp(ctx context.Context, override func(*config.Config)) (*app, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	events := observability.Multi{
		observability.NewLogSink(logger),
		observability.NewMetricsSink(nil),
	}

	var model llm.Client
	einoClient, err := llm.NewOpenAI(ctx, cfg.LLM)
	if err != nil {
		logger.WithError(err).Warn("language model unavailable, using rule-based intents and template answers")
	} else if einoClient != nil {
		model = einoClient
	}
	logger.WithFields(logrus.Fields{
		"llm_enabled": model != nil,
		"llm_model":   cfg.LLM.Model,
	}).Info("query engine configured")

	agg := aggregator.New(aggregator.Options{
		Generator: synthetic.New(synthetic.Options{Seed: cfg.Synthetic.Seed}),
		Events:    events,
	})

	eng := engine.New(engine.Options{
		Resolver: intent.NewResolver(model, events),
		Orchestrator: orchestrator.New(orchestrator.Options{
			Chains:     registry.New(cfg.Providers),
			Aggregator: agg,
			Limits:     cfg.Limits,
			Events:     events,
		}),
		Synthesizer: synthesis.New(synthesis.Options{Model: model, Events: events}),
		Events:      events,
		Timeout:     cfg.Server.QueryTimeout,
	})

	return &app{cfg: cfg, logger: logger, engine: eng, close: closeLog}, nil
}
