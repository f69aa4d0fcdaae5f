package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docask/internal/chunker"
	"docask/internal/common"
	"docask/internal/config"
	"docask/internal/embedding"
	"docask/internal/extract"
	"docask/internal/generation"
	"docask/internal/handlers"
	"docask/internal/ingest"
	"docask/internal/server"
	"docask/internal/service"
	"docask/internal/vectorindex"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docask/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		common.GetLogger().Fatal().Err(err).Msg("Failed to load config")
	}

	logger := common.InitLogger(cfg.Logging.Level, cfg.Logging.Output)

	// Assemble components
	emb, err := embedding.NewOpenAIProvider(embedding.Config{
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Dimension: cfg.Index.Dimension,
		BatchSize: cfg.Embedder.BatchSize,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Embedding provider init failed")
	}

	gen := generation.NewClaudeGenerator(generation.Config{
		APIKeyEnv: cfg.Generator.APIKeyEnv,
		Model:     cfg.Generator.Model,
		MaxTokens: cfg.Generator.MaxTokens,
		Timeout:   time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	}, logger)

	ch, err := chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid chunker configuration")
	}

	index, err := vectorindex.Open(cfg.Storage.IndexDir, cfg.Index.Dimension, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Vector index init failed")
	}

	pipeline := ingest.New(ch, emb, index, logger)
	retrieval := service.NewRetrievalEngine(emb, index, logger)
	assembler := service.NewContextAssembler(index)
	synthesizer := service.NewSynthesizer(retrieval, assembler, gen, service.Options{
		TopK:            cfg.Retrieval.TopK,
		MinScore:        cfg.Retrieval.MinScore,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
	}, logger)

	requestTimeout := time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second
	extractor := extract.New(logger)
	uploadHandler := handlers.NewUploadHandler(pipeline, extractor, cfg.Storage.UploadDir, requestTimeout, logger)
	askHandler := handlers.NewAskHandler(synthesizer, requestTimeout, logger)

	srv := server.New(cfg.Server.Host, cfg.Server.Port, uploadHandler, askHandler, logger)

	// Graceful shutdown on interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("Shutdown did not complete cleanly")
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server failed")
	}
}
