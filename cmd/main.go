package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"docsplit/api"
	"docsplit/config"
	"docsplit/file"
	"docsplit/pkg/chunking"
	processor "docsplit/process"

	"go.uber.org/zap"
)

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// Extraction
	// =========
	core := file.NewCore(
		file.NewPDFExtractor(logger),
		file.NewEPUBExtractor(logger, cfg.MaxEntryBytes),
		logger,
	)

	// =========
	// Chunking Client
	// =========
	chunkers, err := chunking.NewCache(cfg.SplitterCacheSize)
	if err != nil {
		logger.Fatal("failed to create chunker cache", zap.Error(err))
	}
	pipeline := processor.NewClient(core, chunkers, cfg.ChunkStrategy, logger)

	// =========
	// HTTP
	// =========
	server := api.NewServer(pipeline, api.Options{
		Port:             cfg.AppPort,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		DefaultChunkSize: cfg.DefaultChunkSize,
		DefaultOverlap:   cfg.DefaultOverlap,
		SniffContentType: cfg.SniffContentType,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("docsplit starting",
		zap.Int("port", cfg.AppPort),
		zap.String("chunk_strategy", cfg.ChunkStrategy),
		zap.Int("default_chunk_size", cfg.DefaultChunkSize),
		zap.Int("default_overlap", cfg.DefaultOverlap))

	// Run returns after in-flight uploads have drained.
	if err := server.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level
	return zcfg.Build()
}
