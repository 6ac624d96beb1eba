package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"

	"scanno/internal/analyzer"
	"scanno/internal/config"
	"scanno/internal/extractor"
	"scanno/internal/handler"
	"scanno/internal/normalizer"
	"scanno/internal/port"
	"scanno/internal/repository/postgres"
	"scanno/internal/router"
	"scanno/internal/service"
	s3storage "scanno/internal/storage/s3"

	_ "scanno/internal/analyzer/claude"
	_ "scanno/internal/analyzer/gemini"
	_ "scanno/internal/analyzer/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	reportAnalyzer, err := buildAnalyzer(&cfg.Analyzer)
	if err != nil {
		return err
	}

	// Optional analysis history
	var db *sqlx.DB
	var history port.AnalysisRepository
	if cfg.DB.Enabled {
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		history = postgres.NewAnalysisRepository(db)
	}

	// Optional document archive
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	svc := service.NewAnalysisService(
		extractor.NewPDFExtractor(),
		reportAnalyzer,
		normalizer.New(),
		history,
		storage,
		cfg.S3.Bucket,
	)

	analyzeH := handler.NewAnalyzeHandler(svc, cfg.Limits.MaxFileSizeMB)
	historyH := handler.NewHistoryHandler(svc)
	healthH := handler.NewHealthHandler(db)

	r := router.New(cfg, analyzeH, historyH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildAnalyzer assembles the analyzer chain: provider(s), rate-limit
// fallback when a secondary is configured, then the retry policy on top.
func buildAnalyzer(cfg *config.AnalyzerConfig) (port.ReportAnalyzer, error) {
	primary, err := analyzer.NewAnalyzer(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to build primary analyzer: %w", err)
	}

	chain := primary
	if secondaryCfg := cfg.SecondaryConfig(); secondaryCfg != nil {
		secondary, err := analyzer.NewAnalyzer(secondaryCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build secondary analyzer: %w", err)
		}
		chain = analyzer.NewFallbackAnalyzer(
			[]port.ReportAnalyzer{primary, secondary},
			[]string{cfg.Primary.Provider, secondaryCfg.Provider},
		)
	}

	policy := analyzer.RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		MinWait:     cfg.MinBackoff,
		MaxWait:     cfg.MaxBackoff,
	}
	return analyzer.WithRetry(chain, policy), nil
}
