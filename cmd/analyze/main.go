// Command analyze runs a single inspection document through the pipeline
// from the terminal and writes the report to output/car_condition_report.json.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"scanno/internal/analyzer"
	"scanno/internal/config"
	"scanno/internal/extractor"
	"scanno/internal/normalizer"
	"scanno/internal/service"

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
	var (
		filePath = flag.String("file", "", "path to the inspection document (pdf, jpg or png)")
		outDir   = flag.String("out", "output", "directory for the report file")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		return fmt.Errorf("missing required -file flag")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *filePath, err)
	}

	reportAnalyzer, err := analyzer.NewAnalyzer(&cfg.Analyzer.Primary)
	if err != nil {
		return err
	}
	policy := analyzer.RetryPolicy{
		MaxAttempts: cfg.Analyzer.MaxAttempts,
		MinWait:     cfg.Analyzer.MinBackoff,
		MaxWait:     cfg.Analyzer.MaxBackoff,
	}
	reportAnalyzer = analyzer.WithRetry(reportAnalyzer, policy)

	svc := service.NewAnalysisService(
		extractor.NewPDFExtractor(),
		reportAnalyzer,
		normalizer.New(),
		nil, // no history
		nil, // no archive
		"",
	)

	result, err := svc.Analyze(context.Background(), service.AnalyzeInput{
		Filename: filepath.Base(*filePath),
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	pretty, err := prettyJSON(result.Report)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outPath := filepath.Join(*outDir, "car_condition_report.json")
	if err := os.WriteFile(outPath, pretty, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Inspection report for %s\n", result.File)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(string(pretty))
	fmt.Printf("\nReport saved to %s\n", outPath)
	return nil
}

// prettyJSON re-encodes the report with indentation, keeping non-ASCII
// characters (Arabic text in particular) unescaped.
func prettyJSON(raw json.RawMessage) ([]byte, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
