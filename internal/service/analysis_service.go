package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"scanno/internal/analyzer"
	"scanno/internal/classifier"
	"scanno/internal/domain"
	"scanno/internal/normalizer"
	"scanno/internal/port"
)

// AnalyzeInput carries one uploaded document into the pipeline.
type AnalyzeInput struct {
	Filename string
	Data     []byte
}

// AnalysisResult is the per-file outcome. Report holds either a validated
// inspection report or the invalid-JSON fallback object, already encoded.
type AnalysisResult struct {
	ID     uuid.UUID       `json:"-"`
	File   string          `json:"file"`
	Report json.RawMessage `json:"report"`
}

// AnalysisService runs documents through classification, extraction,
// model analysis and normalization, optionally archiving and recording
// each run.
type AnalysisService interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	ListAnalyses(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error)
}

type analysisService struct {
	extractor  port.TextExtractor
	analyzer   port.ReportAnalyzer
	normalizer *normalizer.Normalizer
	history    port.AnalysisRepository
	storage    port.ObjectStorage
	bucket     string
}

// NewAnalysisService wires the pipeline. history and storage may be nil;
// the pipeline then runs without persistence or archival.
func NewAnalysisService(
	extractor port.TextExtractor,
	reportAnalyzer port.ReportAnalyzer,
	norm *normalizer.Normalizer,
	history port.AnalysisRepository,
	storage port.ObjectStorage,
	bucket string,
) AnalysisService {
	return &analysisService{
		extractor:  extractor,
		analyzer:   reportAnalyzer,
		normalizer: norm,
		history:    history,
		storage:    storage,
		bucket:     bucket,
	}
}

func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error) {
	filename := strings.ToLower(input.Filename)

	kind := classifier.Classify(filename, input.Data)
	if kind == domain.KindUnsupported {
		return nil, domain.ErrUnsupportedDocument
	}

	doc := domain.UploadedDocument{Filename: filename, Kind: kind, Data: input.Data}

	var extraction *domain.ExtractionResult
	if kind == domain.KindPDF {
		result := s.extractor.Extract(input.Data)
		extraction = &result
		switch result.Status {
		case domain.ExtractionText:
			log.Printf("analysisService.Analyze: extracted %d chars of text from %s", len(result.Content), filename)
		case domain.ExtractionEmpty:
			log.Printf("analysisService.Analyze: no text layer in %s, falling back to vision", filename)
		case domain.ExtractionFailed:
			log.Printf("analysisService.Analyze: extraction failed for %s (%s), falling back to vision", filename, result.Reason)
		}
	}

	req, err := analyzer.BuildRequest(doc, extraction)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := s.analyzer.Analyze(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("analysisService.Analyze: analysis of %s failed after %s: %v", filename, elapsed, err)
		return nil, err
	}
	log.Printf("analysisService.Analyze: %s analyzed via %s path by %s/%s in %s",
		filename, req.Path, reply.Provider, reply.Model, elapsed)

	outcome := s.normalizer.Normalize(reply.Text)
	if !outcome.Valid() {
		log.Printf("analysisService.Analyze: malformed reply for %s: %s", filename, outcome.Malformed.Diagnostic)
	}

	reportBody, err := outcome.ReportBody()
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	record := domain.Analysis{
		ID:           id,
		FileName:     filename,
		DocumentKind: kind,
		AnalysisPath: req.Path,
		Provider:     reply.Provider,
		Model:        reply.Model,
		Report:       reportBody,
		ElapsedMS:    elapsed.Milliseconds(),
	}
	if extraction != nil {
		record.ExtractionStatus = string(extraction.Status)
	}
	if outcome.Valid() {
		record.Status = domain.StatusValid
		risk := outcome.Report.RiskLevel
		record.RiskLevel = &risk
	} else {
		record.Status = domain.StatusMalformed
	}

	s.archive(ctx, &record, doc)

	if s.history != nil {
		if err := s.history.Create(ctx, &record); err != nil {
			log.Printf("analysisService.Analyze: recording analysis %s failed: %v", id, err)
		}
	}

	return &AnalysisResult{ID: id, File: filename, Report: reportBody}, nil
}

// archive uploads the original document next to its analysis record.
// Failures are logged and swallowed; archival never blocks a result.
func (s *analysisService) archive(ctx context.Context, record *domain.Analysis, doc domain.UploadedDocument) {
	if s.storage == nil {
		return
	}
	key := "analyses/" + record.ID.String() + "/" + doc.Filename
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(doc.Data),
		ContentType: doc.Kind.ContentType(),
	})
	if err != nil {
		log.Printf("analysisService.archive: uploading %s failed: %v", key, err)
		return
	}
	record.ArchiveBucket = s.bucket
	record.ArchiveKey = key
}

func (s *analysisService) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	if s.history == nil {
		return nil, domain.ErrNotFound
	}
	return s.history.GetByID(ctx, id)
}

func (s *analysisService) ListAnalyses(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error) {
	if s.history == nil {
		return []domain.Analysis{}, 0, nil
	}
	return s.history.List(ctx, offset, limit)
}
