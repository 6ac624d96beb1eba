package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scanno/internal/domain"
	"scanno/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a PostgreSQL-backed analysis history store.
func NewAnalysisRepository(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, analysis *domain.Analysis) error {
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO analyses (
			id, file_name, document_kind, extraction_status, analysis_path,
			provider, model, status, risk_level, report, elapsed_ms,
			archive_bucket, archive_key, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID, analysis.FileName, analysis.DocumentKind, analysis.ExtractionStatus,
		analysis.AnalysisPath, analysis.Provider, analysis.Model, analysis.Status,
		analysis.RiskLevel, analysis.Report, analysis.ElapsedMS,
		analysis.ArchiveBucket, analysis.ArchiveKey, analysis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	var analysis domain.Analysis
	err := r.db.GetContext(ctx, &analysis, `SELECT * FROM analyses WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByID: %w", err)
	}
	return &analysis, nil
}

func (r *analysisRepo) List(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM analyses`); err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List: counting: %w", err)
	}

	analyses := []domain.Analysis{}
	err := r.db.SelectContext(ctx, &analyses,
		`SELECT * FROM analyses ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List: %w", err)
	}
	return analyses, total, nil
}
