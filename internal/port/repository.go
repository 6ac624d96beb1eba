package port

import (
	"context"

	"github.com/google/uuid"

	"scanno/internal/domain"
)

// AnalysisRepository persists completed analysis records for history and
// export. The core pipeline never reads from it.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	List(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error)
}
