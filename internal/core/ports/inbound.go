package ports

import (
	"context"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

// BatchRunner is the inbound contract for one closed batch run.
type BatchRunner interface {
	Run(ctx context.Context) (domain.BatchSummary, error)
}
