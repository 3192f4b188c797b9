package integration

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Evaluator computes calculations over fields of external records
type Evaluator struct {
	fetcher *Fetcher
	logger  *zap.Logger
}

// NewEvaluator creates a calculation evaluator
func NewEvaluator(fetcher *Fetcher, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{fetcher: fetcher, logger: logger}
}

// Evaluate folds the calculation left to right with every term fetched from
// the given integration source. Missing or non-numeric term values count as 0.
// An empty source yields 0 without fetching.
func (e *Evaluator) Evaluate(ctx context.Context, calc integration.Calculation, integrationSourceID string) decimal.Decimal {
	if integrationSourceID == "" || len(calc) == 0 {
		return decimal.Zero
	}

	values := make([]decimal.Decimal, len(calc))
	for i, part := range calc {
		values[i] = e.termValue(ctx, part, integrationSourceID)
	}
	return calc.Fold(values)
}

func (e *Evaluator) termValue(ctx context.Context, part integration.CalculationPart, sourceID string) decimal.Decimal {
	entityType := part.Reference.EntityType
	if entityType == "" {
		entityType = integration.EntityTypeProduct
	}
	key := integration.RecordKey{
		SourceID:   sourceID,
		EntityType: entityType,
		MappingID:  part.Reference.MappingID,
	}

	v, ok := e.fetcher.FetchField(ctx, key, part.FieldPath)
	if !ok {
		e.logger.Debug("Calculation term unavailable, using 0",
			logger.RecordKey(key),
			zap.String("field_path", part.FieldPath),
		)
		return decimal.Zero
	}
	d, ok := v.AsDecimal()
	if !ok {
		e.logger.Debug("Calculation term is not numeric, using 0",
			logger.RecordKey(key),
			zap.String("field_path", part.FieldPath),
			zap.String("value", v.String()),
		)
		return decimal.Zero
	}
	return d
}
