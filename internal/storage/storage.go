package storage

import (
	"context"

	"stableScope/internal/model"
)

// Storage defines a sink for quote records.
type Storage interface {
	PutQuoteBatch(ctx context.Context, quotes []model.QuoteRecord) error
}

// ErrorSink receives quotes that failed.
type ErrorSink interface {
	PutErrorBatch(ctx context.Context, errs []model.QuoteError) error
}
