package repository

import (
	"context"

	"flight-price-tracker/internal/domain/entity"
)

// MessageLogRepository defines the interface for the per-message audit trail
type MessageLogRepository interface {
	Save(ctx context.Context, log *entity.MessageLog) error
	// FindByMessageID returns nil without error when the message was never logged
	FindByMessageID(ctx context.Context, messageID string) (*entity.MessageLog, error)
	CountByStatus(ctx context.Context, runID string) (map[string]int64, error)
}
