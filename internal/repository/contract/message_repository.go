package contract

import (
	"context"

	"empathiq-be/internal/entity"
	"empathiq-be/internal/repository/specification"
)

// MessageRepository is append-only: messages are never updated, reordered or
// deleted once written.
type MessageRepository interface {
	CreateBulk(ctx context.Context, messages []*entity.Message) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
