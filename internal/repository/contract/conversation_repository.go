package contract

import (
	"context"

	"empathiq-be/internal/entity"
	"empathiq-be/internal/repository/specification"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	Update(ctx context.Context, conversation *entity.Conversation) error
	// FindOne returns (nil, nil) when no row matches.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	// FindAllWithMessages preloads messages in chronological order.
	FindAllWithMessages(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
