package entity

import (
	"time"

	"empathiq-be/pkg/sentiment"

	"github.com/google/uuid"
)

// Conversation is the append-only record of one user's message history with a
// derived overall sentiment. Conversations are never deleted by this system.
type Conversation struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	Messages         []*Message
	OverallSentiment string
	CreatedAt        time.Time
	LastUpdated      time.Time
}

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Content        string
	Sender         string
	Sentiment      *sentiment.Sentiment
	CreatedAt      time.Time
}
