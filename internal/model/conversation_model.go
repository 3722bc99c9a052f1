package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	OverallSentiment string    `gorm:"type:varchar(20);not null;default:'neutral'"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
	// LastUpdated is touched explicitly by the service on persist, never by a
	// gorm hook.
	LastUpdated time.Time
	Messages    []Message `gorm:"foreignKey:ConversationId"`
}

func (Conversation) TableName() string {
	return "conversations"
}
