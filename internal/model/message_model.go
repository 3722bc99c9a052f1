package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Message struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content        string         `gorm:"type:text;not null"`
	Sender         string         `gorm:"type:varchar(10);not null"` // "user" | "bot"
	Sentiment      datatypes.JSON `gorm:"type:jsonb"`                // {"score": n, "label": "..."}
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}
