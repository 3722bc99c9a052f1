package dto

import (
	"time"

	"github.com/google/uuid"
)

// Wire format follows the existing EmpathIQ web client, hence camelCase keys.

type SendChatRequest struct {
	Message string `json:"message" validate:"required"`
	// ConversationId pins the turn to an explicit conversation. When omitted
	// the most recently created conversation is used (or a new one created).
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
}

type SentimentDTO struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

type MessageDTO struct {
	Id        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	Sender    string        `json:"sender"`
	Sentiment *SentimentDTO `json:"sentiment,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

type ConversationDTO struct {
	Id               uuid.UUID     `json:"id"`
	UserId           uuid.UUID     `json:"userId"`
	Messages         []*MessageDTO `json:"messages"`
	OverallSentiment string        `json:"overallSentiment"`
	CreatedAt        time.Time     `json:"createdAt"`
	LastUpdated      time.Time     `json:"lastUpdated"`
}

type SendChatResponse struct {
	Chat        *ConversationDTO `json:"chat"`
	BotResponse string           `json:"botResponse"`
}
