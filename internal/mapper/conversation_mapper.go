package mapper

import (
	"encoding/json"

	"empathiq-be/internal/entity"
	"empathiq-be/internal/model"
	"empathiq-be/pkg/sentiment"

	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Conversation Mappers

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	messages := make([]*entity.Message, len(c.Messages))
	for i := range c.Messages {
		messages[i] = m.MessageToEntity(&c.Messages[i])
	}

	return &entity.Conversation{
		Id:               c.Id,
		UserId:           c.UserId,
		Messages:         messages,
		OverallSentiment: c.OverallSentiment,
		CreatedAt:        c.CreatedAt,
		LastUpdated:      c.LastUpdated,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	// Messages are persisted through the message repository, not through the
	// conversation association.
	return &model.Conversation{
		Id:               c.Id,
		UserId:           c.UserId,
		OverallSentiment: c.OverallSentiment,
		CreatedAt:        c.CreatedAt,
		LastUpdated:      c.LastUpdated,
	}
}

// Message Mappers

func (m *ConversationMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var sent *sentiment.Sentiment
	if len(msg.Sentiment) > 0 {
		var s sentiment.Sentiment
		if err := json.Unmarshal(msg.Sentiment, &s); err == nil && s.Label != "" {
			sent = &s
		}
	}

	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Content:        msg.Content,
		Sender:         msg.Sender,
		Sentiment:      sent,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var sent datatypes.JSON
	if msg.Sentiment != nil {
		if raw, err := json.Marshal(msg.Sentiment); err == nil {
			sent = raw
		}
	}

	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Content:        msg.Content,
		Sender:         msg.Sender,
		Sentiment:      sent,
		CreatedAt:      msg.CreatedAt,
	}
}
