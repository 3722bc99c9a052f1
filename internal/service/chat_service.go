package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"empathiq-be/internal/constant"
	"empathiq-be/internal/dto"
	"empathiq-be/internal/entity"
	"empathiq-be/internal/pkg/logger"
	"empathiq-be/internal/repository/memory"
	"empathiq-be/internal/repository/specification"
	"empathiq-be/internal/repository/unitofwork"
	"empathiq-be/pkg/llm"
	"empathiq-be/pkg/sentiment"

	"github.com/google/uuid"
)

// IChatService defines the chat service interface
type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationDTO, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   llm.LLMProvider
	classifier *sentiment.Classifier
	convCache  *memory.ConversationCache
	log        logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	classifier *sentiment.Classifier,
	convCache *memory.ConversationCache,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		provider:   provider,
		classifier: classifier,
		convCache:  convCache,
		log:        log,
	}
}

// SendChat runs one chat turn: classify the user message, generate a reply
// under the last-5-messages context, classify the reply, recompute the rolling
// overall sentiment and persist. Reply generation failures degrade to the
// fixed fallback text; store failures propagate to the error middleware.
func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, isNew, err := cs.selectConversation(ctx, uow, userId, request.ConversationId)
	if err != nil {
		return nil, err
	}

	userSentiment := cs.classifier.Classify(ctx, request.Message)
	cs.log.Info("chat", "Classified user message", map[string]interface{}{
		"conversation_id": conversation.Id,
		"label":           userSentiment.Label,
	})

	userMessage := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Content:        request.Message,
		Sender:         constant.MessageSenderUser,
		Sentiment:      &userSentiment,
		CreatedAt:      time.Now(),
	}
	conversation.Messages = append(conversation.Messages, userMessage)

	botContent, botSentiment := cs.generateReply(ctx, request.Message, userSentiment, conversation.Messages)

	botMessage := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Content:        botContent,
		Sender:         constant.MessageSenderBot,
		Sentiment:      &botSentiment,
		CreatedAt:      time.Now(),
	}
	conversation.Messages = append(conversation.Messages, botMessage)

	conversation.OverallSentiment = OverallSentiment(conversation.Messages)
	conversation.LastUpdated = time.Now() // explicit touch, no save hook

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if isNew {
		if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
			return nil, err
		}
	} else {
		if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
			return nil, err
		}
	}
	if err := uow.MessageRepository().CreateBulk(ctx, []*entity.Message{userMessage, botMessage}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.convCache.Save(userId, conversation.Id)

	return &dto.SendChatResponse{
		Chat:        conversationToDTO(conversation),
		BotResponse: botContent,
	}, nil
}

// GetHistory returns the user's 10 most recently created conversations,
// newest first, messages in chronological order.
func (cs *chatService) GetHistory(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationDTO, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAllWithMessages(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{Limit: constant.HistoryListLimit},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.ConversationDTO, 0, len(conversations))
	for _, c := range conversations {
		resp = append(resp, conversationToDTO(c))
	}
	return resp, nil
}

// selectConversation resolves the conversation this turn runs against: the
// explicitly requested one (ownership-checked), else the user's most recently
// created one, else a fresh in-memory conversation persisted on commit.
func (cs *chatService) selectConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, explicitId *uuid.UUID) (*entity.Conversation, bool, error) {
	repo := uow.ConversationRepository()

	if explicitId != nil {
		conversation, err := repo.FindOne(ctx,
			specification.ByID{ID: *explicitId},
			specification.OwnedByUser{UserID: userId},
		)
		if err != nil {
			return nil, false, err
		}
		if conversation == nil {
			return nil, false, fmt.Errorf("conversation not found or access denied")
		}
		return cs.withMessages(ctx, uow, conversation)
	}

	// Fast path: cached current conversation id. Miss or stale falls through
	// to the created_at lookup.
	if cachedId, ok := cs.convCache.Get(userId); ok {
		conversation, err := repo.FindOne(ctx,
			specification.ByID{ID: cachedId},
			specification.OwnedByUser{UserID: userId},
		)
		if err != nil {
			return nil, false, err
		}
		if conversation != nil {
			return cs.withMessages(ctx, uow, conversation)
		}
		cs.convCache.Delete(userId)
	}

	conversation, err := repo.FindOne(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, false, err
	}
	if conversation != nil {
		return cs.withMessages(ctx, uow, conversation)
	}

	now := time.Now()
	return &entity.Conversation{
		Id:               uuid.New(),
		UserId:           userId,
		OverallSentiment: constant.SentimentNeutral,
		CreatedAt:        now,
		LastUpdated:      now,
	}, true, nil
}

func (cs *chatService) withMessages(ctx context.Context, uow unitofwork.UnitOfWork, conversation *entity.Conversation) (*entity.Conversation, bool, error) {
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, false, err
	}
	conversation.Messages = messages
	return conversation, false, nil
}

// generateReply calls the provider under the persona prompt. On any failure
// the fixed fallback text is returned with neutral sentiment; an invalid
// credential is logged distinctly but takes the same fallback path.
func (cs *chatService) generateReply(ctx context.Context, message string, userSentiment sentiment.Sentiment, messages []*entity.Message) (string, sentiment.Sentiment) {
	tail := HistoryTail(messages)
	prompt := BuildChatPrompt(message, userSentiment.Label, tail)

	botContent, err := cs.provider.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrInvalidCredential) {
			cs.log.Error("chat", "Reply generation rejected: invalid provider credential", map[string]interface{}{
				"error": err.Error(),
				"hint":  "check GEMINI_API_KEY",
			})
		} else {
			cs.log.Error("chat", "Reply generation failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return constant.FallbackBotResponse, sentiment.Neutral()
	}

	return botContent, cs.classifier.Classify(ctx, botContent)
}

// HistoryTail returns the most recent 5 messages: the prompt context window
// and the sentiment-averaging window.
func HistoryTail(messages []*entity.Message) []*entity.Message {
	if len(messages) <= constant.HistoryTailSize {
		return messages
	}
	return messages[len(messages)-constant.HistoryTailSize:]
}

// BuildChatPrompt embeds the detected sentiment and the serialized history
// tail into the persona prompt.
func BuildChatPrompt(message, sentimentLabel string, tail []*entity.Message) string {
	lines := make([]string, 0, len(tail))
	for _, msg := range tail {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Sender, msg.Content))
	}
	return fmt.Sprintf(constant.ChatSystemPromptTemplate,
		sentimentLabel,
		sentimentLabel,
		strings.Join(lines, "\n"),
		message,
	)
}

// OverallSentiment averages the scores of the last 5 messages (missing
// sentiment counts as 0): >0.3 positive, <-0.3 negative, else neutral.
func OverallSentiment(messages []*entity.Message) string {
	tail := HistoryTail(messages)
	if len(tail) == 0 {
		return constant.SentimentNeutral
	}

	var sum float64
	for _, msg := range tail {
		if msg.Sentiment != nil {
			sum += msg.Sentiment.Score
		}
	}
	avg := sum / float64(len(tail))

	switch {
	case avg > 0.3:
		return constant.SentimentPositive
	case avg < -0.3:
		return constant.SentimentNegative
	default:
		return constant.SentimentNeutral
	}
}

func conversationToDTO(c *entity.Conversation) *dto.ConversationDTO {
	messages := make([]*dto.MessageDTO, 0, len(c.Messages))
	for _, msg := range c.Messages {
		var s *dto.SentimentDTO
		if msg.Sentiment != nil {
			s = &dto.SentimentDTO{Score: msg.Sentiment.Score, Label: msg.Sentiment.Label}
		}
		messages = append(messages, &dto.MessageDTO{
			Id:        msg.Id,
			Content:   msg.Content,
			Sender:    msg.Sender,
			Sentiment: s,
			Timestamp: msg.CreatedAt,
		})
	}

	return &dto.ConversationDTO{
		Id:               c.Id,
		UserId:           c.UserId,
		Messages:         messages,
		OverallSentiment: c.OverallSentiment,
		CreatedAt:        c.CreatedAt,
		LastUpdated:      c.LastUpdated,
	}
}
