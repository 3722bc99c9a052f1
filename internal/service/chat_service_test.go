package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"empathiq-be/internal/constant"
	"empathiq-be/internal/dto"
	"empathiq-be/internal/entity"
	"empathiq-be/internal/repository/contract"
	"empathiq-be/internal/repository/memory"
	"empathiq-be/internal/repository/specification"
	"empathiq-be/internal/repository/unitofwork"
	"empathiq-be/pkg/llm"
	"empathiq-be/pkg/sentiment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

// scriptedProvider dispatches on the prompt shape: sentiment prompts answer
// with sentimentReply, everything else is a chat turn.
type scriptedProvider struct {
	sentimentReply string
	chatReply      string
	chatErr        error
	chatPrompts    []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	if strings.HasPrefix(prompt, "Analyze the sentiment") {
		return p.sentimentReply, nil
	}
	p.chatPrompts = append(p.chatPrompts, prompt)
	if p.chatErr != nil {
		return "", p.chatErr
	}
	return p.chatReply, nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeStore holds conversations and messages in memory and interprets the
// specification values the service actually uses.
type fakeStore struct {
	conversations []*entity.Conversation
	messages      []*entity.Message
	creates       int
	commits       int
}

type convFilter struct {
	byID  *uuid.UUID
	owner *uuid.UUID
	desc  bool
	limit int
}

func parseConvSpecs(specs []specification.Specification) convFilter {
	var f convFilter
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			id := v.ID
			f.byID = &id
		case specification.OwnedByUser:
			id := v.UserID
			f.owner = &id
		case specification.OrderBy:
			f.desc = v.Desc
		case specification.Limit:
			f.limit = v.Limit
		}
	}
	return f
}

func (s *fakeStore) filterConversations(specs []specification.Specification) []*entity.Conversation {
	f := parseConvSpecs(specs)
	var out []*entity.Conversation
	for _, c := range s.conversations {
		if f.byID != nil && c.Id != *f.byID {
			continue
		}
		if f.owner != nil && c.UserId != *f.owner {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.limit > 0 && len(out) > f.limit {
		out = out[:f.limit]
	}
	return out
}

type fakeConversationRepo struct{ store *fakeStore }

func (r *fakeConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	r.store.creates++
	saved := *c
	saved.Messages = nil
	r.store.conversations = append(r.store.conversations, &saved)
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	for _, existing := range r.store.conversations {
		if existing.Id == c.Id {
			existing.OverallSentiment = c.OverallSentiment
			existing.LastUpdated = c.LastUpdated
			return nil
		}
	}
	return fmt.Errorf("conversation %s not found", c.Id)
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	matches := r.store.filterConversations(specs)
	if len(matches) == 0 {
		return nil, nil
	}
	found := *matches[0]
	found.Messages = nil
	return &found, nil
}

func (r *fakeConversationRepo) FindAllWithMessages(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	matches := r.store.filterConversations(specs)
	out := make([]*entity.Conversation, 0, len(matches))
	for _, c := range matches {
		loaded := *c
		loaded.Messages = r.store.messagesFor(c.Id)
		out = append(out, &loaded)
	}
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.filterConversations(specs))), nil
}

func (s *fakeStore) messagesFor(conversationId uuid.UUID) []*entity.Message {
	var out []*entity.Message
	for _, m := range s.messages {
		if m.ConversationId == conversationId {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) CreateBulk(ctx context.Context, messages []*entity.Message) error {
	r.store.messages = append(r.store.messages, messages...)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	for _, s := range specs {
		if v, ok := s.(specification.ByConversationID); ok {
			return r.store.messagesFor(v.ConversationID), nil
		}
	}
	return r.store.messages, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	msgs, _ := r.FindAll(ctx, specs...)
	return int64(len(msgs)), nil
}

type fakeUow struct {
	store *fakeStore
	inTx  bool
}

func (u *fakeUow) Begin(ctx context.Context) error { u.inTx = true; return nil }
func (u *fakeUow) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.inTx = false
	u.store.commits++
	return nil
}
func (u *fakeUow) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.inTx = false
	return nil
}
func (u *fakeUow) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{store: u.store}
}
func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

type fakeUowFactory struct{ store *fakeStore }

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

func newTestService(provider llm.LLMProvider) (IChatService, *fakeStore) {
	store := &fakeStore{}
	classifier := sentiment.NewClassifier(provider, nopLogger{})
	svc := NewChatService(&fakeUowFactory{store: store}, provider, classifier, memory.NewConversationCache(), nopLogger{})
	return svc, store
}

// --- Turn flow ---

func TestSendChatNewUser(t *testing.T) {
	provider := &scriptedProvider{sentimentReply: "positive", chatReply: "## Glad to hear it!\nThat is wonderful."}
	svc, store := newTestService(provider)
	userId := uuid.New()

	res, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "I am so happy today"})
	require.NoError(t, err)

	require.Len(t, res.Chat.Messages, 2)
	assert.Equal(t, constant.MessageSenderUser, res.Chat.Messages[0].Sender)
	require.NotNil(t, res.Chat.Messages[0].Sentiment)
	assert.Equal(t, "positive", res.Chat.Messages[0].Sentiment.Label)
	assert.Equal(t, constant.MessageSenderBot, res.Chat.Messages[1].Sender)
	assert.NotEmpty(t, res.Chat.Messages[1].Content)
	assert.Equal(t, res.Chat.Messages[1].Content, res.BotResponse)

	// Both user and bot scored +1, average 1 > 0.3
	assert.Equal(t, constant.SentimentPositive, res.Chat.OverallSentiment)

	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 1, store.commits)
	assert.Len(t, store.messages, 2)
}

func TestSendChatReusesCurrentConversation(t *testing.T) {
	provider := &scriptedProvider{sentimentReply: "neutral", chatReply: "Sure."}
	svc, store := newTestService(provider)
	userId := uuid.New()

	_, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "first"})
	require.NoError(t, err)
	res, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "second"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.creates, "second turn must not create a duplicate conversation")
	assert.Len(t, store.messages, 4)
	assert.Len(t, res.Chat.Messages, 4)
}

func TestSendChatFallbackOnGenerationFailure(t *testing.T) {
	provider := &scriptedProvider{sentimentReply: "negative", chatErr: errors.New("provider unavailable")}
	svc, store := newTestService(provider)
	userId := uuid.New()

	res, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "this is terrible"})
	require.NoError(t, err, "generation failure must not fail the turn")

	assert.Equal(t, constant.FallbackBotResponse, res.BotResponse)
	require.Len(t, res.Chat.Messages, 2)
	bot := res.Chat.Messages[1]
	assert.Equal(t, constant.FallbackBotResponse, bot.Content)
	require.NotNil(t, bot.Sentiment)
	assert.Equal(t, constant.SentimentNeutral, bot.Sentiment.Label)
	assert.Equal(t, float64(0), bot.Sentiment.Score)

	// The fallback turn is persisted like a real one
	assert.Equal(t, 1, store.commits)
	assert.Len(t, store.messages, 2)
}

func TestSendChatInvalidCredentialTakesFallbackPath(t *testing.T) {
	provider := &scriptedProvider{sentimentReply: "neutral", chatErr: fmt.Errorf("%w: key rejected", llm.ErrInvalidCredential)}
	svc, _ := newTestService(provider)

	res, err := svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, constant.FallbackBotResponse, res.BotResponse)
}

func TestSendChatExplicitConversationId(t *testing.T) {
	provider := &scriptedProvider{sentimentReply: "neutral", chatReply: "Okay."}
	svc, store := newTestService(provider)
	userId := uuid.New()

	first, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "start"})
	require.NoError(t, err)

	// A later conversation exists, but the explicit id wins
	store.conversations = append(store.conversations, &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		CreatedAt: time.Now().Add(time.Hour),
	})

	convId := first.Chat.Id
	res, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: "continue", ConversationId: &convId})
	require.NoError(t, err)
	assert.Equal(t, convId, res.Chat.Id)
	assert.Len(t, res.Chat.Messages, 4)
}

func TestSendChatExplicitConversationIdOtherUser(t *testing.T) {
	provider := &scriptedProvider{sentimentReply: "neutral", chatReply: "Okay."}
	svc, _ := newTestService(provider)

	owner := uuid.New()
	first, err := svc.SendChat(context.Background(), owner, &dto.SendChatRequest{Message: "mine"})
	require.NoError(t, err)

	convId := first.Chat.Id
	_, err = svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{Message: "not mine", ConversationId: &convId})
	assert.Error(t, err)
}

// --- History ---

func TestGetHistoryLimitAndOrder(t *testing.T) {
	provider := &scriptedProvider{sentimentReply: "neutral", chatReply: "Okay."}
	svc, store := newTestService(provider)
	userId := uuid.New()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		store.conversations = append(store.conversations, &entity.Conversation{
			Id:               uuid.New(),
			UserId:           userId,
			OverallSentiment: constant.SentimentNeutral,
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		})
	}
	// Another user's conversation must not leak in
	store.conversations = append(store.conversations, &entity.Conversation{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		CreatedAt: time.Now(),
	})

	res, err := svc.GetHistory(context.Background(), userId)
	require.NoError(t, err)

	require.Len(t, res, 10)
	for i := 1; i < len(res); i++ {
		assert.True(t, !res[i-1].CreatedAt.Before(res[i].CreatedAt), "history must be newest first")
	}
	for _, c := range res {
		assert.Equal(t, userId, c.UserId)
	}
}

// --- Pure functions ---

func TestOverallSentiment(t *testing.T) {
	msg := func(score float64) *entity.Message {
		return &entity.Message{Sentiment: &sentiment.Sentiment{Score: score}}
	}

	tests := []struct {
		name     string
		messages []*entity.Message
		want     string
	}{
		{"all positive", []*entity.Message{msg(1), msg(1), msg(1), msg(1), msg(1)}, constant.SentimentPositive},
		{"all zero", []*entity.Message{msg(0), msg(0), msg(0), msg(0), msg(0)}, constant.SentimentNeutral},
		{"average -0.4", []*entity.Message{msg(-1), msg(-1), msg(0), msg(0), msg(0)}, constant.SentimentNegative},
		{"missing sentiment counts as zero", []*entity.Message{{}, {}, {}, {}, msg(1)}, constant.SentimentNeutral},
		{"empty", nil, constant.SentimentNeutral},
		{"only last five count", []*entity.Message{
			msg(-1), msg(-1), msg(-1), msg(-1), msg(-1),
			msg(1), msg(1), msg(1), msg(1), msg(1),
		}, constant.SentimentPositive},
		{"boundary 0.2 stays neutral", []*entity.Message{msg(1), msg(0), msg(0), msg(0), msg(0)}, constant.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallSentiment(tt.messages))
		})
	}
}

func TestHistoryTail(t *testing.T) {
	var messages []*entity.Message
	for i := 0; i < 8; i++ {
		messages = append(messages, &entity.Message{Content: fmt.Sprintf("m%d", i)})
	}

	tail := HistoryTail(messages)
	require.Len(t, tail, 5)
	assert.Equal(t, "m3", tail[0].Content)
	assert.Equal(t, "m7", tail[4].Content)

	short := messages[:3]
	assert.Len(t, HistoryTail(short), 3)
}

func TestBuildChatPrompt(t *testing.T) {
	tail := []*entity.Message{
		{Sender: constant.MessageSenderUser, Content: "hi"},
		{Sender: constant.MessageSenderBot, Content: "hello"},
	}

	prompt := BuildChatPrompt("how are you", "positive", tail)

	assert.Contains(t, prompt, "You are EmpathIQ")
	assert.Contains(t, prompt, "emotional state (positive)")
	assert.Contains(t, prompt, "user: hi\nbot: hello")
	assert.Contains(t, prompt, "User message: how are you")
}

func TestChatPromptCarriesHistoryTail(t *testing.T) {
	provider := &scriptedProvider{sentimentReply: "neutral", chatReply: "Okay."}
	svc, _ := newTestService(provider)
	userId := uuid.New()

	for _, m := range []string{"one", "two", "three", "four"} {
		_, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Message: m})
		require.NoError(t, err)
	}

	require.Len(t, provider.chatPrompts, 4)
	// At turn four the window holds the last 5 of 7 messages, so the first
	// turn's user message has dropped out.
	last := provider.chatPrompts[3]
	assert.Contains(t, last, "user: four")
	assert.Contains(t, last, "user: two")
	assert.NotContains(t, last, "user: one")
}
