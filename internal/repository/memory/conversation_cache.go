package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ConversationCache remembers each user's current conversation id so the
// default selection can skip the created_at lookup. A miss always falls back
// to the database query; the cache never decides correctness.
type ConversationCache struct {
	cache *cache.Cache
}

func NewConversationCache() *ConversationCache {
	// Default expiration of 1 hour, purge of expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationCache{
		cache: c,
	}
}

func (r *ConversationCache) Save(userId, conversationId uuid.UUID) {
	r.cache.Set(userId.String(), conversationId, cache.DefaultExpiration)
}

func (r *ConversationCache) Get(userId uuid.UUID) (uuid.UUID, bool) {
	if x, found := r.cache.Get(userId.String()); found {
		return x.(uuid.UUID), true
	}
	return uuid.Nil, false
}

func (r *ConversationCache) Delete(userId uuid.UUID) {
	r.cache.Delete(userId.String())
}
