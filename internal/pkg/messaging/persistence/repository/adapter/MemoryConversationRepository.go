package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
)

// MemoryConversationRepository is a concurrency-safe in-memory
// implementation of the conversation store, used in tests and local
// development without Postgres.
type MemoryConversationRepository struct {
	mu       sync.RWMutex
	byID     map[string]*messaging.Conversation
	byPair   map[[2]string]string // normalized pair -> conversation id
	messages map[string][]messaging.Message
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{
		byID:     make(map[string]*messaging.Conversation),
		byPair:   make(map[[2]string]string),
		messages: make(map[string][]messaging.Message),
	}
}

var _ repository.ConversationRepository = (*MemoryConversationRepository)(nil)

func (r *MemoryConversationRepository) FindOrCreate(ctx context.Context, userA, userB string) (messaging.Conversation, error) {
	a, b := messaging.NormalizePair(userA, userB)
	key := [2]string{a, b}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byPair[key]; ok {
		return *r.byID[id], nil
	}

	now := time.Now().UTC()
	c := &messaging.Conversation{
		ID:           uuid.NewString(),
		ParticipantA: a,
		ParticipantB: b,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[c.ID] = c
	r.byPair[key] = c.ID
	return *c, nil
}

func (r *MemoryConversationRepository) FindByID(ctx context.Context, id string) (messaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return messaging.Conversation{}, repository.ErrNotFound
	}
	return *c, nil
}

func (r *MemoryConversationRepository) FindByPair(ctx context.Context, userA, userB string) (messaging.Conversation, error) {
	a, b := messaging.NormalizePair(userA, userB)

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[[2]string{a, b}]
	if !ok {
		return messaging.Conversation{}, repository.ErrNotFound
	}
	return *r.byID[id], nil
}

func (r *MemoryConversationRepository) AppendMessage(ctx context.Context, conversationID string, msg messaging.Message) (messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[conversationID]
	if !ok {
		return messaging.Message{}, repository.ErrNotFound
	}

	msg.ID = uuid.NewString()
	msg.ConversationID = conversationID
	msg.Seq = int64(len(r.messages[conversationID])) + 1
	r.messages[conversationID] = append(r.messages[conversationID], msg)

	c.LastMessageText = msg.Text
	c.LastMessageTime = msg.CreatedAt
	c.UpdatedAt = msg.CreatedAt
	return msg, nil
}

func (r *MemoryConversationRepository) PageMessages(ctx context.Context, conversationID string, limit, page int) ([]messaging.Message, error) {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.messages[conversationID]
	end := len(log) - (page-1)*limit
	if end <= 0 {
		return nil, nil
	}
	start := end - limit
	if start < 0 {
		start = 0
	}

	out := make([]messaging.Message, end-start)
	copy(out, log[start:end])
	return out, nil
}

func (r *MemoryConversationRepository) CountBySender(ctx context.Context, conversationID, senderID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, m := range r.messages[conversationID] {
		if m.SenderID == senderID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryConversationRepository) ListForUser(ctx context.Context, userID string) ([]messaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var convs []messaging.Conversation
	for _, c := range r.byID {
		if c.HasParticipant(userID) {
			convs = append(convs, *c)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}
