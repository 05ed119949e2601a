package usecase

import (
	"context"
	"fmt"

	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
)

// GetMessagesInput selects a page of a conversation's log for the given
// reader. The thread is named either directly (ConversationID) or by the
// peer user (PeerID, the REST route's shape). Page 1 is the most recent
// window; higher pages walk backward in time. Defaults: limit 20, page 1.
type GetMessagesInput struct {
	ConversationID string
	PeerID         string
	UserID         string
	Limit          int
	Page           int
}

// GetMessagesUseCase fetches a message window, enforcing that only
// participants may read the thread.
type GetMessagesUseCase struct {
	Repo repository.ConversationRepository
}

func NewGetMessagesUseCase(repo repository.ConversationRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]messaging.Message, error) {
	if in.ConversationID == "" && in.PeerID == "" {
		return nil, fmt.Errorf("conversationId or peerId is required")
	}
	if in.Limit <= 0 {
		in.Limit = 20
	}
	if in.Page <= 0 {
		in.Page = 1
	}

	var (
		conv messaging.Conversation
		err  error
	)
	if in.ConversationID != "" {
		conv, err = uc.Repo.FindByID(ctx, in.ConversationID)
	} else {
		conv, err = uc.Repo.FindByPair(ctx, in.UserID, in.PeerID)
	}
	if err == repository.ErrNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.UserID) {
		return nil, messaging.ErrNotParticipant
	}

	msgs, err := uc.Repo.PageMessages(ctx, conv.ID, in.Limit, in.Page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
