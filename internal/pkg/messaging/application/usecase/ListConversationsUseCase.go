package usecase

import (
	"context"
	"fmt"

	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
)

// ListConversationsInput wraps the user whose chat list is requested.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase returns the user's conversations, most recent
// activity first, for the chat-list view.
type ListConversationsUseCase struct {
	Repo repository.ConversationRepository
}

func NewListConversationsUseCase(repo repository.ConversationRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]messaging.Conversation, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("userId is required")
	}
	convs, err := uc.Repo.ListForUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return convs, nil
}
