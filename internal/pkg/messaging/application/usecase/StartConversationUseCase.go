package usecase

import (
	"context"
	"fmt"

	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
)

// StartConversationInput identifies the unordered pair to open a thread for.
type StartConversationInput struct {
	UserID string
	PeerID string
}

// StartConversationUseCase returns the pair's conversation, creating it on
// first contact. Concurrent starts from both directions converge on one
// record; the repository's uniqueness constraint settles the race.
type StartConversationUseCase struct {
	Repo repository.ConversationRepository
}

func NewStartConversationUseCase(repo repository.ConversationRepository) *StartConversationUseCase {
	return &StartConversationUseCase{Repo: repo}
}

func (uc *StartConversationUseCase) Execute(ctx context.Context, in StartConversationInput) (messaging.Conversation, error) {
	if in.UserID == "" || in.PeerID == "" {
		return messaging.Conversation{}, fmt.Errorf("userId and peerId are required")
	}
	if in.UserID == in.PeerID {
		return messaging.Conversation{}, messaging.ErrSelfMessage
	}

	conv, err := uc.Repo.FindOrCreate(ctx, in.UserID, in.PeerID)
	if err != nil {
		return messaging.Conversation{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return conv, nil
}
