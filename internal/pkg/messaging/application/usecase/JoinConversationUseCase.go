package usecase

import (
	"context"
	"fmt"

	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
)

// JoinConversationInput validates a request to attach a socket session to a
// conversation room.
type JoinConversationInput struct {
	ConversationID string
	UserID         string
}

// JoinConversationUseCase ensures the user belongs to the conversation
// before the realtime room join is allowed.
type JoinConversationUseCase struct {
	Repo repository.ConversationRepository
}

func NewJoinConversationUseCase(repo repository.ConversationRepository) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID == "" || in.UserID == "" {
		return fmt.Errorf("conversationId and userId are required")
	}

	conv, err := uc.Repo.FindByID(ctx, in.ConversationID)
	if err == repository.ErrNotFound {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.UserID) {
		return messaging.ErrNotParticipant
	}
	return nil
}
