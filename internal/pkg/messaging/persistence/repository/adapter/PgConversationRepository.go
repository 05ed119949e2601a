package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
)

// PgConversationRepository persists conversations in Postgres. Messages live
// in their own table keyed by (conversation_id, seq) so appends and
// recent-window reads stay cheap no matter how long the thread grows.
type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

var _ repository.ConversationRepository = (*PgConversationRepository)(nil)

const conversationColumns = `id::text, participant_a::text, participant_b::text,
	COALESCE(last_message_text, ''), COALESCE(last_message_time, 'epoch'::timestamptz),
	created_at, updated_at`

func (r *PgConversationRepository) FindOrCreate(ctx context.Context, userA, userB string) (messaging.Conversation, error) {
	a, b := messaging.NormalizePair(userA, userB)

	// The unique index on (participant_a, participant_b) de-duplicates
	// concurrent first-contact; the loser's insert is a no-op and the
	// follow-up select reads the winner's row.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversation (participant_a, participant_b)
		VALUES ($1::uuid, $2::uuid)
		ON CONFLICT (participant_a, participant_b) DO NOTHING
	`, a, b)
	if err != nil {
		return messaging.Conversation{}, err
	}

	var c messaging.Conversation
	err = r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversation
		WHERE participant_a = $1::uuid AND participant_b = $2::uuid
	`, a, b).Scan(&c.ID, &c.ParticipantA, &c.ParticipantB,
		&c.LastMessageText, &c.LastMessageTime, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return messaging.Conversation{}, err
	}
	return c, nil
}

func (r *PgConversationRepository) FindByID(ctx context.Context, id string) (messaging.Conversation, error) {
	var c messaging.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversation
		WHERE id = $1::uuid
	`, id).Scan(&c.ID, &c.ParticipantA, &c.ParticipantB,
		&c.LastMessageText, &c.LastMessageTime, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return messaging.Conversation{}, repository.ErrNotFound
	}
	if err != nil {
		return messaging.Conversation{}, err
	}
	return c, nil
}

func (r *PgConversationRepository) FindByPair(ctx context.Context, userA, userB string) (messaging.Conversation, error) {
	a, b := messaging.NormalizePair(userA, userB)
	var c messaging.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversation
		WHERE participant_a = $1::uuid AND participant_b = $2::uuid
	`, a, b).Scan(&c.ID, &c.ParticipantA, &c.ParticipantB,
		&c.LastMessageText, &c.LastMessageTime, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return messaging.Conversation{}, repository.ErrNotFound
	}
	if err != nil {
		return messaging.Conversation{}, err
	}
	return c, nil
}

func (r *PgConversationRepository) AppendMessage(ctx context.Context, conversationID string, msg messaging.Message) (messaging.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return messaging.Message{}, err
	}
	defer tx.Rollback(ctx)

	// Locking the conversation row serializes concurrent appends, which is
	// what makes seq assignment and message order well-defined.
	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT true FROM conversation WHERE id = $1::uuid FOR UPDATE
	`, conversationID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return messaging.Message{}, repository.ErrNotFound
	}
	if err != nil {
		return messaging.Message{}, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO message (conversation_id, sender_id, body, created_at, seq)
		SELECT $1::uuid, $2::uuid, $3, $4,
		       COALESCE((SELECT MAX(seq) FROM message WHERE conversation_id = $1::uuid), 0) + 1
		RETURNING id::text, seq
	`, conversationID, msg.SenderID, msg.Text, msg.CreatedAt).Scan(&msg.ID, &msg.Seq)
	if err != nil {
		return messaging.Message{}, err
	}
	msg.ConversationID = conversationID

	_, err = tx.Exec(ctx, `
		UPDATE conversation
		SET last_message_text = $2, last_message_time = $3, updated_at = $3
		WHERE id = $1::uuid
	`, conversationID, msg.Text, msg.CreatedAt)
	if err != nil {
		return messaging.Message{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return messaging.Message{}, err
	}
	return msg, nil
}

func (r *PgConversationRepository) PageMessages(ctx context.Context, conversationID string, limit, page int) ([]messaging.Message, error) {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	// Walk backward from the end of the log, then flip the window back to
	// chronological order.
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, body, read, seq, created_at
		FROM message
		WHERE conversation_id = $1::uuid
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.Message
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.Read, &m.Seq, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *PgConversationRepository) CountBySender(ctx context.Context, conversationID, senderID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM message
		WHERE conversation_id = $1::uuid AND sender_id = $2::uuid
	`, conversationID, senderID).Scan(&n)
	return n, err
}

func (r *PgConversationRepository) ListForUser(ctx context.Context, userID string) ([]messaging.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversation
		WHERE participant_a = $1::uuid OR participant_b = $1::uuid
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []messaging.Conversation
	for rows.Next() {
		var c messaging.Conversation
		if err := rows.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB,
			&c.LastMessageText, &c.LastMessageTime, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return convs, nil
}
