package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	brokerport "github.com/ashudev21/rabf-backend/internal/infrastructure/broker/port"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/realtime"
	messaging "github.com/ashudev21/rabf-backend/internal/pkg/messaging/application/domain"
	"github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/adapter"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
)

type capturedEvent struct {
	channel string
	payload []byte
}

type captureBroker struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (b *captureBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	b.events = append(b.events, capturedEvent{channel: channel, payload: payload})
	b.mu.Unlock()
	return nil
}

func (b *captureBroker) Subscribe(ctx context.Context, patterns ...string) (<-chan brokerport.Event, func(), error) {
	return nil, func() {}, nil
}

func (b *captureBroker) Close() error { return nil }

func (b *captureBroker) channels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, ev := range b.events {
		out[i] = ev.channel
	}
	return out
}

type staticBookings struct{ accepted bool }

func (s *staticBookings) HasAcceptedBetween(ctx context.Context, userA, userB string) (bool, error) {
	return s.accepted, nil
}

type staticUsers struct{}

func (staticUsers) FindByID(ctx context.Context, id string) (userport.User, error) {
	return userport.User{ID: id, Name: "User " + id}, nil
}

type chatAPI struct {
	engine *gin.Engine
	broker *captureBroker
	tokens *auth.TokenManager
}

func newChatAPI(t *testing.T) *chatAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	broker := &captureBroker{}
	repo := adapter.NewMemoryConversationRepository()
	bus := notification.NewBus(broker)
	rtr := realtime.NewRouter()
	t.Cleanup(rtr.Close)

	tokens := auth.NewTokenManager("test-secret")
	r := gin.New()
	g := r.Group("/")
	g.Use(auth.RequireAuth(tokens))

	sendCtl := NewSendMessageController(repo, &staticBookings{}, staticUsers{}, bus)
	getCtl := NewGetMessagesController(repo)
	listCtl := NewListChatsController(repo, staticUsers{})
	startCtl := NewStartChatController(repo)
	g.POST("/chats", sendCtl.Handle())
	g.GET("/chats", listCtl.Handle())
	g.POST("/chats/start", startCtl.Handle())
	g.GET("/chats/:userId/messages", getCtl.Handle())

	return &chatAPI{engine: r, broker: broker, tokens: tokens}
}

func (a *chatAPI) do(t *testing.T, userID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	signed, err := a.tokens.Issue(userID, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signed})

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func TestSendMessageEndpoint(t *testing.T) {
	api := newChatAPI(t)

	rec := api.do(t, "alice", http.MethodPost, "/chats", gin.H{
		"recipient_id": "bob",
		"content":      "hi bob",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message     messagePayload `json:"message"`
		ChatID      string         `json:"chat_id"`
		RecipientID string         `json:"recipient_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Message.Seq != 1 || resp.Message.Text != "hi bob" {
		t.Fatalf("unexpected message %+v", resp.Message)
	}
	if resp.RecipientID != "bob" {
		t.Fatalf("expected recipient bob, got %s", resp.RecipientID)
	}

	// First contact publishes: NEW_MESSAGE envelope, room frame, both
	// participants' chat-list updates.
	channels := api.broker.channels()
	want := map[string]bool{
		notification.Channel:                   false,
		notification.RoomChannel(resp.ChatID):  false,
		notification.RoomChannel("user:alice"): false,
		notification.RoomChannel("user:bob"):   false,
	}
	for _, ch := range channels {
		if _, ok := want[ch]; ok {
			want[ch] = true
		}
	}
	for ch, seen := range want {
		if !seen {
			t.Fatalf("expected a publish on %q, got %v", ch, channels)
		}
	}
}

func TestSendMessageEndpointQuota(t *testing.T) {
	api := newChatAPI(t)

	for i := 0; i < messaging.FreeMessageAllowance; i++ {
		rec := api.do(t, "alice", http.MethodPost, "/chats", gin.H{
			"recipient_id": "bob",
			"content":      fmt.Sprintf("message %d", i+1),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("send %d: expected 201, got %d", i+1, rec.Code)
		}
	}

	rec := api.do(t, "alice", http.MethodPost, "/chats", gin.H{
		"recipient_id": "bob",
		"content":      "one too many",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Code != string(notification.TypeLimitReached) {
		t.Fatalf("expected code LIMIT_REACHED, got %q", resp.Code)
	}
}

func TestGetMessagesEndpoint(t *testing.T) {
	api := newChatAPI(t)

	for i := 0; i < messaging.FreeMessageAllowance; i++ {
		rec := api.do(t, "alice", http.MethodPost, "/chats", gin.H{
			"recipient_id": "bob",
			"content":      fmt.Sprintf("message %d", i+1),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("send %d: expected 201, got %d", i+1, rec.Code)
		}
	}
	api.do(t, "bob", http.MethodPost, "/chats", gin.H{
		"recipient_id": "alice",
		"content":      "a reply",
	})

	rec := api.do(t, "bob", http.MethodGet, "/chats/alice/messages?limit=5&page=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Messages []messagePayload `json:"messages"`
		Count    int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 5 {
		t.Fatalf("expected page of 5, got %d", resp.Count)
	}
	// Most recent window, oldest-first within the page.
	if resp.Messages[0].Seq != 2 || resp.Messages[4].Seq != 6 {
		t.Fatalf("expected seq 2..6, got %d..%d", resp.Messages[0].Seq, resp.Messages[4].Seq)
	}
}

func TestGetMessagesEndpointEmptyHistory(t *testing.T) {
	api := newChatAPI(t)

	rec := api.do(t, "alice", http.MethodGet, "/chats/stranger/messages", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 0 {
		t.Fatalf("expected empty history, got %d", resp.Count)
	}
}

func TestListChatsEndpoint(t *testing.T) {
	api := newChatAPI(t)

	api.do(t, "alice", http.MethodPost, "/chats", gin.H{"recipient_id": "bob", "content": "hi bob"})
	api.do(t, "alice", http.MethodPost, "/chats", gin.H{"recipient_id": "carol", "content": "hi carol"})

	rec := api.do(t, "alice", http.MethodGet, "/chats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Chats []struct {
			LastMessage      string             `json:"last_message"`
			OtherParticipant participantSummary `json:"other_participant"`
		} `json:"chats"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 chats, got %d", resp.Count)
	}
	// Most recent first.
	if resp.Chats[0].OtherParticipant.ID != "carol" || resp.Chats[0].LastMessage != "hi carol" {
		t.Fatalf("unexpected first chat %+v", resp.Chats[0])
	}

	rec = api.do(t, "bob", http.MethodGet, "/chats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 1 || resp.Chats[0].OtherParticipant.ID != "alice" {
		t.Fatalf("unexpected chats for bob: %+v", resp.Chats)
	}
}

func TestStartChatEndpoint(t *testing.T) {
	api := newChatAPI(t)

	rec := api.do(t, "alice", http.MethodPost, "/chats/start", gin.H{"user_id": "bob"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var first struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected a conversation id")
	}

	// Starting from the other side lands on the same conversation.
	rec = api.do(t, "bob", http.MethodPost, "/chats/start", gin.H{"user_id": "alice"})
	var second struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected one conversation per pair, got %s and %s", first.ID, second.ID)
	}

	rec = api.do(t, "alice", http.MethodPost, "/chats/start", gin.H{"user_id": "alice"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self chat, got %d", rec.Code)
	}
}
