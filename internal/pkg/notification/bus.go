package notification

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/broker/port"
)

// Channel is the well-known broker channel for user-targeted notifications.
const Channel = "notifications"

// roomChannelPrefix namespaces broker channels used for room fan-out.
const roomChannelPrefix = "room:"

// RoomChannel maps a room id to its broker channel.
func RoomChannel(roomID string) string {
	return roomChannelPrefix + roomID
}

// RoomFromChannel is the inverse of RoomChannel; ok is false for channels
// outside the room namespace.
func RoomFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, roomChannelPrefix) {
		return "", false
	}
	return channel[len(roomChannelPrefix):], true
}

// Bus publishes notification and room events to the shared broker so every
// process instance can deliver them to its local connections. All publishes
// are fire-and-forget: a broker outage degrades delivery but must never
// fail the request that triggered the event.
type Bus struct {
	broker port.Broker
}

func NewBus(broker port.Broker) *Bus {
	return &Bus{broker: broker}
}

// Notify fans out a payload to every process holding a live connection
// (socket or notification stream) for the target user.
func (b *Bus) Notify(ctx context.Context, targetUserID string, p Payload) {
	data, err := json.Marshal(Envelope{UserID: targetUserID, Payload: p})
	if err != nil {
		log.Printf("notification: encode %s for %s: %v", p.Type, targetUserID, err)
		return
	}
	if err := b.broker.Publish(ctx, Channel, data); err != nil {
		log.Printf("notification: publish %s for %s: %v", p.Type, targetUserID, err)
	}
}

// BroadcastRoom fans a raw socket frame out to every member of the room,
// across all processes.
func (b *Bus) BroadcastRoom(ctx context.Context, roomID string, frame []byte) {
	if err := b.broker.Publish(ctx, RoomChannel(roomID), frame); err != nil {
		log.Printf("notification: broadcast room %s: %v", roomID, err)
	}
}
