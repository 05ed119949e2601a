package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
)

const defaultHeartbeat = 30 * time.Second

// NotificationStreamController serves the SSE endpoint: a live feed of the
// caller's notifications. The stream starts at connect time; anything
// published before has to come from the REST listing instead.
type NotificationStreamController struct {
	streams   *notification.StreamRegistry
	heartbeat time.Duration
}

func NewNotificationStreamController(streams *notification.StreamRegistry) *NotificationStreamController {
	return &NotificationStreamController{streams: streams, heartbeat: defaultHeartbeat}
}

func (h *NotificationStreamController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		ch, remove := h.streams.Add(auth.UserID(c))
		defer remove()

		if frame, err := json.Marshal(notification.Payload{Type: notification.TypeConnected}); err == nil {
			fmt.Fprintf(c.Writer, "data: %s\n\n", frame)
			flusher.Flush()
		}

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		ctx := c.Request.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// SSE comment, ignored by clients but keeps proxies from
				// cutting the idle connection.
				fmt.Fprint(c.Writer, ": keep-alive\n\n")
				flusher.Flush()
			case payload, open := <-ch:
				if !open {
					return
				}
				fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
