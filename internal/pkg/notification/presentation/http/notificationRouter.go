package http

import (
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification/presentation/controller"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the notification stream endpoint.
func RegisterRoutes(g *gin.RouterGroup, streams *notification.StreamRegistry) {
	streamCtl := controller.NewNotificationStreamController(streams)
	g.GET("/notifications/stream", streamCtl.Handle())
}
