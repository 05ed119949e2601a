package http

import (
	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/realtime"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/messaging/presentation/controller"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes. All routes assume the auth middleware already ran.
func RegisterRoutes(
	g *gin.RouterGroup,
	repo repository.ConversationRepository,
	bookings repository.BookingReader,
	users userport.UserRepository,
	bus *notification.Bus,
	rtr *realtime.Router,
	allowedOrigin string,
) {
	sendMsgCtl := controller.NewSendMessageController(repo, bookings, users, bus)
	getMsgsCtl := controller.NewGetMessagesController(repo)
	listCtl := controller.NewListChatsController(repo, users)
	startCtl := controller.NewStartChatController(repo)
	socketCtl := controller.NewChatSocketController(repo, bookings, users, bus, rtr, allowedOrigin)

	g.POST("/chats", sendMsgCtl.Handle())
	g.GET("/chats", listCtl.Handle())
	g.POST("/chats/start", startCtl.Handle())
	g.GET("/chats/:userId/messages", getMsgsCtl.Handle())
	g.GET("/ws/chat", socketCtl.Handle())
}
