package http

import (
	userport "github.com/ashudev21/rabf-backend/internal/repository/port"

	qport "github.com/ashudev21/rabf-backend/internal/infrastructure/queue/port"
	repository "github.com/ashudev21/rabf-backend/internal/pkg/booking/persistence/repository/port"
	"github.com/ashudev21/rabf-backend/internal/pkg/booking/presentation/controller"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking endpoints under the given router group.
func RegisterRoutes(
	g *gin.RouterGroup,
	repo repository.BookingRepository,
	users userport.UserRepository,
	bus *notification.Bus,
	queue qport.Client,
) {
	createCtl := controller.NewCreateBookingController(repo, users, bus, queue)
	statusCtl := controller.NewUpdateBookingStatusController(repo, users, bus, queue)

	g.POST("/bookings", createCtl.Handle())
	g.PATCH("/bookings/:id/status", statusCtl.Handle())
}
