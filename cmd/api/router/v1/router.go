package v1

import (
	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	qport "github.com/ashudev21/rabf-backend/internal/infrastructure/queue/port"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/realtime"
	bookingAdapter "github.com/ashudev21/rabf-backend/internal/pkg/booking/persistence/repository/adapter"
	bookingHTTP "github.com/ashudev21/rabf-backend/internal/pkg/booking/presentation/http"
	messagingAdapter "github.com/ashudev21/rabf-backend/internal/pkg/messaging/persistence/repository/adapter"
	messagingHTTP "github.com/ashudev21/rabf-backend/internal/pkg/messaging/presentation/http"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"
	notificationHTTP "github.com/ashudev21/rabf-backend/internal/pkg/notification/presentation/http"
	userAdapter "github.com/ashudev21/rabf-backend/internal/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the shared infrastructure every v1 route group draws from.
type Deps struct {
	Pool      *pgxpool.Pool
	Tokens    *auth.TokenManager
	Bus       *notification.Bus
	Router    *realtime.Router
	Streams   *notification.StreamRegistry
	Queue     qport.Client
	ClientURL string
}

// RegisterRoutes mounts all version 1 API routes under /api/v1. Every route,
// the websocket and SSE endpoints included, sits behind the auth middleware.
func RegisterRoutes(r *gin.Engine, d Deps) {
	conversations := messagingAdapter.NewPgConversationRepository(d.Pool)
	bookings := bookingAdapter.NewPgBookingRepository(d.Pool)
	users := userAdapter.NewPgUserRepository(d.Pool)

	v1 := r.Group("/api/v1")
	v1.Use(auth.RequireAuth(d.Tokens))

	messagingHTTP.RegisterRoutes(v1, conversations, bookings, users, d.Bus, d.Router, d.ClientURL)
	bookingHTTP.RegisterRoutes(v1, bookings, users, d.Bus, d.Queue)
	notificationHTTP.RegisterRoutes(v1, d.Streams)
}
