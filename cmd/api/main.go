package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/ashudev21/rabf-backend/cmd/api/router/v1"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/auth"
	brokerAdapter "github.com/ashudev21/rabf-backend/internal/infrastructure/broker/adapter"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/config"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/database"
	mailAdapter "github.com/ashudev21/rabf-backend/internal/infrastructure/mail/adapter"
	queueAdapter "github.com/ashudev21/rabf-backend/internal/infrastructure/queue/adapter"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/realtime"
	emailTask "github.com/ashudev21/rabf-backend/internal/pkg/email/task"
	"github.com/ashudev21/rabf-backend/internal/pkg/notification"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	broker, err := brokerAdapter.NewRedisBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer broker.Close()

	bus := notification.NewBus(broker)
	rtr := realtime.NewRouter()
	defer rtr.Close()
	streams := notification.NewStreamRegistry()

	// The dispatcher turns broker events into local websocket and SSE
	// deliveries; one per process.
	dispatcher := notification.NewDispatcher(broker, rtr, streams)
	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("notification dispatcher stopped: %v", err)
		}
	}()

	queueClient, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to create queue client: %v", err)
	}
	defer queueClient.Close()

	queueServer, err := queueAdapter.NewAsynqServer(cfg.RedisURL, 5)
	if err != nil {
		log.Fatalf("failed to create queue server: %v", err)
	}
	mailer := mailAdapter.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	emailTask.RegisterSendEmailTask(queueServer, mailer)
	go func() {
		if err := queueServer.Run(ctx); err != nil {
			log.Printf("queue server stopped: %v", err)
		}
	}()

	r := gin.Default()
	r.Use(corsMiddleware(cfg.ClientURL))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	v1.RegisterRoutes(r, v1.Deps{
		Pool:      pool,
		Tokens:    tokens,
		Bus:       bus,
		Router:    rtr,
		Streams:   streams,
		Queue:     queueClient,
		ClientURL: cfg.ClientURL,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// corsMiddleware mirrors the browser client's needs: a single trusted origin
// with credentialed requests (the auth cookie).
func corsMiddleware(clientURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", clientURL)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
