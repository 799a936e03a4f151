package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"archive-service/internal/archive"
	"archive-service/internal/auth"
	"archive-service/internal/db"
	"archive-service/internal/handlers"
	"archive-service/internal/middleware"
	"archive-service/internal/observability"
	"archive-service/internal/rabbitmq"
	"archive-service/internal/repositories"
	"archive-service/internal/telemetry"
)

const serviceName = "archive-service"

func main() {
	ctx := context.Background()

	database, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, getEnv("OTLP_ENDPOINT", ""))
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	publisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "dashboard.events"))
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	audit := telemetry.NewAuditEmitter(publisher, "audit.archive", serviceName, getEnv("ENVIRONMENT", "dev"))

	messageRepo := repositories.NewMessageRepo(database)
	archiveRepo := repositories.NewArchiveRepo(database)
	sessionRepo := repositories.NewSessionRepo(database)
	runStore := repositories.NewArchiveRunStore(database)

	resolver := auth.NewResolver(sessionRepo)
	coordinator := archive.NewCoordinator(runStore, publisher, audit)

	messageHandler := handlers.NewMessageHandler(messageRepo)
	archiveHandler := handlers.NewArchiveHandler(archiveRepo, coordinator, audit)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessionAuth := middleware.SessionAuth(resolver)

	router.GET("/messages", sessionAuth, messageHandler.ListMessages)
	router.POST("/messages", sessionAuth, messageHandler.PostMessage)
	router.GET("/archives/months", sessionAuth, archiveHandler.ListMonths)
	router.GET("/archives/:month/messages", sessionAuth, archiveHandler.ListMonthMessages)
	router.POST("/archives/run", sessionAuth, archiveHandler.RunArchival)

	port := getEnv("PORT", "8086")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
