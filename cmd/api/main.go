package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hasinarivo/vetcare-api/internal/config"
	"github.com/hasinarivo/vetcare-api/internal/handlers"
	"github.com/hasinarivo/vetcare-api/internal/realtime"
	"github.com/hasinarivo/vetcare-api/internal/services"
	"github.com/hasinarivo/vetcare-api/internal/store"
	"github.com/hasinarivo/vetcare-api/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	cfg := config.New()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	utils.InitJWT(cfg.JWTSecret)

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDatabase)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	log.Println("Successfully connected to MongoDB!")

	// --- Stores ---
	users := store.NewUserRepo(db)
	animals := store.NewAnimalRepo(db)
	appointments := store.NewAppointmentRepo(db)
	chats := store.NewChatRepo(db)
	messages := store.NewMessageRepo(db)
	reviews := store.NewReviewRepo(db)
	notifications := store.NewNotificationRepo(db)
	posts := store.NewPostRepo(db)

	// --- Realtime hub and services ---
	hub := realtime.NewHub()
	notificationSvc := services.NewNotificationService(notifications, appointments, hub, cfg.ReminderInterval)
	appointmentSvc := services.NewAppointmentService(appointments, animals, users, notificationSvc)
	chatSvc := services.NewChatService(chats, messages, hub)
	reviewSvc := services.NewReviewService(reviews, users)

	// Reminder sweep runs for the life of the process.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go notificationSvc.Run(sweepCtx)

	h := handlers.NewHandler(users, animals, posts, appointmentSvc, chatSvc, reviewSvc, notificationSvc, hub)

	// --- Gin Router ---
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h.RegisterRoutes(r)

	log.Printf("Starting server on port %s", cfg.APIPort)
	if err := r.Run(":" + cfg.APIPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
