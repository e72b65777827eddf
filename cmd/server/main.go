package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/traffic-emissions/internal/auth"
	"github.com/ukydev/traffic-emissions/internal/db"
	"github.com/ukydev/traffic-emissions/internal/handlers"
	"github.com/ukydev/traffic-emissions/internal/middleware"
	"github.com/ukydev/traffic-emissions/internal/models"
)

func main() {
	godotenv.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "emissions"
	}
	database := client.Database(dbName)

	aggregates := &db.MongoAggregateCollection{Collection: database.Collection("aggregates")}
	events := &db.MongoEventCollection{Collection: database.Collection("events")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	seedAdmin(authService, users)

	authHandler := handlers.NewAuthHandler(authService, users)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.Handle("/api/aggregates", &handlers.AggregatesHandler{Collection: aggregates})
	mux.Handle("/api/events", &handlers.EventsHandler{Collection: events})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("Results API listening")
	log.Fatal(http.ListenAndServe(":"+port, authMiddleware.Authenticate(mux)))
}

// seedAdmin creates the initial admin account from ADMIN_USERNAME and
// ADMIN_PASSWORD if it does not exist yet.
func seedAdmin(authService *auth.Service, users db.UserCollection) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	if _, err := users.FindUserByUsername(context.Background(), username); err == nil {
		return
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash admin password")
	}
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.InsertUser(context.Background(), user); err != nil {
		log.WithError(err).Fatal("Failed to seed admin user")
	}
	log.WithField("username", username).Info("Seeded admin user")
}
