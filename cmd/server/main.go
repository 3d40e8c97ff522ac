package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/fraudshield/backend/internal/database"
	"github.com/fraudshield/backend/internal/handlers"
	mW "github.com/fraudshield/backend/internal/middleware"
	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/services"
)

// @title Banking Fraud Review API
// @version 1.0
// @description Ledger mutation and fraud review workflow backend
// @host localhost:8080
// @BasePath /api
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	if err := viper.ReadInConfig(); err != nil {
		logger.Info("config file not found, using defaults and environment", zap.Error(err))
	}

	db, err := database.InitDB()
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("database connection established")

	redisClient := database.InitRedis(logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores and services
	accounts := services.NewAccountStore(db)
	journal := services.NewTransactionJournal(db)
	ledgerService := services.NewLedgerService(db, accounts, journal, logger)
	reviewService := services.NewFraudReviewService(db, accounts, logger)
	adminService := services.NewAdminService(db, redisClient, logger)

	ledgerHandler := handlers.NewLedgerHandler(ledgerService, accounts, journal, logger)
	fraudHandler := handlers.NewFraudHandler(reviewService, logger)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Setup router
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/openapi.yaml"),
	))
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yaml")
	})

	// API routes: the access gate resolves (identity, role) before any
	// core code runs; role gates scope the user and admin subtrees.
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AccessGate)

			r.Route("/user", func(r chi.Router) {
				r.Use(mW.RequireRole(models.RoleUser))

				r.Get("/accounts", ledgerHandler.ListAccounts)
				r.Post("/accounts", ledgerHandler.CreateAccount)
				r.Post("/accounts/{accountID}/deposit", ledgerHandler.Deposit)
				r.Post("/accounts/{accountID}/withdraw", ledgerHandler.Withdraw)
				r.Post("/transfer", ledgerHandler.Transfer)
				r.Get("/transactions", ledgerHandler.ListTransactions)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(mW.RequireRole(models.RoleAdmin))

				r.Get("/dashboard", adminHandler.Dashboard)
				r.Get("/users", adminHandler.ListUsers)
				r.Get("/fraud-logs", fraudHandler.ListFlags)
				r.Post("/fraud-flags", fraudHandler.CreateFlag)
				r.Post("/resolve/{logID}", fraudHandler.Resolve)
				r.Post("/update-fraud-action", fraudHandler.UpdateAction)
				r.Get("/fraud-rules", fraudHandler.ListRules)
				r.Post("/fraud-rules", fraudHandler.CreateRule)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
