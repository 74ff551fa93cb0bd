package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/willpowerfitness/coach-api/internal/config"
	"github.com/willpowerfitness/coach-api/internal/infra/database"
	"github.com/willpowerfitness/coach-api/internal/infra/http/handlers"
	"github.com/willpowerfitness/coach-api/internal/infra/http/middleware"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/groq"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/openai"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/printful"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/stripe"
	"github.com/willpowerfitness/coach-api/internal/infra/mail"
	"github.com/willpowerfitness/coach-api/internal/infra/queue"
	"github.com/willpowerfitness/coach-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "coach-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("schema migration failed")
	}
	cancel()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("rabbitmq connection failed")
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	profileRepo := database.NewUserProfileRepository(db)
	conversationRepo := database.NewConversationRepository(db)
	fitnessRepo := database.NewFitnessRecordRepository(db)
	eventRepo := database.NewWebhookEventRepository(db)

	// 2. Gateways and adapters
	billing := stripe.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	chatModel := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel)
	reasoningModel := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	printfulClient := printful.NewClient(cfg.PrintfulAPIKey, cfg.PrintfulVariantID)
	producer := queue.NewProducer(rabbitMQ.Ch)

	var mailSender usecase.EmailService
	if cfg.MailConfigured() {
		mailSender = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, logger)
	} else {
		logger.Warn().Msg("⚠️ SMTP not configured, emails will be skipped")
		mailSender = &mail.NoopSender{Logger: logger}
	}

	// 3. Fulfillment worker (consumes shirt jobs, calls Printful)
	worker := queue.NewWorker(rabbitMQ.Ch, printfulClient, profileRepo, logger)
	go worker.Start(queue.QueueName)

	// 4. UseCases
	onboardingUC := usecase.NewSubmitOnboardingUseCase(leadRepo, logger)
	consultationUC := usecase.NewConsultationUseCase(leadRepo, chatModel, mailSender, logger)
	createSubscriptionUC := usecase.NewCreateSubscriptionUseCase(leadRepo, profileRepo, billing, cfg.StripePriceID, logger)
	activateUC := usecase.NewActivateMembershipUseCase(leadRepo, profileRepo, eventRepo, producer, mailSender, logger)
	chatUC := usecase.NewCoachChatUseCase(profileRepo, conversationRepo, chatModel, logger)
	generationUC := usecase.NewPlanGenerationUseCase(profileRepo, fitnessRepo, reasoningModel, logger)
	profileUC := usecase.NewUserProfileUseCase(profileRepo, leadRepo, conversationRepo, fitnessRepo, logger)

	// 5. Handlers
	onboardingHandler := handlers.NewOnboardingHandler(onboardingUC)
	consultationHandler := handlers.NewConsultationHandler(consultationUC)
	subscriptionHandler := handlers.NewSubscriptionHandler(createSubscriptionUC)
	webhookHandler := handlers.NewWebhookHandler(billing, activateUC, logger)
	chatHandler := handlers.NewChatHandler(chatUC)
	generationHandler := handlers.NewGenerationHandler(generationUC)
	profileHandler := handlers.NewProfileHandler(profileUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ, cfg)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(90 * time.Second))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Stripe-Signature"},
	}))

	r.Post("/api/onboarding/step1", onboardingHandler.HandleStep1)
	r.Post("/api/consultation", consultationHandler.Handle)
	r.Post("/api/create-subscription", subscriptionHandler.HandleCreate)

	// Webhook routes take the raw body, never a parsed one.
	r.Post("/api/webhook/stripe", webhookHandler.HandleStripe)
	r.Post("/api/stripe-webhook", webhookHandler.HandleStripe) // legacy alias

	r.Post("/api/chat", chatHandler.Handle)
	r.Post("/api/workout-plan", generationHandler.HandleWorkoutPlan)
	r.Post("/api/nutrition-analysis", generationHandler.HandleNutritionAnalysis)
	r.Post("/api/progress-analysis", generationHandler.HandleProgressAnalysis)
	r.Post("/api/workouts", profileHandler.HandleLogWorkout)

	r.Get("/api/profile/{userId}", profileHandler.HandleGet)
	r.Put("/api/profile/{userId}", profileHandler.HandleUpdate)
	r.Get("/api/export/{userId}", profileHandler.HandleExport)
	r.Delete("/api/delete-user-data/{userId}", profileHandler.HandleDelete)

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("🚀 WillPower coach API listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
