package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/mentora-ai/mentora/internal/api/handlers"
	"github.com/mentora-ai/mentora/internal/config"
	"github.com/mentora-ai/mentora/internal/database"
	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/jobs"
	"github.com/mentora-ai/mentora/internal/openai"
	"github.com/mentora-ai/mentora/internal/repository"
	"github.com/mentora-ai/mentora/internal/server"
	"github.com/mentora-ai/mentora/internal/service"
	"github.com/mentora-ai/mentora/internal/storage"
	"github.com/mentora-ai/mentora/internal/telemetry"
	"github.com/mentora-ai/mentora/internal/vector"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the mentora API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	expertRepo := repository.NewExpertRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	unitRepo := repository.NewKnowledgeUnitRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	jobRepo := repository.NewIngestionJobRepository(pool)
	questionRepo := repository.NewTrainingQuestionRepository(pool)
	queryLogRepo := repository.NewQueryLogRepository(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(expertRepo, apiKeyRepo, uuidGen)

	if cfg.InitExpertName != "" {
		if err := bootstrapInitialExpert(ctx, cfg, expertRepo, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial expert: %w", err)
		}
	}

	vectors := vector.NewPgStore(pool)
	knowledgeSvc := service.NewKnowledgeService(unitRepo, vectors)
	profileSvc := service.NewProfileService(expertRepo)

	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err = storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	}

	chatHandler := handlers.NewChatHandler(&NoOpResponder{})
	trainingHandler := handlers.NewTrainingHandler(&NoOpTrainingService{}, &NoOpTrainingIngester{})
	documentHandler := handlers.NewDocumentHandler(&NoOpDocumentService{})

	var ingestWorker *jobs.Worker
	if cfg.HasOpenAI() {
		aiClient := openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			ChatModel:           cfg.ChatModel,
		})

		extractor := service.NewKnowledgeExtractor(aiClient)
		indexer := service.NewKnowledgeIndexer(unitRepo, expertRepo, aiClient, vectors)
		retriever := service.NewKnowledgeRetriever(aiClient, vectors, unitRepo).WithQueryLog(queryLogRepo)
		filter := service.NewRelevanceFilter()
		assembler := service.NewPromptAssembler()
		responder := service.NewResponseGenerator(expertRepo, retriever, filter, assembler, aiClient)
		trainingSvc := service.NewTrainingQuestionGenerator(questionRepo, expertRepo, extractor, indexer, vectors, aiClient)
		ingestionSvc := service.NewIngestionService(docRepo, unitRepo, extractor, indexer, vectors)

		chatHandler = handlers.NewChatHandler(responder)
		trainingHandler = handlers.NewTrainingHandler(trainingSvc, ingestionSvc)

		if s3Client != nil {
			documentSvc := service.NewDocumentService(docRepo, jobRepo, s3Client, ingestionSvc, uuidGen)
			documentHandler = handlers.NewDocumentHandler(documentSvc)

			ingestProcessor := jobs.NewIngestWorker(jobRepo, docRepo, s3Client, ingestionSvc)
			ingestWorker = jobs.NewWorker(ingestProcessor, cfg.WorkerPollInterval)
			go ingestWorker.Start(ctx)
			log.Println("ingestion worker started")
		}
	}

	routerCfg := server.RouterConfig{
		AuthValidator:    authSvc,
		ChatHandler:      chatHandler,
		ExpertHandler:    handlers.NewExpertHandler(profileSvc),
		TrainingHandler:  trainingHandler,
		DocumentHandler:  documentHandler,
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		AuthHandler:      handlers.NewAuthHandler(authSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if ingestWorker != nil {
		ingestWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

var errOpenAINotConfigured = fmt.Errorf("language model not configured: MENTORA_OPENAI_API_KEY required")

var errDocumentsNotConfigured = fmt.Errorf("document service not configured: MENTORA_S3_ENDPOINT and MENTORA_OPENAI_API_KEY required")

type NoOpResponder struct{}

func (s *NoOpResponder) Answer(ctx context.Context, expertID, question string, history []openai.Message) (*service.AnswerResult, error) {
	return nil, errOpenAINotConfigured
}

type NoOpTrainingService struct{}

func (s *NoOpTrainingService) NextQuestion(ctx context.Context, expertID string) (*domain.TrainingQuestion, error) {
	return nil, errOpenAINotConfigured
}

func (s *NoOpTrainingService) SubmitAnswer(ctx context.Context, expertID, questionID, answer string) (bool, error) {
	return false, errOpenAINotConfigured
}

func (s *NoOpTrainingService) RefreshTrainingSummary(ctx context.Context, expertID string) (string, error) {
	return "", errOpenAINotConfigured
}

func (s *NoOpTrainingService) TopicCoverage(ctx context.Context, expertID string) (*service.TopicCoverageReport, error) {
	return nil, errOpenAINotConfigured
}

type NoOpTrainingIngester struct{}

func (s *NoOpTrainingIngester) IngestTrainingMessage(ctx context.Context, expertID, role, content string) (bool, error) {
	return false, errOpenAINotConfigured
}

type NoOpDocumentService struct{}

func (s *NoOpDocumentService) CreateDocument(ctx context.Context, expertID, filename string) (*service.CreateDocumentOutput, error) {
	return nil, errDocumentsNotConfigured
}

func (s *NoOpDocumentService) QueueIngestion(ctx context.Context, expertID, documentID string) (*domain.IngestionJob, error) {
	return nil, errDocumentsNotConfigured
}

func (s *NoOpDocumentService) GetDocument(ctx context.Context, expertID, documentID string) (*domain.Document, error) {
	return nil, errDocumentsNotConfigured
}

func (s *NoOpDocumentService) ListDocuments(ctx context.Context, expertID string) ([]*domain.Document, error) {
	return nil, errDocumentsNotConfigured
}

func (s *NoOpDocumentService) DeleteDocument(ctx context.Context, expertID, documentID string) error {
	return errDocumentsNotConfigured
}

func bootstrapInitialExpert(ctx context.Context, cfg *config.Config, expertRepo *repository.ExpertRepository, authSvc *service.AuthService) error {
	expert, err := expertRepo.GetByName(ctx, cfg.InitExpertName)
	if err != nil && !errors.Is(err, domain.ErrExpertNotFound) {
		return fmt.Errorf("failed to check existing expert: %w", err)
	}

	if expert == nil {
		expert, err = authSvc.CreateExpert(ctx, cfg.InitExpertName)
		if err != nil {
			return fmt.Errorf("failed to create expert: %w", err)
		}
		log.Printf("bootstrap: created expert '%s' (id: %s)", expert.Name, expert.ID)
	} else {
		log.Printf("bootstrap: expert '%s' already exists (id: %s)", expert.Name, expert.ID)
	}

	if cfg.InitAPIKey != "" {
		if !service.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid MENTORA_INIT_API_KEY format (expected 'mnt_<64 hex chars>')")
		}

		if _, err := authSvc.ValidateAPIKey(ctx, cfg.InitAPIKey); err == nil {
			log.Println("bootstrap: API key already exists")
			return nil
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, expert.ID, "bootstrap", cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Printf("bootstrap: created API key")
	}

	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
