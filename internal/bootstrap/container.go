package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-docqa-be/internal/config"
	"ai-docqa-be/internal/controller"
	"ai-docqa-be/internal/handler"
	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/internal/repository/unitofwork"
	"ai-docqa-be/internal/service"
	internalWS "ai-docqa-be/internal/websocket"
	"ai-docqa-be/pkg/embedding"
	"ai-docqa-be/pkg/embedding/jina"
	"ai-docqa-be/pkg/llm/factory"
	"ai-docqa-be/pkg/rag"
	"ai-docqa-be/pkg/rag/search"
	"ai-docqa-be/pkg/rag/session"

	pktNats "ai-docqa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QAController       controller.IQAController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    service.IAuditService

	// WebSockets & Progress Stream
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *internalWS.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := internalWS.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Pipeline Components
	sessionStore := session.NewStore(
		time.Duration(cfg.Pipeline.SessionTTLMin)*time.Minute,
		session.DefaultPurgeInterval,
		cfg.Pipeline.HistoryWindow,
	)
	retriever := search.NewVectorRetriever(embeddingProvider, uowFactory)
	ragConfig := rag.Config{
		MaxSubQuestions: cfg.Pipeline.MaxSubQuestions,
		TopK:            cfg.Pipeline.TopK,
		StageTimeout:    time.Duration(cfg.Pipeline.StageTimeoutSec) * time.Second,
	}

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.UploadTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.UploadTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
		cfg.Pipeline.ChunkSize,
		cfg.Pipeline.ChunkOverlap,
	)

	auditService := service.NewAuditService(natsSub, sysLogger)

	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		cfg.App.UploadDir,
		sysLogger,
	)

	qaService := service.NewQAService(
		uowFactory,
		llmProvider,
		retriever,
		sessionStore,
		ragConfig,
		natsPub,
	)
	qaService.SetProgressObserver(wsHub)

	// 7. Handlers & Controllers
	progressHandler := handler.NewProgressHandler(wsHub, uowFactory, wsLogger)

	return &Container{
		QAController:       controller.NewQAController(qaService),
		DocumentController: controller.NewDocumentController(documentService),
		ConsumerService:    consumerService,
		AuditService:       auditService,
		ProgressHandler:    progressHandler,
		WebSocketHub:       wsHub,
	}
}
