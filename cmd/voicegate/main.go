package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/adapters/embeddings"
	"github.com/prushal/voicegate/adapters/llm"
	"github.com/prushal/voicegate/adapters/mongo"
	"github.com/prushal/voicegate/adapters/retriever"
	"github.com/prushal/voicegate/adapters/sessionstore"
	"github.com/prushal/voicegate/adapters/stt"
	"github.com/prushal/voicegate/adapters/tts"
	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/internal/api"
	"github.com/prushal/voicegate/internal/auth"
	"github.com/prushal/voicegate/internal/config"
	"github.com/prushal/voicegate/internal/websocket"
	"github.com/prushal/voicegate/personas"
	"github.com/prushal/voicegate/resolver"
	"github.com/prushal/voicegate/usecase"
)

func main() {
	// Optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Shared OpenAI client for Whisper, TTS fallback, and embeddings.
	var openaiClient *openai.Client
	openaiKeys := cfg.OpenAIKeyList()
	if len(openaiKeys) > 0 {
		openaiClient = openai.NewClient(openaiKeys[0])
	}

	// STT chain: Google Cloud when enabled, Whisper as the other leg.
	var primarySTT, fallbackSTT repositories.Transcriber
	if cfg.GoogleSTTEnabled {
		primarySTT = stt.NewGoogleTranscriber("", logger)
	}
	if openaiClient != nil {
		whisper := stt.NewWhisperTranscriber(openaiClient, logger)
		if primarySTT == nil {
			primarySTT = whisper
		} else {
			fallbackSTT = whisper
		}
	}
	if primarySTT == nil {
		logger.Warn("No STT provider configured, voice input will degrade to error sentinels")
	}
	sttChain := stt.NewChain(primarySTT, fallbackSTT, cfg.NoiseRMSThreshold, logger)

	// TTS chain: ElevenLabs primary, OpenAI fallback, text-only degrade.
	var primaryTTS, fallbackTTS repositories.Synthesizer
	if cfg.ElevenLabsAPIKey != "" {
		el, err := tts.NewElevenLabs(tts.ElevenLabsConfig{
			APIKey:  cfg.ElevenLabsAPIKey,
			VoiceID: cfg.ElevenLabsVoiceID,
			ModelID: cfg.ElevenLabsModelID,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to configure ElevenLabs", zap.Error(err))
		}
		primaryTTS = el
	}
	if openaiClient != nil {
		openaiTTS := tts.NewOpenAITTS(openaiClient, logger)
		if primaryTTS == nil {
			primaryTTS = openaiTTS
		} else {
			fallbackTTS = openaiTTS
		}
	}
	ttsChain := tts.NewChain(primaryTTS, fallbackTTS, logger)

	// Chat providers, keyed by the name personas reference.
	providers := make(map[string]repositories.ChatProvider)
	if len(openaiKeys) > 0 {
		providers["openai"] = llm.NewOpenAIChat(openaiKeys, cfg.OpenAIModel, logger)
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiChat(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Fatal("Failed to configure Gemini", zap.Error(err))
		}
		providers["gemini"] = gemini
	}
	if len(providers) == 0 {
		logger.Warn("No chat provider configured, replies fall back to keyword rules")
	}

	// Session store: Redis when configured, in-process memory otherwise.
	var store repositories.SessionStore
	if cfg.RedisAddr != "" {
		redisStore, err := sessionstore.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store = redisStore
		logger.Info("Using Redis session store", zap.String("addr", cfg.RedisAddr))
	} else {
		store = sessionstore.NewMemory()
		logger.Info("Using in-memory session store")
	}
	defer store.Close()

	// Conversation archive is optional; without Mongo the history API
	// reports itself disabled.
	var archive repositories.ConversationArchive
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.NewClient(cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoClient.Close(context.Background())
		archive = mongo.NewConversationArchive(mongoClient.Database)
	}

	// Retrieval: a shared Qdrant collection when configured, otherwise
	// per-persona JSON files loaded by the registry.
	var embedder repositories.Embedder
	if openaiClient != nil {
		embedder = embeddings.NewOpenAIEmbedder(openaiClient)
	}
	var shared repositories.Retriever
	if cfg.QdrantAddr != "" && embedder != nil {
		qdrant, err := retriever.NewQdrant(cfg.QdrantAddr, cfg.QdrantCollection, embedder)
		if err != nil {
			logger.Fatal("Failed to connect to Qdrant", zap.Error(err))
		}
		shared = qdrant
		logger.Info("Using Qdrant retriever",
			zap.String("addr", cfg.QdrantAddr),
			zap.String("collection", cfg.QdrantCollection))
	}

	registry, err := personas.NewRegistry(personas.Options{
		Dir:             cfg.PersonaDir,
		DefaultID:       cfg.DefaultPersona,
		Embedder:        embedder,
		SharedRetriever: shared,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to load personas", zap.Error(err))
	}
	logger.Info("Personas loaded", zap.Strings("ids", registry.IDs()))

	res := resolver.New(store, archive, providers, logger)
	svc := usecase.NewConversationService(sttChain, ttsChain, res, registry, store, logger)

	// Initialize WebSocket hub with conversation service
	hub := websocket.NewHub(svc, logger)
	go hub.Run()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	tokens := auth.NewTokens(cfg.JWTSecret)
	handler := api.NewHandler(hub, svc, tokens, archive, registry, logger)
	handler.InitRoutes(e)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
