package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/docchat-io/docchat-be/config"
	"github.com/docchat-io/docchat-be/database"
	"github.com/docchat-io/docchat-be/handler"
	"github.com/docchat-io/docchat-be/middleware"
	"github.com/docchat-io/docchat-be/repository"
	"github.com/docchat-io/docchat-be/service"
	"github.com/docchat-io/docchat-be/types"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document chat server",
	Long:  `Starts the HTTP server that handles uploads, chat and chat history`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()

		mongoClient, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Printf("mongo disconnect: %v", err)
			}
		}()
		mongoDb := mongoClient.Database("docchat")

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		embedder, generator, err := buildAIProvider(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize AI provider: %v", err)
		}

		// Initialize repositories
		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))
		chunkRepo := repository.NewChunkRepo(mongoDb.Collection("chunks"))
		chatRepo := repository.NewChatRepo(mongoDb.Collection("chats"))
		userRepo := repository.NewUserRepo(mongoDb.Collection("users"))

		// Initialize services
		chunker, err := service.NewChunker(types.ChunkerConfig{
			ChunkWords:   cfg.Chunking.ChunkWords,
			OverlapWords: cfg.Chunking.OverlapWords,
		})
		if err != nil {
			log.Fatalf("Invalid chunking config: %v", err)
		}
		pdfService := service.NewPDFService()
		baseDelay := time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond
		ingestService := service.NewIngestService(
			cfg.UploadDir,
			pdfService,
			chunker,
			embedder,
			weaviateDb,
			documentRepo,
			chunkRepo,
			cfg.Chunking.EmbedConcurrency,
			cfg.Retry.MaxAttempts,
			baseDelay,
		)
		chatService := service.NewChatService(embedder, weaviateDb, generator, documentRepo, chatRepo, service.ChatServiceConfig{
			SearchLimit:       cfg.Retrieval.SearchLimit,
			ContextLimit:      cfg.Retrieval.ContextLimit,
			PersistEmptyChats: cfg.Retrieval.PersistEmptyChats,
			MaxAttempts:       cfg.Retry.MaxAttempts,
			BaseDelay:         baseDelay,
		})
		websocketService := service.NewWebSocketService(chatService)
		userService := service.NewUserService(userRepo)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		authHandler := handler.NewAuthHandler(userService)
		uploadHandler := handler.NewUploadHandler(ingestService)
		chatHandler := handler.NewChatHandler(chatService, websocketService)

		authLimiter := middleware.NewAuthRateLimiter(5, 15*time.Minute)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		api := router.Group("/api")

		authRoutes := api.Group("/auth")
		authRoutes.Use(authLimiter.Middleware)
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware)
		{
			protected.POST("/docs/upload", uploadHandler.Upload)
			protected.POST("/chat", chatHandler.Chat)
			protected.GET("/chat/history", chatHandler.History)
			protected.GET("/chat/ws", chatHandler.ChatWS)
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

// buildAIProvider wires the embedding and generation backends named by
// ai_provider. Both sides always come from the same provider so vector
// dimensions stay consistent with the configured embedding model.
func buildAIProvider(ctx context.Context, cfg *config.Config) (service.Embedder, service.Generator, error) {
	switch cfg.AIProvider {
	case "openai", "":
		embedder := service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.WeaviateStoreConfig.Dimension)
		generator := service.NewOpenAIGenerator(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
		return embedder, generator, nil
	case "gemini":
		embedder, err := service.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel, cfg.WeaviateStoreConfig.Dimension)
		if err != nil {
			return nil, nil, err
		}
		generator, err := service.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return embedder, generator, nil
	default:
		return nil, nil, fmt.Errorf("unknown ai provider %q", cfg.AIProvider)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
}
