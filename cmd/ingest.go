package cmd

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/docchat-io/docchat-be/config"
	"github.com/docchat-io/docchat-be/database"
	"github.com/docchat-io/docchat-be/repository"
	"github.com/docchat-io/docchat-be/service"
	"github.com/docchat-io/docchat-be/types"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index a PDF without going through the HTTP server",
	Long: `Runs the full ingestion pipeline on a local PDF: extract text,
chunk, embed and index, and record the document in MongoDB.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		country, _ := cmd.Flags().GetString("country")
		if filePath == "" {
			log.Fatal("--file is required")
		}
		if country == "" {
			log.Fatal("--country is required")
		}

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

		embedder, _, err := buildAIProvider(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize AI provider: %v", err)
		}

		chunker, err := service.NewChunker(types.ChunkerConfig{
			ChunkWords:   cfg.Chunking.ChunkWords,
			OverlapWords: cfg.Chunking.OverlapWords,
		})
		if err != nil {
			log.Fatalf("Invalid chunking config: %v", err)
		}

		ingestService := service.NewIngestService(
			cfg.UploadDir,
			service.NewPDFService(),
			chunker,
			embedder,
			weaviateDb,
			repository.NewDocumentRepo(mongoDb.Collection("documents")),
			repository.NewChunkRepo(mongoDb.Collection("chunks")),
			cfg.Chunking.EmbedConcurrency,
			cfg.Retry.MaxAttempts,
			time.Duration(cfg.Retry.BaseDelayMs)*time.Millisecond,
		)

		res, err := ingestService.IngestFile(ctx, types.UploadRequest{
			Filename: filepath.Base(filePath),
			Country:  country,
		}, filePath)
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		log.Printf("Indexed document %s with %d chunks\n", res.DocumentID, res.ChunkCount)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("file", "f", "", "Path to the PDF to index")
	ingestCmd.Flags().StringP("country", "c", "", "Country tag for the document")
}
