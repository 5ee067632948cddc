package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string `mapstructure:"port"`
	UploadDir string `mapstructure:"upload_dir"`

	MongoURI string `mapstructure:"MONGODB_URI"`

	AIProvider   string `mapstructure:"ai_provider"` // "openai" or "gemini"
	AIEndpoint   string `mapstructure:"ai_endpoint"`
	Model        string `mapstructure:"model"`
	EmbedModel   string `mapstructure:"embed_model"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`

	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Retry     RetryConfig     `mapstructure:"retry"`
}

type WeaviateStoreConfig struct {
	Host      string `mapstructure:"host"`
	APIKey    string `mapstructure:"WEAVIATE_APIKEY"`
	ClassName string `mapstructure:"class_name"`
	Dimension int    `mapstructure:"dimension"`
}

type ChunkingConfig struct {
	ChunkWords       int `mapstructure:"chunk_words"`
	OverlapWords     int `mapstructure:"overlap_words"`
	EmbedConcurrency int `mapstructure:"embed_concurrency"`
}

type RetrievalConfig struct {
	SearchLimit       int  `mapstructure:"search_limit"`  // candidates fetched from the index
	ContextLimit      int  `mapstructure:"context_limit"` // candidates kept after re-ranking
	PersistEmptyChats bool `mapstructure:"persist_empty_chats"`
}

type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	BaseDelayMs int `mapstructure:"base_delay_ms"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "5000"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.AIProvider == "" {
		c.AIProvider = "openai"
	}
	if c.WeaviateStoreConfig.ClassName == "" {
		c.WeaviateStoreConfig.ClassName = "DocumentChunk"
	}
	if c.WeaviateStoreConfig.Dimension == 0 {
		c.WeaviateStoreConfig.Dimension = 1536
	}
	if c.Chunking.ChunkWords == 0 {
		c.Chunking.ChunkWords = 800
	}
	if c.Chunking.OverlapWords == 0 {
		c.Chunking.OverlapWords = 80
	}
	if c.Chunking.EmbedConcurrency == 0 {
		c.Chunking.EmbedConcurrency = 4
	}
	if c.Retrieval.SearchLimit == 0 {
		c.Retrieval.SearchLimit = 15
	}
	if c.Retrieval.ContextLimit == 0 {
		c.Retrieval.ContextLimit = 5
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelayMs == 0 {
		c.Retry.BaseDelayMs = 500
	}
}
