package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	GigaChat GigaChatConfig
	RAG      RAGConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	EmbeddingModel     string
	InsecureSkipVerify bool
}

type RAGConfig struct {
	TopK         int
	IndexPath    string
	PassagesPath string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// Missing .env is fine, environment variables may be set directly

	apiKey := os.Getenv("GIGACHAT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GIGACHAT_API_KEY is not set")
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	topK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "3"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		GigaChat: GigaChatConfig{
			APIKey:             apiKey,
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			EmbeddingModel:     getEnv("GIGACHAT_EMBEDDING_MODEL", "Embeddings"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		RAG: RAGConfig{
			TopK:         topK,
			IndexPath:    getEnv("INDEX_PATH", "data/index.db"),
			PassagesPath: getEnv("PASSAGES_PATH", "data/passages.txt"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
