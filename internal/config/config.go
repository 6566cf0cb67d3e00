package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Pipeline thresholds that have moved across tuning iterations (relevance
// gate, context chunk cap, retrieval depth) live here as named fields so
// they can be adjusted without touching control flow.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	DBPath             string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string

	// RAG pipeline tuning.
	ChunkSize        int     // target chunk size in characters
	ChunkOverlap     int     // overlap between consecutive unstructured chunks
	TopK             int     // retrieval depth per query
	RelevanceGate    float64 // minimum score for a chunk to enter a prompt
	MaxContextChunks int     // hard cap on chunks per prompt
	HistoryWindow    int     // conversation turns rendered into a prompt
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "nomic-embed-text"),
		DBPath:             getEnv("DB_PATH", "./data/klyra.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	cfg.LogLevel = parseLogLevel(getEnv("LOG_LEVEL", "info"))

	// Parse QDRANT_VECTOR_SIZE.
	// This must match the output vector size of the embeddings model. If the
	// vector size changes, the Qdrant collection must be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 100); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getEnvInt("TOP_K_RESULTS", 8); err != nil {
		return nil, err
	}
	if cfg.MaxContextChunks, err = getEnvInt("MAX_CONTEXT_CHUNKS", 8); err != nil {
		return nil, err
	}
	if cfg.HistoryWindow, err = getEnvInt("HISTORY_WINDOW", 10); err != nil {
		return nil, err
	}
	if cfg.RelevanceGate, err = getEnvFloat("RELEVANCE_GATE", 0.55); err != nil {
		return nil, err
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	// Create ./data directory if it doesn't exist (for the DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets a positive integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return parsed, nil
}

// getEnvFloat gets a float environment variable in [0,1] or returns a default value.
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	if parsed < 0 || parsed > 1 {
		return 0, fmt.Errorf("%s must be between 0 and 1", key)
	}
	return parsed, nil
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
