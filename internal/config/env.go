package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Model backends understood by llm.NewProvider.
const (
	BackendOllama = "ollama"
	BackendGemini = "gemini"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	JWTSecret      string

	ModelBackend string
	OllamaHost   string
	OllamaModel  string
	AIAPIKey     string
	GenModel     string
	ModelTimeout time.Duration

	OCRTimeout  time.Duration
	MaxUploadMB int

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	LogFile  string
	LogLevel slog.Level
}

// LoadConfig loads the environment variables and return config
func LoadConfig() (*Config, error) {

	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8888"}),
		JWTSecret:      getEnv("JWT_SECRET", ""),

		ModelBackend: strings.ToLower(getEnv("MODEL_BACKEND", BackendOllama)),
		OllamaHost:   getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:  getEnv("OLLAMA_MODEL", "llama3.2:1b"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		ModelTimeout: getEnvDuration("MODEL_TIMEOUT", 120*time.Second),

		OCRTimeout:  getEnvDuration("OCR_TIMEOUT", 60*time.Second),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),

		LogFile:  getEnv("LOG_FILE", "/tmp/chatlens.log"),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.ModelBackend {
	case BackendOllama:
		if c.OllamaModel == "" {
			return fmt.Errorf("OLLAMA_MODEL not set")
		}
	case BackendGemini:
		if c.AIAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY not set for gemini backend")
		}
	default:
		return fmt.Errorf("unsupported MODEL_BACKEND %q", c.ModelBackend)
	}
	if c.ModelTimeout <= 0 || c.OCRTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT and OCR_TIMEOUT must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// ArchiveEnabled reports whether uploaded images should be copied to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.BucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("env value is not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("env value is not a duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
