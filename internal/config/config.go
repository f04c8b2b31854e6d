package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings for the system-of-record.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO / S3-compatible stores.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// KafkaConfig holds settings for the new-document notification topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Group   string
}

// OracleConfig holds settings for the LLM extraction/classification/comparison
// oracles. An empty APIKey disables oracle calls; every call site degrades to
// its deterministic fallback.
type OracleConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// PipelineConfig tunes the verification pipeline and the reconciliation loop.
type PipelineConfig struct {
	// MaxExtractionRetries bounds the classification-failed → re-extract loop.
	MaxExtractionRetries int
	// ReconcileInterval is the readiness polling interval for the reconciler.
	ReconcileInterval time.Duration
	// ScoreThreshold is the case PASS cut-off (0-100).
	ScoreThreshold int
	// BaselinePath points at the known-hash baseline file for the tamper
	// gate. Empty means no baselines.
	BaselinePath string
}

// AppConfig is the centralized configuration struct for both daemons.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Kafka    KafkaConfig
	Oracle   OracleConfig
	Pipeline PipelineConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "document-uploads"),
			Group:   getEnv("KAFKA_GROUP", "docverify-worker"),
		},
		Oracle: OracleConfig{
			APIKey:  getEnv("ORACLE_API_KEY", ""),
			Model:   getEnv("ORACLE_MODEL", "gpt-4o"),
			BaseURL: getEnv("ORACLE_BASE_URL", ""),
			Timeout: time.Duration(getEnvInt("ORACLE_TIMEOUT_SEC", 60)) * time.Second,
		},
		Pipeline: PipelineConfig{
			MaxExtractionRetries: getEnvInt("PIPELINE_MAX_EXTRACTION_RETRIES", 2),
			ReconcileInterval:    time.Duration(getEnvInt("RECONCILE_INTERVAL_SEC", 5)) * time.Second,
			ScoreThreshold:       getEnvInt("CASE_SCORE_THRESHOLD", 85),
			BaselinePath:         getEnv("TAMPER_BASELINE_PATH", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
