package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable the bridge reads from the environment.
type Config struct {
	Port          string
	Environment   string
	PublicBaseURL string
	EditorBaseURL string

	RemoteEnabled  bool
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	DataDir        string

	JWTSecret  string
	TokenTTL   time.Duration
	SessionCap int

	RateWindow       time.Duration
	RateMaxProtocol  int
	RateMaxCreate    int
	RateMaxSession   int

	CORSOrigins []string
}

// Load builds a Config from environment variables with development fallbacks.
func Load() Config {
	return Config{
		Port:          getenv("PORT", "8080"),
		Environment:   getenv("APP_ENV", "development"),
		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		EditorBaseURL: strings.TrimRight(getenv("EDITOR_BASE_URL", "http://localhost:9980"), "/"),

		RemoteEnabled:  getenvBool("REMOTE_STORAGE_ENABLED", false),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getenv("MINIO_BUCKET", "documents"),
		MinioUseSSL:    getenvBool("MINIO_USE_SSL", false),
		DataDir:        getenv("DATA_DIR", "./data/files"),

		JWTSecret:  getenv("JWT_SECRET", "docbridge-dev-secret"),
		TokenTTL:   time.Duration(getenvInt("TOKEN_TTL_MINUTES", 240)) * time.Minute,
		SessionCap: getenvInt("SESSION_CAP_PER_USER", 8),

		RateWindow:      time.Duration(getenvInt("RATE_WINDOW_SECONDS", 60)) * time.Second,
		RateMaxProtocol: getenvInt("RATE_MAX_PROTOCOL", 120),
		RateMaxCreate:   getenvInt("RATE_MAX_CREATE", 10),
		RateMaxSession:  getenvInt("RATE_MAX_SESSION", 20),

		CORSOrigins: splitOrigins(getenv("CORS_ORIGINS", "")),
	}
}

// Production reports whether the server runs with production hardening on.
func (c Config) Production() bool {
	return c.Environment == "production"
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, strings.TrimRight(p, "/"))
		}
	}
	return origins
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
