package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Port            string
	CORSOrigins     []string

	RedisAddr     string
	RedisPassword string
	FacetCacheTTL time.Duration

	UploadDir     string
	PublicBaseURL string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment without
// touching .env files.
func FromEnv() Config {
	return Config{
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "eyewear"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		Port:            getEnvOrDefault("PORT", "4000"),
		CORSOrigins:     getListEnv("CORS_ORIGINS", []string{"http://localhost:3000"}),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		FacetCacheTTL: getDurationEnv("FACET_CACHE_TTL", 60, time.Second),

		UploadDir:     getEnvOrDefault("UPLOAD_DIR", "./public/uploads"),
		PublicBaseURL: getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:4000"),

		MinioEndpoint:  getEnvOrDefault("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnvOrDefault("MINIO_BUCKET", "product-images"),
		MinioUseSSL:    getBoolEnv("MINIO_USE_SSL", false),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
