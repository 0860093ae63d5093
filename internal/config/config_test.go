package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("MINIO_ENDPOINT", "")

	cfg := FromEnv()

	assert.Equal(t, "eyewear", cfg.DBName)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.MinioEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "15")
	t.Setenv("FACET_CACHE_TTL", "abc")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := FromEnv()

	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 60*time.Second, cfg.FacetCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.MinioUseSSL)
	assert.True(t, cfg.RedisEnabled())
}

func TestRequired(t *testing.T) {
	err := Config{JWTSecret: "s"}.Required()
	assert.EqualError(t, err, "ENV MONGO_URI is required")

	err = Config{MongoURI: "mongodb://localhost"}.Required()
	assert.EqualError(t, err, "ENV JWT_SECRET is required")

	assert.NoError(t, Config{MongoURI: "mongodb://localhost", JWTSecret: "s"}.Required())
}
