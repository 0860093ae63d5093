package config

import (
	"fmt"
	"strings"
)

// Required reports the first mandatory setting that is missing.
func (c Config) Required() error {
	required := map[string]string{
		"MONGO_URI":  c.MongoURI,
		"JWT_SECRET": c.JWTSecret,
	}
	for _, key := range []string{"MONGO_URI", "JWT_SECRET"} {
		if strings.TrimSpace(required[key]) == "" {
			return fmt.Errorf("ENV %s is required", key)
		}
	}
	return nil
}

func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}
