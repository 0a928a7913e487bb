package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds tunables for asset recompression.
type Config struct {
	// MaxDim caps the longest dimension of transcoded images.
	MaxDim int
	// JPEGQuality is the quality setting used when re-encoding to JPEG.
	JPEGQuality int
}

// Load reads configuration from environment variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	maxDim, _ := strconv.Atoi(getEnv("MHTX_MAX_DIM", "1024"))
	quality, _ := strconv.Atoi(getEnv("MHTX_JPEG_QUALITY", "30"))

	if maxDim <= 0 {
		maxDim = 1024
	}
	if quality <= 0 || quality > 100 {
		quality = 30
	}

	return &Config{
		MaxDim:      maxDim,
		JPEGQuality: quality,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
