package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	AwsAccessKey      string
	AwsSecretKey      string
	AwsRegion         string
	BucketName        string
	AIAPIKey          string
	GenModel          string
	Port              string
	LowStockThreshold int
	AirQualityURL     string
	AirQualityKey     string
	AirQualityCity    string
	AirQualityPollMin int
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		AwsAccessKey:      getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:      getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:         getEnv("AWS_REGION", "us-east-2"),
		BucketName:        getEnv("BUCKET_NAME", "medisync-reports"),
		AIAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GenModel:          getEnv("GEN_MODEL", "gemini-1.5-flash"),
		Port:              getEnv("PORT", "8080"),
		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 5),
		AirQualityURL:     getEnv("AIR_QUALITY_URL", "https://api.waqi.info"),
		AirQualityKey:     getEnv("AIR_QUALITY_TOKEN", ""),
		AirQualityCity:    getEnv("AIR_QUALITY_CITY", "delhi"),
		AirQualityPollMin: getEnvInt("AIR_QUALITY_POLL_MINUTES", 30),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
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
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
