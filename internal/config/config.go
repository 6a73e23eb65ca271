package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string
	ServerHost string // Swagger host 설정용
	AppName    string

	// Database
	DatabaseURL string

	// Google Places
	GoogleMapsAPIKey string
	PlacesTimeout    time.Duration
	PlacesMaxRetries int
	PlacesLanguage   string
	CategoryHint     string
	CategorySynonyms []string

	// Shared link resolution
	LinkAutoCreateCafe   bool
	LinkRedirectTimeout  time.Duration
	LinkRedirectCacheTTL time.Duration

	// Image upload tokens (verified by the image worker with the same secret)
	JWTSecretKey             string
	UploadTokenExpireMinutes int

	// Firebase
	FirebaseCredentials     string
	FirebaseCredentialsPath string

	// SigNoz
	SigNozEndpoint string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),
		ServerHost: getEnv("SERVER_HOST", "localhost:8080"),
		AppName:    getEnv("APP_NAME", "coffeemode"),

		// Database - DATABASE_URL 우선, 없으면 개별 환경변수로 구성
		DatabaseURL: getDatabaseURL(),

		// Google Places
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		PlacesTimeout:    getEnvAsDuration("PLACES_TIMEOUT", 10*time.Second),
		PlacesMaxRetries: getEnvAsInt("PLACES_MAX_RETRIES", 2),
		PlacesLanguage:   getEnv("PLACES_LANGUAGE", ""),
		CategoryHint:     getEnv("RESOLVER_CATEGORY_HINT", "cafe"),
		CategorySynonyms: getEnvAsList("RESOLVER_CATEGORY_SYNONYMS", []string{"cafe", "咖啡"}),

		// Shared link resolution
		LinkAutoCreateCafe:   getEnvAsBool("LINK_AUTO_CREATE_CAFE", false),
		LinkRedirectTimeout:  getEnvAsDuration("LINK_REDIRECT_TIMEOUT", 5*time.Second),
		LinkRedirectCacheTTL: getEnvAsDuration("LINK_REDIRECT_CACHE_TTL", 24*time.Hour),

		// Image upload tokens
		JWTSecretKey:             getEnv("JWT_SECRET_KEY", ""),
		UploadTokenExpireMinutes: getEnvAsInt("UPLOAD_TOKEN_EXPIRE_MINUTES", 10),

		// Firebase
		FirebaseCredentials:     getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),

		// SigNoz
		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

// IsDevelopment reports whether the server runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.ServerEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvAsDuration accepts Go duration strings ("5s") or plain seconds ("5")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	// 1. DATABASE_URL이 있으면 그대로 사용
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	// 2. 개별 환경변수로 구성
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "coffeemode")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
