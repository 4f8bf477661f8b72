package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is where the server listens when PORT is unset. The CLI
// targets the same port by default.
const DefaultPort = "5200"

type Config struct {
	// Server
	Port           string
	AppEnv         string
	AllowedOrigins string
	PublicAPIKey   string
	MaxImageBytes  int

	// Database
	DBDriver    string // postgres | sqlite
	DatabaseURL string
	SQLitePath  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Object storage
	StorageDriver  string // s3 | local
	UploadDir      string
	PublicBaseURL  string
	R2AccountID    string
	R2AccessKeyID  string
	R2AccessSecret string
	R2Bucket       string
	CDNBaseURL     string
	S3Endpoint     string
	ImagesBucket   string
	AvatarsBucket  string

	// Steam store
	SteamStoreURL   string
	SteamAPIURL     string
	SteamCountry    string
	SteamLanguage   string
	SteamAppListTTL time.Duration
	MetadataRPM     int // per-IP requests per minute on the metadata proxies

	// Jobs
	RatingReconcileInterval time.Duration
	MetadataRefreshInterval time.Duration

	SentryDSN string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", DefaultPort),
		AppEnv:         getEnv("APP_ENV", "development"),
		AllowedOrigins: normalizeOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		PublicAPIKey:   getEnv("PUBLIC_API_KEY", ""),
		MaxImageBytes:  parseInt(getEnv("MAX_IMAGE_BYTES", ""), 10*1024*1024),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "data/gamehub.db"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		StorageDriver:  getEnv("STORAGE_DRIVER", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+DefaultPort), "/"),
		R2AccountID:    getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		R2AccessKeyID:  getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessSecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2Bucket:       getEnv("R2_BUCKET_NAME", ""),
		CDNBaseURL:     strings.TrimRight(getEnv("CDN_BASE_URL", ""), "/"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		ImagesBucket:   getEnv("IMAGES_BUCKET", "game-images"),
		AvatarsBucket:  getEnv("AVATARS_BUCKET", "avatars"),

		SteamStoreURL:   strings.TrimRight(getEnv("STEAM_STORE_URL", "https://store.steampowered.com"), "/"),
		SteamAPIURL:     strings.TrimRight(getEnv("STEAM_API_URL", "https://api.steampowered.com"), "/"),
		SteamCountry:    getEnv("STEAM_COUNTRY", "tr"),
		SteamLanguage:   getEnv("STEAM_LANGUAGE", "turkish"),
		SteamAppListTTL: parseDuration(getEnv("STEAM_APPLIST_TTL", "6h"), 6*time.Hour),
		MetadataRPM:     parseInt(getEnv("METADATA_RATE_LIMIT", ""), 30),

		RatingReconcileInterval: parseDuration(getEnv("RATING_RECONCILE_INTERVAL", "10m"), 10*time.Minute),
		MetadataRefreshInterval: parseDuration(getEnv("METADATA_REFRESH_INTERVAL", "1h"), time.Hour),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// normalizeOrigins trims the spaces around each comma-separated origin.
func normalizeOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
