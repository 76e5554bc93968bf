package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ConfigStruct struct {
	Port                      string
	JwtSecret                 string
	TokenExpire               time.Duration
	CookieSecure              bool
	WaitForRedisConnectionSec int
	RedisUrl                  string
	RedisPassword             string
	MongodbDatabaseUrl        string
	MongodbDatabaseName       string
	ServerAddress             string
	CorsAllowedOrigins        []string
	SentryDns                 string
	SentryRelease             string
	PrintErrors               bool
	LogLevel                  string
	LogPretty                 bool
	OmdbApiUrl                string
	OmdbApiKey                string
	TmdbApiUrl                string
	TmdbApiKey                string
	RecentMoviesCount         int
	RecentMoviesCandidates    int
	RecentMoviesMaxPages      int
	RecentMoviesYear          int
	RecentMoviesCacheWindow   time.Duration
	FederatedProvider         string
	GoogleClientId            string
	FirebaseCredentialsFile   string
	RabbitmqUrl               string
	ResetPasswordUrl          string
	UploadDir                 string
	DefaultPhotoUrl           string
}

const (
	defaultPort                    = "5001"
	defaultTokenExpire             = time.Hour
	defaultOmdbApiUrl              = "https://www.omdbapi.com/"
	defaultTmdbApiUrl              = "https://api.themoviedb.org"
	defaultRecentMoviesCount       = 12
	defaultRecentMoviesCandidates  = 24
	defaultRecentMoviesMaxPages    = 6
	defaultRecentMoviesCacheWindow = 15 * time.Minute
	defaultUploadDir               = "uploads"
)

// RequestTimeout bounds every api request. RecentMoviesRefreshTimeout must stay
// below it so a slow refresh is reported by the movie handler.
const (
	RequestTimeout             = 30 * time.Second
	RecentMoviesRefreshTimeout = 20 * time.Second
)

var configs = ConfigStruct{}

func GetConfigs() ConfigStruct {
	return configs
}

// SetConfigs replaces the loaded configs, tests use it to inject secrets and upstream urls.
func SetConfigs(c ConfigStruct) {
	configs = c
}

func LoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	configs.Port = getEnv("PORT", defaultPort)
	configs.JwtSecret = os.Getenv("JWT_SECRET")
	configs.TokenExpire = getDurationEnv("TOKEN_EXPIRE", defaultTokenExpire)
	configs.CookieSecure = os.Getenv("COOKIE_SECURE") == "true"
	configs.RedisUrl = os.Getenv("REDIS_URL")
	configs.RedisPassword = os.Getenv("REDIS_PASSWORD")
	configs.MongodbDatabaseUrl = os.Getenv("MONGODB_DATABASE_URL")
	configs.MongodbDatabaseName = getEnv("MONGODB_DATABASE_NAME", "movie_browser")
	configs.WaitForRedisConnectionSec, _ = strconv.Atoi(os.Getenv("WAIT_REDIS_CONNECTION_SEC"))
	configs.CorsAllowedOrigins = strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), "---")
	for i := range configs.CorsAllowedOrigins {
		configs.CorsAllowedOrigins[i] = strings.TrimSpace(configs.CorsAllowedOrigins[i])
	}
	configs.SentryDns = os.Getenv("SENTRY_DNS")
	configs.SentryRelease = os.Getenv("SENTRY_RELEASE")
	configs.PrintErrors = os.Getenv("PRINT_ERRORS") == "true"
	configs.LogLevel = getEnv("LOG_LEVEL", "info")
	configs.LogPretty = os.Getenv("LOG_PRETTY") == "true"
	configs.ServerAddress = getEnv("SERVER_ADDRESS", "http://localhost:"+configs.Port)

	configs.OmdbApiUrl = getEnv("OMDB_API_URL", defaultOmdbApiUrl)
	configs.OmdbApiKey = os.Getenv("OMDB_API_KEY")
	configs.TmdbApiUrl = getEnv("TMDB_API_URL", defaultTmdbApiUrl)
	configs.TmdbApiKey = os.Getenv("TMDB_API_KEY")

	configs.RecentMoviesCount = getIntEnv("RECENT_MOVIES_COUNT", defaultRecentMoviesCount)
	configs.RecentMoviesCandidates = getIntEnv("RECENT_MOVIES_CANDIDATES", defaultRecentMoviesCandidates)
	configs.RecentMoviesMaxPages = getIntEnv("RECENT_MOVIES_MAX_PAGES", defaultRecentMoviesMaxPages)
	configs.RecentMoviesYear = getIntEnv("RECENT_MOVIES_YEAR", time.Now().Year())
	configs.RecentMoviesCacheWindow = getDurationEnv("RECENT_MOVIES_CACHE_WINDOW", defaultRecentMoviesCacheWindow)

	configs.FederatedProvider = getEnv("FEDERATED_PROVIDER", "google")
	configs.GoogleClientId = os.Getenv("GOOGLE_CLIENT_ID")
	configs.FirebaseCredentialsFile = os.Getenv("FIREBASE_CREDENTIALS_FILE")
	configs.RabbitmqUrl = os.Getenv("RABBITMQ_URL")
	configs.ResetPasswordUrl = os.Getenv("RESET_PASSWORD_URL")
	configs.UploadDir = getEnv("UPLOAD_DIR", defaultUploadDir)
	configs.DefaultPhotoUrl = getEnv("DEFAULT_PHOTO_URL", configs.ServerAddress+"/uploads/default-profile.jpg")
}

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		log.Printf("Invalid duration for %s: %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
