package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	Server   `json:"app"`
	Database `json:"database"`
	Redis    `json:"redis"`
	Log      `json:"log"`
	Upload   `json:"upload"`
	MinIO    `json:"minio"`
	Admin    `json:"admin"`
}

// Server groups HTTP, token and rate limit settings.
type Server struct {
	AppPort            string        `json:"AppPort" env:"APP_PORT" env-default:"8080"`
	JWTSecret          string        `json:"JWTSecret" env:"JWT_SECRET"`
	TokenTTL           time.Duration `json:"TokenTTL" env:"TOKEN_TTL" env-default:"72h"`
	RateLimitPerMinute int           `json:"RateLimitPerMinute" env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`
	AllowedOrigins     []string      `json:"AllowedOrigins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	ShutdownTimeout    time.Duration `json:"ShutdownTimeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	ReadTimeout        time.Duration `json:"ReadTimeout" env:"READ_TIMEOUT" env-default:"60s"`
	WriteTimeout       time.Duration `json:"WriteTimeout" env:"WRITE_TIMEOUT" env-default:"60s"`
	// Registration abuse guards; zero disables each one.
	RegisterCooldown       time.Duration `json:"RegisterCooldown" env:"REGISTER_COOLDOWN" env-default:"3s"`
	RegisterMaxPerIPPerDay int           `json:"RegisterMaxPerIPPerDay" env:"REGISTER_MAX_PER_IP_PER_DAY" env-default:"10"`
	// Gin framework configuration
	GinMode string `json:"GinMode" env:"GIN_MODE" env-default:"release"`
	GinPath string `json:"GinPath" env:"GIN_PATH" env-default:"logs/go_gin.log"`
}

// Database holds MySQL connection settings. DatabaseURI wins over the individual parts.
type Database struct {
	DatabaseURI string `json:"DatabaseURI" env:"DATABASE_URI"`
	DBHost      string `json:"DBHost" env:"DB_HOST" env-default:"127.0.0.1"`
	DBPort      string `json:"DBPort" env:"DB_PORT" env-default:"3306"`
	DBUser      string `json:"DBUser" env:"DB_USER" env-default:"root"`
	DBPassword  string `json:"DBPassword" env:"DB_PASSWORD"`
	DBName      string `json:"DBName" env:"DB_NAME" env-default:"lostfound"`
}

// Redis backs the token blacklist. An empty host disables Redis and falls back to memory.
type Redis struct {
	RedisHost     string `json:"RedisHost" env:"REDIS_HOST"`
	RedisPort     int    `json:"RedisPort" env:"REDIS_PORT" env-default:"6379"`
	RedisDB       int    `json:"RedisDB" env:"REDIS_DB" env-default:"0"`
	RedisPassword string `json:"RedisPassword" env:"REDIS_PASSWORD"`
}

// Log configures zap and the lumberjack rolling files.
type Log struct {
	LogLevel      string `json:"Level" env:"LOG_LEVEL" env-default:"info"`
	LogPath       string `json:"Path" env:"LOG_PATH"`
	LogMaxSizeMB  int    `json:"MaxSizeMB" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	LogMaxBackups int    `json:"MaxBackups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	LogMaxAgeDays int    `json:"MaxAgeDays" env:"LOG_MAX_AGE_DAYS" env-default:"7"`
	LogCompress   bool   `json:"Compress" env:"LOG_COMPRESS" env-default:"false"`
}

// Upload selects where attached images are stored.
type Upload struct {
	// UploadBackend is "local" or "minio".
	UploadBackend  string `json:"Backend" env:"UPLOAD_BACKEND" env-default:"local"`
	UploadDir      string `json:"Dir" env:"UPLOAD_DIR" env-default:"static/uploads"`
	UploadMaxBytes int64  `json:"MaxBytes" env:"UPLOAD_MAX_BYTES" env-default:"10485760"`
}

// MinIO is only read when UploadBackend is "minio".
type MinIO struct {
	MinIOEndpoint  string `json:"Endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	MinIOAccessKey string `json:"AccessKey" env:"MINIO_USER"`
	MinIOSecretKey string `json:"SecretKey" env:"MINIO_PASSWORD"`
	MinIOBucket    string `json:"Bucket" env:"MINIO_BUCKET" env-default:"uploads"`
	MinIOUseSSL    bool   `json:"UseSSL" env:"MINIO_USE_SSL" env-default:"false"`
}

// Admin lists user ids that are always confirmed admins.
type Admin struct {
	AdminUserIDs []string `json:"UserIDs" env:"ADMIN_USER_IDS" env-separator:","`
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: .env (optional) -> config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// a missing .env is fine; real deployments use the environment
	_ = godotenv.Load()

	c, err := Parse(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if c.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	cfg = c
	loaded = true
	return cfg
}

// Parse reads the JSON file at path when it exists and applies env overrides and defaults.
func Parse(path string) (AppConfig, error) {
	var c AppConfig
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &c); err != nil {
			return c, fmt.Errorf("cleanenv.ReadConfig: %w", err)
		}
		return c, nil
	}
	if err := cleanenv.ReadEnv(&c); err != nil {
		return c, fmt.Errorf("cleanenv.ReadEnv: %w", err)
	}
	return c, nil
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Tests use it to avoid touching the environment.
func Set(c AppConfig) {
	cfg = c
	loaded = true
}
