package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Metadata backends.
const (
	BackendMySQL  = "mysql"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Asset store backends.
const (
	AssetBackendMinio  = "minio"
	AssetBackendS3     = "s3"
	AssetBackendMemory = "memory"
)

// Config stores the application configuration.
type Config struct {
	HTTPAddr          string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxUploadBytes    int64
	MetadataBackend   string // mysql, mongo or memory
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBDebug           bool
	MongoURI          string
	MongoDatabase     string
	AssetBackend      string // minio, s3 or memory
	AssetFolder       string // Prefix for every uploaded object key
	AssetPublicURL    string // Base URL assets are served from; derived from the backend when empty
	AssetTimeout      time.Duration
	VideoOwnsAsset    bool // deleteVideo also destroys the remote asset
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string
	MinioRegion       string
	MinioUseSSL       bool
	S3Bucket          string
	S3Region          string
	FFprobePath       string
	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CacheSize     int
	// 日志配置
	LogLevel      string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("30s") or plain seconds ("30").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second),
		MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", 100<<20),
		MetadataBackend: strings.ToLower(getEnv("METADATA_BACKEND", BackendMySQL)),
		DBHost:          getEnv("DB_HOST", "127.0.0.1"),
		DBPort:          getEnv("DB_PORT", "3306"),
		DBUser:          getEnv("DB_USER", "root"),
		DBPassword:      os.Getenv("DB_PASSWORD"), // no hardcoded default for passwords
		DBName:          getEnv("DB_NAME", "mediahub"),
		DBDebug:         getEnvBool("DB_DEBUG", false),
		MongoURI:        getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "mediahub"),
		AssetBackend:    strings.ToLower(getEnv("ASSET_BACKEND", AssetBackendMinio)),
		AssetFolder:     strings.Trim(getEnv("ASSET_FOLDER", "mediahub"), "/"),
		AssetPublicURL:  strings.TrimRight(getEnv("ASSET_PUBLIC_URL", ""), "/"),
		AssetTimeout:    getEnvDuration("ASSET_TIMEOUT", 30*time.Second),
		VideoOwnsAsset:  getEnvBool("VIDEO_OWNS_ASSET", false),
		MinioEndpoint:   getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getEnv("MINIO_BUCKET", "mediahub"),
		MinioRegion:     getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", ""),
		FFprobePath:     getEnv("FFPROBE_PATH", "ffprobe"),
		RedisHost:       getEnv("REDIS_HOST", ""), // 为空时使用进程内LRU缓存
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTL:        getEnvDuration("CACHE_TTL", time.Minute),
		CacheSize:       getEnvInt("CACHE_SIZE", 512),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
		LogMaxSize:      getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:   getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAge:       getEnvInt("LOG_MAX_AGE_DAYS", 30),
	}
	return cfg
}

// RedisEnabled reports whether a Redis listing cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}
