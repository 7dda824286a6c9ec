package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Paths      PathsConfig
	Session    SessionConfig
	Sticker    StickerConfig
	Greeting   GreetingConfig
	Database   DatabaseConfig
	WorkerPool WorkerPoolConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Port        string
	Debug       bool
	Environment string
	OS          string
	BaseUrl     string
}

type PathsConfig struct {
	Session string
	Temp    string
}

type SessionConfig struct {
	DBURI                string
	LogLevel             string
	KeepAliveInterval    time.Duration
	ReconnectCooldown    time.Duration
	MaxReconnectAttempts int
	InitTimeout          time.Duration
	QueueCapacity        int
}

type StickerConfig struct {
	Author            string
	StaticName        string
	AnimatedName      string
	Quality           int
	VideoLimitSeconds int
	TranscodeTimeout  time.Duration
	StrictCeiling     bool
	FFmpegPath        string
	MaxDownloadSize   int64
}

type GreetingConfig struct {
	Capacity int
	TTL      time.Duration
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration for the cobra commands.
var Global *Config

// LoadConfig loads configuration from a .env file (if any), the environment
// and defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("[CONFIG] Failed to read .env: %v", err)
	}

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	render := getEnvBool("RENDER", false)
	env := getEnv("APP_ENV", "development")
	if render {
		env = "production"
	}

	// PORT and SESSION_PATH keep the names used by existing deployments.
	port := getEnv("PORT", getEnv("APP_PORT", "3000"))

	appCfg := AppConfig{
		Name:        "PieBot",
		Version:     "v1.0.0",
		Port:        port,
		Debug:       debug,
		Environment: env,
		OS:          getEnv("APP_OS", "PieBot"),
		BaseUrl:     getEnv("APP_BASE_URL", "http://localhost:"+port),
	}

	pathsCfg := PathsConfig{
		Session: getEnv("SESSION_PATH", "storages"),
		Temp:    getEnv("PATH_TEMP", os.TempDir()),
	}

	sessionCfg := SessionConfig{
		DBURI:                getEnv("SESSION_DB_URI", "file:"+filepath.Join(pathsCfg.Session, "whatsapp.db")+"?_foreign_keys=on"),
		LogLevel:             getEnv("WHATSAPP_LOG_LEVEL", "ERROR"),
		KeepAliveInterval:    getEnvDuration("SESSION_KEEPALIVE_INTERVAL", 5*time.Minute),
		ReconnectCooldown:    getEnvDuration("SESSION_RECONNECT_COOLDOWN", 5*time.Second),
		MaxReconnectAttempts: getEnvInt("SESSION_MAX_RECONNECT_ATTEMPTS", 5),
		InitTimeout:          getEnvDuration("SESSION_INIT_TIMEOUT", 2*time.Minute),
		QueueCapacity:        getEnvInt("SESSION_QUEUE_CAPACITY", 100),
	}

	stickerCfg := StickerConfig{
		Author:            getEnv("STICKER_AUTHOR", "PieBot"),
		StaticName:        getEnv("STICKER_STATIC_NAME", "Sticker"),
		AnimatedName:      getEnv("STICKER_ANIMATED_NAME", "Animated"),
		Quality:           getEnvInt("STICKER_QUALITY", 90),
		VideoLimitSeconds: getEnvInt("STICKER_VIDEO_LIMIT_SECONDS", 10),
		TranscodeTimeout:  getEnvDuration("STICKER_TRANSCODE_TIMEOUT", 60*time.Second),
		StrictCeiling:     getEnvBool("STICKER_STRICT_CEILING", false),
		FFmpegPath:        getEnv("FFMPEG_PATH", "ffmpeg"),
		MaxDownloadSize:   getEnvInt64("STICKER_MAX_DOWNLOAD_SIZE", 64*1024*1024),
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Session, "piebot.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "piebot:"),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    pathsCfg,
		Session:  sessionCfg,
		Sticker:  stickerCfg,
		Database: dbCfg,
		Greeting: GreetingConfig{
			Capacity: getEnvInt("GREETING_CAPACITY", 10000),
			TTL:      getEnvDuration("GREETING_TTL", 0),
		},
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("MESSAGE_WORKER_POOL_SIZE", 4),
			QueueSize: getEnvInt("MESSAGE_WORKER_QUEUE_SIZE", 100),
		},
	}

	Global = cfg
	return cfg, nil
}
