package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// ChangeNotifier selects the dashboard change feed: "mongo" (change streams),
	// "redis" (pub/sub) or "local" (single process).
	ChangeNotifier string `mapstructure:"CHANGE_NOTIFIER"`

	// Cloudinary image hosting.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`

	// Vehicle recognition: "simulated" or "gemini".
	RecognitionProvider string `mapstructure:"RECOGNITION_PROVIDER"`
	GeminiAPIKey        string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string `mapstructure:"GEMINI_MODEL"`
	// RecognitionCacheTTL keeps Gemini readings in Redis; zero disables the cache.
	RecognitionCacheTTL time.Duration `mapstructure:"RECOGNITION_CACHE_TTL"`

	// Background reconciliation.
	ReconcileEnabled bool   `mapstructure:"RECONCILE_ENABLED"`
	ReconcileCron    string `mapstructure:"RECONCILE_CRON"`

	// Ticket inventory defaults used by the seed command.
	TicketPrefix string `mapstructure:"TICKET_PREFIX"`
	TicketCount  int    `mapstructure:"TICKET_COUNT"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("DATABASE_NAME", "parking")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("CHANGE_NOTIFIER", "mongo")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("CLOUDINARY_FOLDER", "parking/vehicles")
	viper.SetDefault("RECOGNITION_PROVIDER", "simulated")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-flash")
	viper.SetDefault("RECOGNITION_CACHE_TTL", "24h")
	viper.SetDefault("RECONCILE_ENABLED", true)
	viper.SetDefault("RECONCILE_CRON", "@every 10m")
	viper.SetDefault("TICKET_PREFIX", "PARK")
	viper.SetDefault("TICKET_COUNT", 50)
}

// LoadConfig looks for config.yaml in "." and "./config"; environment variables win over the file.
func LoadConfig() {
	LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file path. An empty path searches the defaults.
func LoadConfigFile(path string) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
