package configs

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	DB       DBConfig       `yaml:"db"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Reminder ReminderConfig `yaml:"reminder"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"HTTP_MAX_BODY_BYTES"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS"`
}

type DBConfig struct {
	Host           string `yaml:"host" env:"DB_HOST"`
	Port           int    `yaml:"port" env:"DB_PORT"`
	User           string `yaml:"user" env:"DB_USER"`
	Password       string `yaml:"password" env:"DB_PASSWORD"` //nolint:gosec // config struct, not hardcoded cred
	DBName         string `yaml:"dbname" env:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" env:"DB_SSL_MODE"`
	MigrationsPath string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH"`
}

type KafkaConfig struct {
	Brokers    []string      `yaml:"brokers" env:"KAFKA_BROKERS"`
	MaxRetries int           `yaml:"max_retries" env:"KAFKA_MAX_RETRIES"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"KAFKA_RETRY_DELAY"`
}

type RedisConfig struct {
	Addr              string        `yaml:"addr" env:"REDIS_ADDR"`
	Password          string        `yaml:"password" env:"REDIS_PASSWORD"` //nolint:gosec // config struct, not hardcoded cred
	DB                int           `yaml:"db" env:"REDIS_DB"`
	RecommendationTTL time.Duration `yaml:"recommendation_ttl" env:"REDIS_RECOMMENDATION_TTL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// ReminderConfig drives the deadline reminder worker. Window bounds how far
// ahead of now a due date may lie to be considered.
type ReminderConfig struct {
	Enabled  bool          `yaml:"enabled" env:"REMINDER_ENABLED"`
	Interval time.Duration `yaml:"interval" env:"REMINDER_INTERVAL"`
	Window   time.Duration `yaml:"window" env:"REMINDER_WINDOW"`
}

func Load() (*Config, error) {
	return LoadFile(getConfigPath())
}

// LoadFile reads path, fills defaults, applies environment overrides and
// validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from env/flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	setDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	possiblePaths := []string{
		"config/config.yaml",
		"/etc/assignment-service/config.yaml",
		"./config.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "config.yaml"
}

func setDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 10 << 20
	}

	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "file://migrations"
	}

	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.RetryDelay == 0 {
		cfg.Kafka.RetryDelay = 100 * time.Millisecond
	}

	if cfg.Redis.RecommendationTTL == 0 {
		cfg.Redis.RecommendationTTL = 5 * time.Minute
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Reminder.Interval == 0 {
		cfg.Reminder.Interval = time.Hour
	}
	if cfg.Reminder.Window == 0 {
		cfg.Reminder.Window = 3 * 24 * time.Hour
	}
}

func validateConfig(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one Kafka broker must be specified")
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.DBName == "" {
		return fmt.Errorf("database configuration is incomplete")
	}

	if cfg.Redis.Addr == "" {
		return fmt.Errorf("redis address must be specified")
	}

	if cfg.Reminder.Interval < 0 || cfg.Reminder.Window < 0 {
		return fmt.Errorf("reminder interval and window cannot be negative")
	}

	if cfg.Kafka.MaxRetries < 0 {
		return fmt.Errorf("kafka max retries cannot be negative")
	}

	return nil
}
