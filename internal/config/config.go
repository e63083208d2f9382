package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// App holds the runtime configuration shared by the directory, attendance,
// report and worker binaries.
type App struct {
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	DirectoryPort  string `yaml:"directory_port"`
	AttendancePort string `yaml:"attendance_port"`
	ReportPort     string `yaml:"report_port"`

	Postgres Postgres `yaml:"postgres"`
	Mongo    Mongo    `yaml:"mongo"`

	RedisAddr        string `yaml:"redis_addr"`
	QueueBackend     string `yaml:"queue_backend"`
	QueueKey         string `yaml:"queue_key"`
	RateLimitPerMin  int    `yaml:"rate_limit_per_min"`
	RateLimitBackend string `yaml:"rate_limit_backend"`

	ReportFanoutLimit int           `yaml:"report_fanout_limit"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Postgres describes the student directory store.
type Postgres struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DB       string `yaml:"db"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	SSLMode  string `yaml:"sslmode"`
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

// Mongo describes the attendance log store.
type Mongo struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	URI        string `yaml:"uri"`
	DB         string `yaml:"db"`
	Collection string `yaml:"collection"`
	MaxPool    uint64 `yaml:"max_pool"`
}

func defaults() App {
	return App{
		Env:            "dev",
		LogLevel:       "info",
		LogFormat:      "text",
		DirectoryPort:  "8001",
		AttendancePort: "8002",
		ReportPort:     "8003",
		Postgres: Postgres{
			User:     "students",
			Password: "students",
			DB:       "studentdb",
			Host:     "localhost",
			Port:     "5432",
			SSLMode:  "disable",
			MaxConns: 5,
		},
		Mongo: Mongo{
			Username:   "mongo",
			Password:   "mongo",
			Host:       "localhost",
			Port:       "27017",
			DB:         "attendance_db",
			Collection: "records",
			MaxPool:    20,
		},
		RedisAddr:        "localhost:6379",
		QueueBackend:     "none",
		QueueKey:         "attendance:events",
		RateLimitPerMin:  600,
		RateLimitBackend: "memory",
		ShutdownTimeout:  10 * time.Second,
	}
}

// Load returns configuration built from defaults, an optional YAML file at
// CONFIG_PATH and environment variables, in that order of precedence.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return App{}, err
		}
	}

	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.DirectoryPort = getEnv("DIRECTORY_PORT", cfg.DirectoryPort)
	cfg.AttendancePort = getEnv("ATTENDANCE_PORT", cfg.AttendancePort)
	cfg.ReportPort = getEnv("REPORT_PORT", cfg.ReportPort)

	cfg.Postgres.User = getEnv("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = getEnv("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.DB = getEnv("POSTGRES_DB", cfg.Postgres.DB)
	cfg.Postgres.Host = getEnv("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = getEnv("POSTGRES_PORT", cfg.Postgres.Port)
	cfg.Postgres.SSLMode = getEnv("POSTGRES_SSLMODE", cfg.Postgres.SSLMode)
	cfg.Postgres.URL = getEnv("DATABASE_URL", cfg.Postgres.URL)

	cfg.Mongo.Username = getEnv("MONGO_INITDB_ROOT_USERNAME", cfg.Mongo.Username)
	cfg.Mongo.Password = getEnv("MONGO_INITDB_ROOT_PASSWORD", cfg.Mongo.Password)
	cfg.Mongo.Host = getEnv("MONGO_HOST", cfg.Mongo.Host)
	cfg.Mongo.Port = getEnv("MONGO_PORT", cfg.Mongo.Port)
	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.DB = getEnv("MONGO_DB", cfg.Mongo.DB)
	cfg.Mongo.Collection = getEnv("MONGO_COLLECTION", cfg.Mongo.Collection)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.QueueBackend = getEnv("QUEUE_BACKEND", cfg.QueueBackend)
	cfg.QueueKey = getEnv("QUEUE_KEY", cfg.QueueKey)
	cfg.RateLimitBackend = getEnv("RATE_LIMIT_BACKEND", cfg.RateLimitBackend)

	var err error
	if cfg.Postgres.MaxConns, err = intEnv("POSTGRES_MAX_CONNS", cfg.Postgres.MaxConns); err != nil {
		return App{}, err
	}
	maxPool, err := intEnv("MONGO_MAX_POOL", int(cfg.Mongo.MaxPool))
	if err != nil {
		return App{}, err
	}
	if maxPool < 0 {
		return App{}, fmt.Errorf("invalid MONGO_MAX_POOL: %d", maxPool)
	}
	cfg.Mongo.MaxPool = uint64(maxPool)
	if cfg.RateLimitPerMin, err = intEnv("RATE_LIMIT_PER_MIN", cfg.RateLimitPerMin); err != nil {
		return App{}, err
	}
	if cfg.ReportFanoutLimit, err = intEnv("REPORT_FANOUT_LIMIT", cfg.ReportFanoutLimit); err != nil {
		return App{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return App{}, err
	}

	return cfg, nil
}

// PostgresURL returns DATABASE_URL when set, otherwise a URL assembled from
// the individual connection settings.
func (a App) PostgresURL() string {
	if a.Postgres.URL != "" {
		return a.Postgres.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(a.Postgres.User, a.Postgres.Password),
		Host:     a.Postgres.Host + ":" + a.Postgres.Port,
		Path:     "/" + a.Postgres.DB,
		RawQuery: "sslmode=" + url.QueryEscape(a.Postgres.SSLMode),
	}
	return u.String()
}

// MongoURI returns MONGO_URI when set, otherwise a URI assembled from the
// individual connection settings.
func (a App) MongoURI() string {
	if a.Mongo.URI != "" {
		return a.Mongo.URI
	}
	u := url.URL{
		Scheme: "mongodb",
		User:   url.UserPassword(a.Mongo.Username, a.Mongo.Password),
		Host:   a.Mongo.Host + ":" + a.Mongo.Port,
	}
	return u.String()
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

func loadFromFile(path string, cfg *App) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
