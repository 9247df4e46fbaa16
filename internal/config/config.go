package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Driver string `yaml:"driver"` // postgres | sqlite
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Config struct {
	AppEnv     string `yaml:"app_env"`
	LogLevel   string `yaml:"log_level"`
	ServerPort string `yaml:"server_port"`

	DB    DBConfig    `yaml:"db"`
	Redis RedisConfig `yaml:"redis"`
	MQ    MQConfig    `yaml:"mq"`
	Admin AdminConfig `yaml:"admin"`

	SessionSecret string        `yaml:"session_secret"`
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTTTL        time.Duration `yaml:"jwt_ttl"`

	TodoTemplateFile string `yaml:"todo_template_file"`
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load: .env -> YAML (CONFIG_FILE или config.yaml, если есть) -> переменные окружения.
// Окружение всегда главнее файла.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := loadYAML(path, cfg); err != nil {
		return nil, err
	}

	overrideFromEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.ServerPort, "SERVER_PORT")

	setString(&cfg.DB.Driver, "DB_DRIVER")
	setString(&cfg.DB.DSN, "DB_DSN")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}

	setString(&cfg.MQ.URL, "MQ_URL")
	setString(&cfg.MQ.Exchange, "MQ_EXCHANGE")

	setString(&cfg.Admin.Username, "ADMIN_USERNAME")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")

	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	if v := os.Getenv("JWT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWTTTL = d
		}
	}

	setString(&cfg.TodoTemplateFile, "TODO_TEMPLATE_FILE")
}

func applyDefaults(cfg *Config) {
	if cfg.AppEnv == "" {
		cfg.AppEnv = "production"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "postgres"
	}
	if cfg.MQ.Exchange == "" {
		cfg.MQ.Exchange = "pooldesk.events"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.SessionSecret
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin@pooldesk.local"
	}
}

func (c *Config) validate() error {
	if c.DB.DSN == "" {
		return errors.New("DB_DSN is not set")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
