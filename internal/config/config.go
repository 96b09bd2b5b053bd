package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env       string    `yaml:"env" env:"APP_ENV" env-default:"local"`
	Log       Log       `yaml:"log"`
	Server    Server    `yaml:"server"`
	Postgres  Postgres  `yaml:"postgres"`
	Balance   Balance   `yaml:"balance"`
	Cache     Cache     `yaml:"cache"`
	WebSocket WebSocket `yaml:"websocket"`
}

type Log struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"16"`
	MaxBackups int    `yaml:"max_backups" env-default:"8"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"30"`
}

type Postgres struct {
	Username        string        `yaml:"username" env:"POSTGRES_USER" env-required:"true"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD" env-required:"true"`
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	Database        string        `yaml:"database" env:"POSTGRES_DB" env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"50"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env-default:"1m"`
}

// DSN returns the lib/pq connection URL without query parameters.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		p.Username, p.Password, p.Host, p.Port, p.Database,
	)
}

type Server struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// Balance holds the analyzer thresholds.
type Balance struct {
	NominalCapacityHours float64 `yaml:"nominal_capacity_hours" env:"BALANCE_NOMINAL_CAPACITY_HOURS" env-default:"40"`
	OverloadHours        float64 `yaml:"overload_hours" env:"BALANCE_OVERLOAD_HOURS" env-default:"40"`
	MinSkillCoverage     float64 `yaml:"min_skill_coverage" env:"BALANCE_MIN_SKILL_COVERAGE" env-default:"0.8"`
}

type Cache struct {
	Disabled bool          `yaml:"disabled" env:"CACHE_DISABLED"`
	Size     int           `yaml:"size" env-default:"1024"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

type WebSocket struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" env-default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" env-default:"1024"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	PongWait        time.Duration `yaml:"pong_wait" env-default:"60s"`
	PingPeriod      time.Duration `yaml:"ping_period" env-default:"54s"`
	MaxMessageBytes int64         `yaml:"max_message_bytes" env-default:"4096"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"WS_ALLOWED_ORIGINS" env-separator:","`
}

// Load reads the YAML file named by CONFIG_PATH. A .env file in the working
// directory, if present, is loaded into the environment first so that env
// overrides work the same way locally and in containers.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	return LoadFile(configPath)
}

// LoadFile reads configuration from path and applies env overrides.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad is Load that panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) validate() error {
	switch {
	case c.Balance.NominalCapacityHours <= 0:
		return errors.New("balance.nominal_capacity_hours must be positive")
	case c.Balance.OverloadHours <= 0:
		return errors.New("balance.overload_hours must be positive")
	case c.Balance.MinSkillCoverage < 0 || c.Balance.MinSkillCoverage > 1:
		return errors.New("balance.min_skill_coverage must be within [0, 1]")
	case !c.Cache.Disabled && c.Cache.Size <= 0:
		return errors.New("cache.size must be positive when the cache is enabled")
	}

	return nil
}
