package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	Storage    Storage    `yaml:"storage"`
	RedisAddr  string     `yaml:"redis_addr" env:"REDIS_ADDR"`
	HTTPServer `yaml:"http_server"`
	Session    Session    `yaml:"session"`
	Attendance Attendance `yaml:"attendance"`
	Risk       Risk       `yaml:"risk"`
	Analysis   Analysis   `yaml:"analysis"`
}

type Storage struct {
	// Driver is one of memory, sqlite, redis, postgres.
	Driver        string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	Path          string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/attendance.db"`
	Prefix        string `yaml:"prefix" env:"STORAGE_PREFIX" env-default:"attendance"`
	CascadeDelete bool   `yaml:"cascade_delete" env:"STORAGE_CASCADE_DELETE" env-default:"false"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Session struct {
	Secret string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"12h"`
}

type Attendance struct {
	// DefaultUnmarked is leave_unset or a status written for unmarked students on commit.
	DefaultUnmarked string `yaml:"default_unmarked" env:"ATTENDANCE_DEFAULT_UNMARKED" env-default:"leave_unset"`
}

type Risk struct {
	Threshold int `yaml:"threshold" env-default:"3"`
	Limit     int `yaml:"limit" env-default:"5"`
}

type Analysis struct {
	APIKey  string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model   string        `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return cfg
}
