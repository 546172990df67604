package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     Log     `yaml:"log"`
	Server  Server  `yaml:"server"`
	Backend Backend `yaml:"backend"`
}

type Server struct {
	// Address to listen on
	Addr string `yaml:"addr" example:"0.0.0.0:8080"`
}

type Backend struct {
	// Base URL of the recommendation backend
	BaseURL string `yaml:"base_url" example:"https://advisor-backend.internal" validate:"required,url"`
	// Bearer token for the backend, optional
	Token string `yaml:"token"`
	// Per-request timeout in seconds
	TimeoutSeconds int `yaml:"timeout_seconds" example:"30"`
}

func (b Backend) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type Log struct {
	// Minimum console log level: debug, info, warn or error
	Level string `yaml:"level" example:"debug"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Log.Level == "" {
		result.Log.Level = "debug"
	}
	if result.Server.Addr == "" {
		result.Server.Addr = ":8080"
	}
	if result.Backend.TimeoutSeconds <= 0 {
		result.Backend.TimeoutSeconds = 30
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
