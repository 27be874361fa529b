package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned by components constructed without a required secret.
var ErrMissingCredential = errors.New("missing required credential")

type Config struct {
	Trending   TrendingConfig   `yaml:"trending"`
	Readme     ReadmeConfig     `yaml:"readme"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Email      EmailConfig      `yaml:"email"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Schedule   string           `yaml:"schedule"`
	LogLevel   string           `yaml:"log_level"`
}

type TrendingConfig struct {
	URL       string        `yaml:"url"`
	Limit     int           `yaml:"limit"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type ReadmeConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type SummarizerConfig struct {
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Temperature       *float32      `yaml:"temperature"`
	MaxOutputTokens   int32         `yaml:"max_output_tokens"`
	MaxDocumentLength int           `yaml:"max_document_length"`
	Interval          time.Duration `yaml:"interval"`
	Timeout           time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether a history database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type EmailConfig struct {
	APIKey       string `yaml:"api_key"`
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	TemplatePath string `yaml:"template_path"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Enabled reports whether telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands environment references in data and decodes it.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Trending.URL == "" {
		c.Trending.URL = "https://github.com/trending"
	}
	if c.Trending.Limit == 0 {
		c.Trending.Limit = 5
	}
	if c.Trending.Timeout == 0 {
		c.Trending.Timeout = 30 * time.Second
	}
	if c.Trending.UserAgent == "" {
		c.Trending.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	}
	if c.Readme.BaseURL == "" {
		c.Readme.BaseURL = "https://api.github.com"
	}
	if c.Readme.Timeout == 0 {
		c.Readme.Timeout = 30 * time.Second
	}
	if c.Readme.Retry.MaxAttempts == 0 {
		c.Readme.Retry.MaxAttempts = 1
	}
	if c.Readme.Retry.InitialBackoff == 0 {
		c.Readme.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Readme.Retry.MaxBackoff == 0 {
		c.Readme.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Summarizer.Model == "" {
		c.Summarizer.Model = "gemini-2.5-flash"
	}
	if c.Summarizer.Temperature == nil {
		t := float32(0.3)
		c.Summarizer.Temperature = &t
	}
	if c.Summarizer.MaxOutputTokens == 0 {
		c.Summarizer.MaxOutputTokens = 2048
	}
	if c.Summarizer.MaxDocumentLength == 0 {
		c.Summarizer.MaxDocumentLength = 15000
	}
	if c.Summarizer.Interval == 0 {
		c.Summarizer.Interval = 10 * time.Second
	}
	if c.Summarizer.Timeout == 0 {
		c.Summarizer.Timeout = 60 * time.Second
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "trending_digest"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "repositories"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "trending_repositories"
	}
	if c.Email.From == "" {
		c.Email.From = "GitHub Daily Select <onboarding@resend.dev>"
	}
	if c.Email.TemplatePath == "" {
		c.Email.TemplatePath = "templates/email.html"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
