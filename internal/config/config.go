package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Validator ValidatorConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

// ValidatorConfig selects and configures the backend that decides whether
// the form matches the CV.
type ValidatorConfig struct {
	Backend    string
	WebhookURL string
	Timeout    time.Duration
	RuleGuard  bool
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	BackendWebhook = "webhook"
	BackendOpenAI  = "openai"
	BackendGemini  = "gemini"
	BackendRules   = "rules"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cv_submissions")

	v.SetDefault("UPLOAD_PATH", "./uploads")
	v.SetDefault("MAX_FILE_SIZE", 5*1024*1024)

	v.SetDefault("VALIDATOR_BACKEND", BackendWebhook)
	v.SetDefault("VALIDATOR_WEBHOOK_URL", "http://host.docker.internal:5678/webhook-test/validate-cv")
	v.SetDefault("VALIDATOR_TIMEOUT", "30s")
	v.SetDefault("VALIDATOR_RULE_GUARD", false)

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	timeout := v.GetDuration("VALIDATOR_TIMEOUT")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	maxFileSize := v.GetInt64("MAX_FILE_SIZE")
	if maxFileSize <= 0 {
		maxFileSize = 5 * 1024 * 1024
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Storage: StorageConfig{
			UploadPath:  v.GetString("UPLOAD_PATH"),
			MaxFileSize: maxFileSize,
		},
		Validator: ValidatorConfig{
			Backend:    strings.ToLower(v.GetString("VALIDATOR_BACKEND")),
			WebhookURL: v.GetString("VALIDATOR_WEBHOOK_URL"),
			Timeout:    timeout,
			RuleGuard:  v.GetBool("VALIDATOR_RULE_GUARD"),
			OpenAI: OpenAIConfig{
				APIKey:  v.GetString("OPENAI_API_KEY"),
				Model:   v.GetString("OPENAI_MODEL"),
				BaseURL: v.GetString("OPENAI_BASE_URL"),
			},
			Gemini: GeminiConfig{
				APIKey:  v.GetString("GEMINI_API_KEY"),
				Model:   v.GetString("GEMINI_MODEL"),
				BaseURL: v.GetString("GEMINI_BASE_URL"),
			},
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "mysql" {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
		)
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
