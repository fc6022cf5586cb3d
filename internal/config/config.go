package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type AIConfig struct {
	AssessmentURL  string `yaml:"assessment_url"`
	RecommenderURL string `yaml:"recommender_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	AccessTTLMinutes  int    `yaml:"access_ttl_minutes"`
	RefreshTTLDays    int    `yaml:"refresh_ttl_days"`
	OTPCodeTTLMinutes int    `yaml:"otp_code_ttl_minutes"`
	OTPStoreCapacity  int    `yaml:"otp_store_capacity"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	AI       AIConfig       `yaml:"ai"`
	Auth     AuthConfig     `yaml:"auth"`
	Telegram TelegramConfig `yaml:"telegram"`
	Files    FilesConfig    `yaml:"files"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 15
	}
	if cfg.Auth.AccessTTLMinutes <= 0 {
		cfg.Auth.AccessTTLMinutes = 15
	}
	if cfg.Auth.RefreshTTLDays <= 0 {
		cfg.Auth.RefreshTTLDays = 30
	}
	if cfg.Auth.OTPCodeTTLMinutes <= 0 {
		cfg.Auth.OTPCodeTTLMinutes = 5
	}
	if cfg.Auth.OTPStoreCapacity <= 0 {
		cfg.Auth.OTPStoreCapacity = 10000
	}
	return &cfg
}
