package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI         AIConfig         `yaml:"ai"`
	Storage    StorageConfig    `yaml:"storage"`
	Browser    BrowserConfig    `yaml:"browser"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	HTTP       HTTPConfig       `yaml:"http"`
	Watch      WatchConfig      `yaml:"watch"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Email      EmailConfig      `yaml:"email"`
	// Language is the default response language; "auto" detects it from the video.
	Language string `yaml:"language"`
}

type AIConfig struct {
	// GeminiAPIKey only seeds the key store when no key has been saved yet.
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path" env:"FRAMECHECK_DATA_DIR"`
}

// BrowserConfig controls the headless Chrome used for rendered pages and frame capture.
type BrowserConfig struct {
	Enabled       bool    `yaml:"enabled"`
	RemoteURL     string  `yaml:"remote_url"`
	Frames        int     `yaml:"frames"`
	SeekTimeoutMs int     `yaml:"seek_timeout_ms"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Quality       float64 `yaml:"quality"`
}

type YouTubeConfig struct {
	// APIKey enables YouTube Data API lookups for counts missing from the page.
	APIKey string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
	// AllowedOrigins are extra origins, such as a browser extension, that may call the API.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Address returns the listen address of the popup server.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

type WatchConfig struct {
	Schedule string   `yaml:"schedule"`
	URLs     []string `yaml:"urls"`
	Mode     string   `yaml:"mode"`
	Language string   `yaml:"language"`
}

// EmailConfig configures the watch digest. Leaving ToEmail empty disables it.
type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Enabled reports whether a digest recipient is configured.
func (c *EmailConfig) Enabled() bool {
	return c.ToEmail != ""
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case os.IsNotExist(err):
		// Every setting has a default, a config file is optional
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.Storage.Path == "" {
		c.Storage.Path = os.Getenv("FRAMECHECK_DATA_DIR")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
}

func (c *Config) applyDefaults() {
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.0-flash"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data"
	}
	if c.Browser.Frames == 0 {
		c.Browser.Frames = 4
	}
	if c.Browser.SeekTimeoutMs == 0 {
		c.Browser.SeekTimeoutMs = 500
	}
	if c.Browser.Width == 0 {
		c.Browser.Width = 640
	}
	if c.Browser.Height == 0 {
		c.Browser.Height = 360
	}
	if c.Browser.Quality == 0 {
		c.Browser.Quality = 0.7
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8765
	}
	if c.Watch.Schedule == "" {
		c.Watch.Schedule = "0 0 9 * * *" // Daily at 9 AM
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.Username
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Language == "" {
		c.Language = "English"
	}
}

// Validate checks value ranges after defaults have been applied.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Storage,
		validation.Field(&c.Storage.Driver, validation.Required, validation.In("file", "sqlite")),
		validation.Field(&c.Storage.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := validation.ValidateStruct(&c.Browser,
		validation.Field(&c.Browser.Frames, validation.Min(2), validation.Max(16)),
		validation.Field(&c.Browser.SeekTimeoutMs, validation.Min(1)),
		validation.Field(&c.Browser.Width, validation.Min(1)),
		validation.Field(&c.Browser.Height, validation.Min(1)),
		validation.Field(&c.Browser.Quality, validation.Min(0.1), validation.Max(1.0)),
	); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	if err := validation.ValidateStruct(&c.HTTP,
		validation.Field(&c.HTTP.Port, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := validation.ValidateStruct(&c.Watch,
		validation.Field(&c.Watch.Mode, validation.In("verify", "summary", "deep")),
	); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	enabled := c.Email.Enabled()
	if err := validation.ValidateStruct(&c.Email,
		validation.Field(&c.Email.SMTPServer, validation.When(enabled, validation.Required.Error("is required when email.to_email is set"))),
		validation.Field(&c.Email.SMTPPort, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Email.Username, validation.When(enabled, validation.Required.Error("is required (set EMAIL_USERNAME or email.username)"))),
		validation.Field(&c.Email.Password, validation.When(enabled, validation.Required.Error("is required (set EMAIL_PASSWORD or email.password)"))),
	); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return validation.ValidateStruct(&c.Monitoring,
		validation.Field(&c.Monitoring.HealthPort, validation.Min(1), validation.Max(65535)),
	)
}
