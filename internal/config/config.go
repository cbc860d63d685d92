package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
)

type Config struct {
	Portal      PortalConfig      `yaml:"portal"`
	Credentials CredentialsConfig `yaml:"-"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Summary     SummaryConfig     `yaml:"summary"`
	Downloader  DownloaderConfig  `yaml:"downloader"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Report      ReportConfig      `yaml:"report"`
}

type PortalConfig struct {
	BaseURL        string          `yaml:"base_url"`
	LoginPath      string          `yaml:"login_path"`
	SearchPath     string          `yaml:"search_path"`
	TimeoutSeconds int             `yaml:"timeout_seconds"`
	Selectors      SelectorsConfig `yaml:"selectors"`
}

// Timeout is the per-request deadline against the portal.
func (p PortalConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// SelectorsConfig holds the CSS selectors for the five fields extracted from
// the portal, plus the element whose presence proves a completed login.
type SelectorsConfig struct {
	LoginForm   string `yaml:"login_form"`
	LoggedIn    string `yaml:"logged_in"`
	Result      string `yaml:"result"`
	ResultTitle string `yaml:"result_title"`
	ResultLink  string `yaml:"result_link"`
	Year        string `yaml:"year"`
	Speaker     string `yaml:"speaker"`
}

// CredentialsConfig is populated from the environment only, never from YAML.
type CredentialsConfig struct {
	Email    string
	Password string
}

type OpenAIConfig struct {
	APIKey      string  `yaml:"-"`
	BaseURL     string  `yaml:"base_url"`
	AudioModel  string  `yaml:"audio_model"`
	ChatModel   string  `yaml:"chat_model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type GeminiConfig struct {
	APIKeys []string `yaml:"-"`
	Model   string   `yaml:"model"`
}

type SummaryConfig struct {
	Provider   string `yaml:"provider"`
	MaxBullets int    `yaml:"max_bullets"`
	Docx       bool   `yaml:"docx"`
}

type DownloaderConfig struct {
	Binary      string `yaml:"binary"`
	Format      string `yaml:"format"`
	InsecureTLS bool   `yaml:"insecure_tls"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Watch  string `yaml:"watch"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type ReportConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads the YAML config at path and overlays credentials and API keys
// from the environment. Secrets live only in the environment so config files
// stay safe to commit.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Credentials.Email = os.Getenv("PORTAL_EMAIL")
	cfg.Credentials.Password = os.Getenv("PORTAL_PASSWORD")
	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	if keys := os.Getenv("GEMINI_API_KEYS"); keys != "" {
		for _, k := range strings.Split(keys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.Gemini.APIKeys = append(cfg.Gemini.APIKeys, k)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return errs.NewConfiguration("portal.base_url is required")
	}

	if c.Portal.LoginPath == "" {
		c.Portal.LoginPath = "/login"
	}
	if c.Portal.SearchPath == "" {
		c.Portal.SearchPath = "/search"
	}
	if c.Portal.TimeoutSeconds == 0 {
		c.Portal.TimeoutSeconds = 30
	}
	if c.Portal.Selectors.LoginForm == "" {
		c.Portal.Selectors.LoginForm = "form"
	}
	if c.Portal.Selectors.LoggedIn == "" {
		c.Portal.Selectors.LoggedIn = ".account-menu"
	}
	if c.Portal.Selectors.Result == "" {
		c.Portal.Selectors.Result = ".search-result"
	}
	if c.Portal.Selectors.ResultTitle == "" {
		c.Portal.Selectors.ResultTitle = ".result-title"
	}
	if c.Portal.Selectors.ResultLink == "" {
		c.Portal.Selectors.ResultLink = "a"
	}
	if c.Portal.Selectors.Year == "" {
		c.Portal.Selectors.Year = ".result-year"
	}
	if c.Portal.Selectors.Speaker == "" {
		c.Portal.Selectors.Speaker = ".result-speaker"
	}

	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.AudioModel == "" {
		c.OpenAI.AudioModel = "whisper-1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = 0.2
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 1024
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}

	switch c.Summary.Provider {
	case "":
		c.Summary.Provider = "openai"
	case "openai", "gemini":
	default:
		return errs.NewConfiguration("summary.provider must be openai or gemini")
	}
	if c.Summary.MaxBullets == 0 {
		c.Summary.MaxBullets = 15
	}

	if c.Downloader.Binary == "" {
		c.Downloader.Binary = "yt-dlp"
	}
	if c.Downloader.Format == "" {
		c.Downloader.Format = "bestaudio/best"
	}

	if c.Paths.Output == "" {
		c.Paths.Output = "lecture_notes"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}
