package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	LLM struct {
		Provider        string
		Model           string
		APIKey          string
		BaseURL         string
		InstructionFile string
		MaxTokens       int
		Timeout         time.Duration
	}
	Preview struct {
		QuietPeriod time.Duration
	}
	Session struct {
		Store    string
		Lifetime time.Duration
	}
	DB struct {
		DSN string
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	Log struct {
		Level  string
		Format string
	}
	InsecureCookies bool
}

// OIDCEnabled reports whether the login gate is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != ""
}

// Load reads config from environment (JOE_ prefix) and optional joe-pages.yaml.
// The model credential is also accepted from API_KEY.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", "JOE_LLM_API_KEY", "API_KEY")
	v.SetConfigName("joe-pages")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.timeout", "5m")
	v.SetDefault("preview.quiet_period", "500ms")
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.lifetime", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.LLM.Provider = v.GetString("llm.provider")
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.BaseURL = v.GetString("llm.base_url")
	cfg.LLM.InstructionFile = v.GetString("llm.instruction_file")
	cfg.LLM.MaxTokens = v.GetInt("llm.max_tokens")
	cfg.Session.Store = v.GetString("session.store")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	quiet, err := time.ParseDuration(v.GetString("preview.quiet_period"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOE_PREVIEW_QUIET_PERIOD: %w", err)
	}
	if quiet <= 0 {
		return nil, fmt.Errorf("JOE_PREVIEW_QUIET_PERIOD must be positive, got %s", quiet)
	}
	cfg.Preview.QuietPeriod = quiet

	timeout, err := time.ParseDuration(v.GetString("llm.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOE_LLM_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("JOE_LLM_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.LLM.Timeout = timeout

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOE_SESSION_LIFETIME: %w", err)
	}
	cfg.Session.Lifetime = lifetime

	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("JOE_LLM_API_KEY (or API_KEY) is required")
	}
	switch cfg.LLM.Provider {
	case "gemini", "anthropic", "openai", "openai-compatible":
	default:
		return nil, fmt.Errorf("unsupported JOE_LLM_PROVIDER %q (gemini, anthropic, openai, openai-compatible)", cfg.LLM.Provider)
	}

	switch cfg.Session.Store {
	case "memory":
	case "sqlite3", "mysql", "postgres":
		if cfg.DB.DSN == "" {
			return nil, fmt.Errorf("JOE_DB_DSN is required when JOE_SESSION_STORE is %s", cfg.Session.Store)
		}
	default:
		return nil, fmt.Errorf("unsupported JOE_SESSION_STORE %q (memory, sqlite3, mysql, postgres)", cfg.Session.Store)
	}

	if cfg.OIDCEnabled() {
		if cfg.OIDC.ClientID == "" {
			return nil, fmt.Errorf("JOE_OIDC_CLIENT_ID is required when JOE_OIDC_ISSUER is set")
		}
		if cfg.OIDC.ClientSecret == "" {
			return nil, fmt.Errorf("JOE_OIDC_CLIENT_SECRET is required when JOE_OIDC_ISSUER is set")
		}
		if cfg.OIDC.RedirectURL == "" {
			return nil, fmt.Errorf("JOE_OIDC_REDIRECT_URL is required when JOE_OIDC_ISSUER is set")
		}
	}

	return cfg, nil
}
