package config

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Email   EmailConfig   `mapstructure:"email"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	ServiceName       string        `mapstructure:"service_name"`
	RouteAliases      []string      `mapstructure:"route_aliases"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
}

// WebhookConfig describes the inbound sender. An empty Secret disables
// signature checks entirely, which is insecure outside local development.
type WebhookConfig struct {
	Provider           string `mapstructure:"provider"`
	Secret             string `mapstructure:"secret"`
	SignatureHeader    string `mapstructure:"signature_header"`
	VerifySignature    bool   `mapstructure:"verify_signature"`
	DisplayNameKey     string `mapstructure:"display_name_key"`
	DefaultDisplayName string `mapstructure:"default_display_name"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type EmailConfig struct {
	Provider string       `mapstructure:"provider"`
	From     string       `mapstructure:"from"`
	To       string       `mapstructure:"to"`
	Timezone string       `mapstructure:"timezone"`
	Brand    string       `mapstructure:"brand"`
	Resend   ResendConfig `mapstructure:"resend"`
	SES      SESConfig    `mapstructure:"ses"`
	SMTP     SMTPConfig   `mapstructure:"smtp"`
}

type ResendConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	RetryMax int    `mapstructure:"retry_max"`
}

type SESConfig struct {
	Region string `mapstructure:"region"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"

	EmailProviderResend = "resend"
	EmailProviderSES    = "ses"
	EmailProviderSMTP   = "smtp"
)

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Webhook.Provider == "" {
		return fmt.Errorf("webhook.provider is required")
	}

	switch c.LLM.Provider {
	case LLMProviderOpenAI, LLMProviderGemini:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}

	if c.Email.From == "" {
		return fmt.Errorf("email.from is required")
	}
	if c.Email.To == "" {
		return fmt.Errorf("email.to is required")
	}
	if _, err := time.LoadLocation(c.Email.Timezone); err != nil {
		return fmt.Errorf("email.timezone: %w", err)
	}

	switch c.Email.Provider {
	case EmailProviderResend:
		if c.Email.Resend.APIKey == "" {
			return fmt.Errorf("email.resend.api_key is required")
		}
		if c.Email.Resend.RetryMax < 0 {
			return fmt.Errorf("email.resend.retry_max must not be negative")
		}
	case EmailProviderSES:
		if c.Email.SES.Region == "" {
			return fmt.Errorf("email.ses.region is required")
		}
	case EmailProviderSMTP:
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host is required")
		}
		if c.Email.SMTP.Port <= 0 || c.Email.SMTP.Port > 65535 {
			return fmt.Errorf("email.smtp.port must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("email.provider %q is not supported", c.Email.Provider)
	}

	return nil
}

// WebhookPath is the canonical route the provider posts to.
func (c *Config) WebhookPath() string {
	return "/webhook/" + c.Webhook.Provider
}
