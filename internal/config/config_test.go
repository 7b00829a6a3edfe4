package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Port: "8000"},
		Webhook: WebhookConfig{Provider: "elevenlabs"},
		LLM: LLMConfig{
			Provider:    LLMProviderOpenAI,
			APIKey:      "sk-test",
			Temperature: 0.3,
			MaxTokens:   2000,
		},
		Email: EmailConfig{
			Provider: EmailProviderResend,
			From:     "resumen@example.com",
			To:       "familia@example.com",
			Timezone: "UTC",
			Resend:   ResendConfig{APIKey: "re_test"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"missing llm key", func(c *Config) { c.LLM.APIKey = "" }, "llm.api_key"},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "llama" }, "llm.provider"},
		{"temperature out of range", func(c *Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
		{"missing from", func(c *Config) { c.Email.From = "" }, "email.from"},
		{"missing to", func(c *Config) { c.Email.To = "" }, "email.to"},
		{"bad timezone", func(c *Config) { c.Email.Timezone = "Mars/Olympus" }, "email.timezone"},
		{"missing resend key", func(c *Config) { c.Email.Resend.APIKey = "" }, "email.resend.api_key"},
		{"ses without region", func(c *Config) { c.Email.Provider = EmailProviderSES }, "email.ses.region"},
		{"smtp without host", func(c *Config) { c.Email.Provider = EmailProviderSMTP }, "email.smtp.host"},
		{"smtp bad port", func(c *Config) {
			c.Email.Provider = EmailProviderSMTP
			c.Email.SMTP.Host = "smtp.example.com"
			c.Email.SMTP.Port = 70000
		}, "email.smtp.port"},
		{"unknown email provider", func(c *Config) { c.Email.Provider = "pigeon" }, "email.provider"},
		{"empty webhook secret is allowed", func(c *Config) { c.Webhook.Secret = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("RESEND_API_KEY", "re_env")
	t.Setenv("ELEVENLABS_WEBHOOK_SECRET", "whsec")
	t.Setenv("EMAIL_FROM", "resumen@example.com")
	t.Setenv("EMAIL_TO", "familia@example.com")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, "re_env", cfg.Email.Resend.APIKey)
	assert.Equal(t, 0, cfg.Email.Resend.RetryMax)
	assert.Equal(t, "whsec", cfg.Webhook.Secret)
	assert.True(t, cfg.Webhook.VerifySignature)
	assert.Equal(t, "x-elevenlabs-signature", cfg.Webhook.SignatureHeader)
	assert.Equal(t, "nombre", cfg.Webhook.DisplayNameKey)
	assert.Equal(t, "Usuario", cfg.Webhook.DefaultDisplayName)
	assert.Equal(t, "/webhook/elevenlabs", cfg.WebhookPath())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.Server.RouteAliases)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "gm-env")

	content := `
server:
  port: "8181"
  route_aliases:
    - /hooks/voice
webhook:
  verify_signature: false
llm:
  provider: gemini
  temperature: 0.2
email:
  provider: smtp
  from: resumen@example.com
  to: familia@example.com
  timezone: Europe/Madrid
  smtp:
    host: smtp.example.com
    port: 2525
    use_tls: false
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8181", cfg.Server.Port)
	assert.Equal(t, []string{"/hooks/voice"}, cfg.Server.RouteAliases)
	assert.False(t, cfg.Webhook.VerifySignature)
	assert.Equal(t, LLMProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "gm-env", cfg.LLM.APIKey)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, EmailProviderSMTP, cfg.Email.Provider)
	assert.Equal(t, 2525, cfg.Email.SMTP.Port)
	assert.False(t, cfg.Email.SMTP.UseTLS)
	assert.Equal(t, "Europe/Madrid", cfg.Email.Timezone)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("LLM_API_KEY", "sk-file-overridden")
	t.Setenv("RESEND_API_KEY", "re_env")
	t.Setenv("EMAIL_TO", "otra@example.com")

	content := `
llm:
  api_key: sk-from-file
email:
  from: resumen@example.com
  to: familia@example.com
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-file-overridden", cfg.LLM.APIKey)
	assert.Equal(t, "otra@example.com", cfg.Email.To)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

// clearEnv blanks every bound variable; viper treats empty variables as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, name := range envs {
			t.Setenv(name, "")
		}
	}
}
