package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings maps config keys onto the environment variables that may set them.
// The first variable that is set wins.
var envBindings = map[string][]string{
	"server.port":                  {"PORT"},
	"server.service_name":          {"SERVICE_NAME"},
	"server.route_aliases":         {"WEBHOOK_ROUTE_ALIASES"},
	"webhook.provider":             {"WEBHOOK_PROVIDER"},
	"webhook.secret":               {"ELEVENLABS_WEBHOOK_SECRET", "WEBHOOK_SECRET"},
	"webhook.signature_header":     {"WEBHOOK_SIGNATURE_HEADER"},
	"webhook.verify_signature":     {"WEBHOOK_VERIFY_SIGNATURE"},
	"webhook.display_name_key":     {"WEBHOOK_DISPLAY_NAME_KEY"},
	"webhook.default_display_name": {"WEBHOOK_DEFAULT_DISPLAY_NAME"},
	"llm.provider":                 {"LLM_PROVIDER"},
	"llm.api_key":                  {"LLM_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"},
	"llm.model":                    {"LLM_MODEL"},
	"llm.base_url":                 {"LLM_BASE_URL"},
	"llm.temperature":              {"LLM_TEMPERATURE"},
	"llm.max_tokens":               {"LLM_MAX_TOKENS"},
	"email.provider":               {"EMAIL_PROVIDER"},
	"email.from":                   {"EMAIL_FROM"},
	"email.to":                     {"EMAIL_TO"},
	"email.timezone":               {"EMAIL_TIMEZONE"},
	"email.brand":                  {"EMAIL_BRAND"},
	"email.resend.api_key":         {"RESEND_API_KEY"},
	"email.resend.base_url":        {"RESEND_BASE_URL"},
	"email.resend.retry_max":       {"RESEND_RETRY_MAX"},
	"email.ses.region":             {"AWS_REGION"},
	"email.smtp.host":              {"SMTP_HOST"},
	"email.smtp.port":              {"SMTP_PORT"},
	"email.smtp.username":          {"SMTP_USERNAME"},
	"email.smtp.password":          {"SMTP_PASSWORD"},
	"email.smtp.use_tls":           {"SMTP_USE_TLS"},
	"logging.level":                {"LOG_LEVEL"},
	"logging.format":               {"LOG_FORMAT"},
}

var defaultModels = map[string]string{
	LLMProviderOpenAI: "gpt-4o",
	LLMProviderGemini: "gemini-2.5-flash",
}

// Load builds the configuration from, in increasing precedence: defaults, the
// config file, a .env file in the working directory and the process environment.
// When path is empty an optional config.yaml is looked up in . and ./configs.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModels[cfg.LLM.Provider]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.service_name", "Senticare ElevenLabs")
	v.SetDefault("server.route_aliases", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.read_header_timeout", 10*time.Second)

	v.SetDefault("webhook.provider", "elevenlabs")
	v.SetDefault("webhook.signature_header", "x-elevenlabs-signature")
	v.SetDefault("webhook.verify_signature", true)
	v.SetDefault("webhook.display_name_key", "nombre")
	v.SetDefault("webhook.default_display_name", "Usuario")

	v.SetDefault("llm.provider", LLMProviderOpenAI)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 2000)

	v.SetDefault("email.provider", EmailProviderResend)
	v.SetDefault("email.timezone", "UTC")
	v.SetDefault("email.brand", "Senticare")
	v.SetDefault("email.resend.base_url", "https://api.resend.com")
	v.SetDefault("email.resend.retry_max", 0)
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.use_tls", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func loadEnvFile() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	// Variables already present in the environment are not overridden.
	_ = godotenv.Load(".env")
}
