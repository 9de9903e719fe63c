package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "LABPARSE"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Parser     ParserConfig
	Extraction ExtractionConfig
	Batch      BatchConfig
	S3         S3Config
	CORS       CORSConfig
	Metrics    MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ParserConfig tunes the parsing engine.
type ParserConfig struct {
	DetectWindow    int     `mapstructure:"detect_window"`
	HeaderChars     int     `mapstructure:"header_chars"`
	MinLineLength   int     `mapstructure:"min_line_length"`
	ReviewThreshold float64 `mapstructure:"review_threshold"`
}

// ProviderConfig holds settings for a single LLM extraction provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractionConfig holds the AI fallback settings with up to three providers.
type ExtractionConfig struct {
	MaxInputChars int            `mapstructure:"max_input_chars"`
	Primary       ProviderConfig `mapstructure:"primary"`
	Secondary     ProviderConfig `mapstructure:"secondary"`
	Tertiary      ProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order.
func (e *ExtractionConfig) Providers() []*ProviderConfig {
	var out []*ProviderConfig
	for _, p := range []*ProviderConfig{&e.Primary, &e.Secondary, &e.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// BatchConfig holds batch parsing settings.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// S3Config holds AWS S3 settings for source document download.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 25)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Parser defaults
	v.SetDefault("parser.detect_window", 4000)
	v.SetDefault("parser.header_chars", 3000)
	v.SetDefault("parser.min_line_length", 4)
	v.SetDefault("parser.review_threshold", 0.70)

	// Extraction provider defaults
	v.SetDefault("extraction.max_input_chars", 12000)
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("extraction."+slot+".provider", "")
		v.SetDefault("extraction."+slot+".api_key", "")
		v.SetDefault("extraction."+slot+".default_model", "")
		v.SetDefault("extraction."+slot+".max_retries", 2)
		v.SetDefault("extraction."+slot+".timeout_secs", 120)
	}

	v.SetDefault("batch.concurrency", 4)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "labparse-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "labparse")
}

// Load reads configuration from environment variables with the LABPARSE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Bind environment variables explicitly for nested keys
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, EnvName(key))
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if LABPARSE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvName("server.port")) == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Parser = ParserConfig{
		DetectWindow:    v.GetInt("parser.detect_window"),
		HeaderChars:     v.GetInt("parser.header_chars"),
		MinLineLength:   v.GetInt("parser.min_line_length"),
		ReviewThreshold: v.GetFloat64("parser.review_threshold"),
	}
	cfg.Extraction = ExtractionConfig{
		MaxInputChars: v.GetInt("extraction.max_input_chars"),
		Primary:       providerConfig(v, "primary"),
		Secondary:     providerConfig(v, "secondary"),
		Tertiary:      providerConfig(v, "tertiary"),
	}
	cfg.Batch = BatchConfig{
		Concurrency: v.GetInt("batch.concurrency"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Metrics = MetricsConfig{
		Enabled:   v.GetBool("metrics.enabled"),
		Namespace: v.GetString("metrics.namespace"),
	}

	return cfg, nil
}

// EnvName returns the environment variable bound to a config key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func providerConfig(v *viper.Viper, slot string) ProviderConfig {
	prefix := "extraction." + slot + "."
	return ProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}
