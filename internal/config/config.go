package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Redis         RedisConfig        `mapstructure:"redis"`
	NATS          NATSConfig         `mapstructure:"nats"`
	CORS          CORSConfig         `mapstructure:"cors"`
	RateLimit     RateLimitConfig    `mapstructure:"ratelimit"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Logger        LoggerConfig       `mapstructure:"logger"`
	Analysis      AnalysisConfig     `mapstructure:"analysis"`
	Sources       SourcesConfig      `mapstructure:"sources"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

// IsProduction reports whether the app runs in production mode
func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TLS       bool   `mapstructure:"tls"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	// HighRisk is a prefix; the input type is appended per event.
	HighRisk string `mapstructure:"high_risk"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// AnalysisConfig tunes the analysis pipeline
type AnalysisConfig struct {
	GatherDeadline time.Duration `mapstructure:"gather_deadline"`
	EngineName     string        `mapstructure:"engine_name"`
	EngineVersion  string        `mapstructure:"engine_version"`
}

type SourcesConfig struct {
	AbuseIPDB          SourceConfig `mapstructure:"abuseipdb"`
	IPAPI              SourceConfig `mapstructure:"ipapi"`
	VirusTotal         SourceConfig `mapstructure:"virustotal"`
	URLScan            SourceConfig `mapstructure:"urlscan"`
	RDAP               SourceConfig `mapstructure:"rdap"`
	Wayback            SourceConfig `mapstructure:"wayback"`
	URLhaus            SourceConfig `mapstructure:"urlhaus"`
	ThreatFox          SourceConfig `mapstructure:"threatfox"`
	GoogleSafeBrowsing SourceConfig `mapstructure:"google_safebrowsing"`
}

// BySlug maps adapter slugs to their configuration
func (c SourcesConfig) BySlug() map[string]SourceConfig {
	return map[string]SourceConfig{
		"abuseipdb":           c.AbuseIPDB,
		"ipapi":               c.IPAPI,
		"virustotal":          c.VirusTotal,
		"urlscan":             c.URLScan,
		"rdap":                c.RDAP,
		"wayback":             c.Wayback,
		"urlhaus":             c.URLhaus,
		"threatfox":           c.ThreatFox,
		"google_safebrowsing": c.GoogleSafeBrowsing,
	}
}

type SourceConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIURL  string        `mapstructure:"api_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NotificationConfig controls high-risk alerting
type NotificationConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	WebhookURL string        `mapstructure:"webhook_url"`
	Threshold  int           `mapstructure:"threshold"`
	Cooldown   time.Duration `mapstructure:"cooldown"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

var sourceSlugs = []string{
	"abuseipdb", "ipapi", "virustotal", "urlscan", "rdap",
	"wayback", "urlhaus", "threatfox", "google_safebrowsing",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "verdict-lab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "0.1.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "verdict:")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream_name", "VERDICTS")
	v.SetDefault("nats.subjects.high_risk", "analysis.high_risk")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 60)

	v.SetDefault("auth.enabled", false)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.time_format", time.RFC3339)

	v.SetDefault("analysis.gather_deadline", 10*time.Second)
	v.SetDefault("analysis.engine_name", "ThreatAnalyzer")
	v.SetDefault("analysis.engine_version", "2.1.0")

	for _, slug := range sourceSlugs {
		v.SetDefault("sources."+slug+".enabled", true)
		v.SetDefault("sources."+slug+".timeout", 5*time.Second)
	}

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.threshold", 70)
	v.SetDefault("notifications.cooldown", time.Hour)
	v.SetDefault("notifications.timeout", 5*time.Second)
}

// Load reads configuration from file and environment variables. A missing
// config file is not an error when no explicit path was given.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/verdict-lab")
	}

	v.SetEnvPrefix("VERDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// viper only resolves env vars for keys it already knows about, so the
	// secrets without defaults are bound explicitly.
	v.BindEnv("redis.password", "VERDICT_REDIS_PASSWORD")
	v.BindEnv("notifications.webhook_url", "VERDICT_NOTIFICATIONS_WEBHOOK_URL", "SECURITY_WEBHOOK_URL")
	v.BindEnv("auth.api_keys", "VERDICT_AUTH_API_KEYS")
	for _, slug := range sourceSlugs {
		env := "VERDICT_SOURCES_" + strings.ToUpper(slug)
		v.BindEnv("sources."+slug+".api_key", env+"_API_KEY", strings.ToUpper(slug)+"_API_KEY")
		v.BindEnv("sources."+slug+".api_url", env+"_API_URL")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}
