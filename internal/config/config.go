package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Transcription BackendConfig      `mapstructure:"transcription"`
	LLM           FallbackPairConfig `mapstructure:"llm"`
	TTS           FallbackPairConfig `mapstructure:"tts"`
	Image         FallbackPairConfig `mapstructure:"image"`
	Video         FallbackPairConfig `mapstructure:"video"`
	Subtitles     BackendConfig      `mapstructure:"subtitles"`
	Render        BackendConfig      `mapstructure:"render"`
	Music         MusicConfig        `mapstructure:"music"`
	Pipeline      PipelineConfig     `mapstructure:"pipeline"`
	Branding      BrandingConfig     `mapstructure:"branding"`
	Webhook       WebhookConfig      `mapstructure:"webhook"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// BackendConfig points at one remote media backend.
type BackendConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// FallbackPairConfig configures a primary backend plus the secondary that
// transparently substitutes for it on failure.
type FallbackPairConfig struct {
	Primary  BackendConfig `mapstructure:"primary"`
	Fallback BackendConfig `mapstructure:"fallback"`
}

// HasFallback reports whether a secondary backend is configured.
func (c *FallbackPairConfig) HasFallback() bool {
	return c.Fallback.Endpoint != ""
}

type MusicConfig struct {
	LibraryPrefix string `mapstructure:"library_prefix"`
}

type PipelineConfig struct {
	WordsPerSecond    float64       `mapstructure:"words_per_second"`
	MaxClipSeconds    float64       `mapstructure:"max_clip_seconds"`
	ImageDelay        time.Duration `mapstructure:"image_delay"`
	ClipConcurrency   int           `mapstructure:"clip_concurrency"`
	CommentaryRetries int           `mapstructure:"commentary_retries"`
	DefaultMinSeconds float64       `mapstructure:"default_min_seconds"`
	DefaultMaxSeconds float64       `mapstructure:"default_max_seconds"`
}

// BrandingConfig is the optional logo overlay stamped onto every render.
type BrandingConfig struct {
	LogoURL      string `mapstructure:"logo_url"`
	LogoPosition string `mapstructure:"logo_position"`
}

type WebhookConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/voxreel.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "voxreel")
	v.SetDefault("transcription.model", "whisper-1")
	v.SetDefault("transcription.timeout", 120*time.Second)
	v.SetDefault("llm.primary.endpoint", "https://api.openai.com/v1")
	v.SetDefault("llm.primary.model", "gpt-4o")
	v.SetDefault("llm.primary.timeout", 90*time.Second)
	v.SetDefault("llm.fallback.model", "gpt-4o-mini")
	v.SetDefault("llm.fallback.timeout", 90*time.Second)
	v.SetDefault("tts.primary.timeout", 120*time.Second)
	v.SetDefault("tts.fallback.timeout", 120*time.Second)
	v.SetDefault("image.primary.timeout", 180*time.Second)
	v.SetDefault("image.fallback.timeout", 180*time.Second)
	v.SetDefault("video.primary.timeout", 600*time.Second)
	v.SetDefault("video.fallback.timeout", 600*time.Second)
	v.SetDefault("subtitles.timeout", 120*time.Second)
	v.SetDefault("render.timeout", 600*time.Second)
	v.SetDefault("music.library_prefix", "music/")
	v.SetDefault("pipeline.words_per_second", 2.5)
	v.SetDefault("pipeline.max_clip_seconds", 10)
	v.SetDefault("pipeline.image_delay", 2*time.Second)
	v.SetDefault("pipeline.clip_concurrency", 2)
	v.SetDefault("pipeline.commentary_retries", 2)
	v.SetDefault("pipeline.default_min_seconds", 10)
	v.SetDefault("pipeline.default_max_seconds", 90)
	v.SetDefault("branding.logo_position", "bottom-right")
	v.SetDefault("webhook.timeout", 15*time.Second)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
	v.BindEnv("transcription.endpoint", "TRANSCRIPTION_ENDPOINT")
	v.BindEnv("transcription.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.primary.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.fallback.api_key", "LLM_FALLBACK_API_KEY")
	v.BindEnv("tts.primary.endpoint", "TTS_ENDPOINT")
	v.BindEnv("tts.primary.api_key", "TTS_API_KEY")
	v.BindEnv("tts.fallback.endpoint", "TTS_FALLBACK_ENDPOINT")
	v.BindEnv("tts.fallback.api_key", "TTS_FALLBACK_API_KEY")
	v.BindEnv("image.primary.endpoint", "IMAGE_ENDPOINT")
	v.BindEnv("image.primary.api_key", "IMAGE_API_KEY")
	v.BindEnv("image.fallback.endpoint", "IMAGE_FALLBACK_ENDPOINT")
	v.BindEnv("image.fallback.api_key", "IMAGE_FALLBACK_API_KEY")
	v.BindEnv("video.primary.endpoint", "VIDEO_ENDPOINT")
	v.BindEnv("video.primary.api_key", "VIDEO_API_KEY")
	v.BindEnv("video.fallback.endpoint", "VIDEO_FALLBACK_ENDPOINT")
	v.BindEnv("video.fallback.api_key", "VIDEO_FALLBACK_API_KEY")
	v.BindEnv("subtitles.endpoint", "SUBTITLES_ENDPOINT")
	v.BindEnv("subtitles.api_key", "SUBTITLES_API_KEY")
	v.BindEnv("render.endpoint", "RENDER_ENDPOINT")
	v.BindEnv("render.api_key", "RENDER_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
