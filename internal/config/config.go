package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the work order API.
type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	MinIO     MinIOConfig
	Media     MediaConfig
	Thumbnail ThumbnailConfig
	Notify    NotifyConfig
	Metrics   MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	PresignTTL      time.Duration
}

// Part picture backends.
const (
	BackendDisk  = "disk"
	BackendMinIO = "minio"
)

// MediaConfig locates the work order folders and the part picture catalog.
type MediaConfig struct {
	Root           string
	PartsRoot      string
	PartsBackend   string
	PublicBaseURL  string
	MaxUploadBytes int64
}

// ThumbnailConfig controls video thumbnail extraction.
type ThumbnailConfig struct {
	Enabled      bool
	FFmpegBinary string
	Timeout      time.Duration
}

// NotifyConfig holds upload notification settings. An empty APIKey disables e-mail.
type NotifyConfig struct {
	ResendAPIKey string
	From         string
	To           []string
	Timeout      time.Duration
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("WORKORDERS_API_HOST", "0.0.0.0"),
			Port:         getInt("WORKORDERS_API_PORT", 8000),
			ReadTimeout:  getDuration("WORKORDERS_API_READ_TIMEOUT", 60*time.Second),
			WriteTimeout: getDuration("WORKORDERS_API_WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:  getDuration("WORKORDERS_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "workuser"),
			Password: getString("POSTGRES_PASSWORD", "workpassword"),
			Database: getString("POSTGRES_DB", "workorders"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "workorders"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "workorders"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
			PresignTTL:      getDuration("MINIO_PRESIGN_TTL", 15*time.Minute),
		},
		Media: MediaConfig{
			Root:           getString("MEDIA_ROOT", "media"),
			PartsRoot:      getString("PARTS_MEDIA_ROOT", "parts_media"),
			PartsBackend:   strings.ToLower(getString("PARTS_MEDIA_BACKEND", BackendDisk)),
			PublicBaseURL:  strings.TrimRight(getString("PUBLIC_BASE_URL", "http://127.0.0.1:8000"), "/"),
			MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 512<<20),
		},
		Thumbnail: ThumbnailConfig{
			Enabled:      getBool("THUMBNAILS_ENABLED", true),
			FFmpegBinary: getString("FFMPEG_BINARY", "ffmpeg"),
			Timeout:      getDuration("THUMBNAIL_TIMEOUT", 30*time.Second),
		},
		Notify: NotifyConfig{
			ResendAPIKey: getString("RESEND_API_KEY", ""),
			From:         getString("NOTIFY_FROM", ""),
			To:           getList("NOTIFY_TO"),
			Timeout:      getDuration("NOTIFY_TIMEOUT", 15*time.Second),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("WORKORDERS_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Media.PartsBackend {
	case BackendDisk, BackendMinIO:
	default:
		return fmt.Errorf("unsupported PARTS_MEDIA_BACKEND %q", c.Media.PartsBackend)
	}
	if strings.TrimSpace(c.Media.Root) == "" {
		return fmt.Errorf("MEDIA_ROOT must not be empty")
	}
	if c.Media.PartsBackend == BackendDisk && strings.TrimSpace(c.Media.PartsRoot) == "" {
		return fmt.Errorf("PARTS_MEDIA_ROOT must not be empty")
	}
	if c.Notify.ResendAPIKey != "" && (c.Notify.From == "" || len(c.Notify.To) == 0) {
		return fmt.Errorf("NOTIFY_FROM and NOTIFY_TO are required when RESEND_API_KEY is set")
	}
	return nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getList(key string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
