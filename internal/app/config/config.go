package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceHost string
	ServicePort int
	Mode        string
	ClinicName  string

	// MaxUploadMB caps multipart bodies.
	MaxUploadMB int
	BcryptCost  int

	JWT    JWTConfig
	Redis  RedisConfig
	MinIO  MinIOConfig
	SMTP   SMTPConfig
	Notify NotifyConfig
	Cookie CookieConfig
	Log    LogConfig
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MinIOConfig struct {
	Host      string
	Port      string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

func (m MinIOConfig) Endpoint() string {
	return m.Host + ":" + m.Port
}

// BaseURL is where stored objects are served from.
func (m MinIOConfig) BaseURL() string {
	if m.PublicURL != "" {
		return m.PublicURL
	}
	scheme := "http"
	if m.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%s", scheme, m.Host, m.Port)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether booking mails go out over SMTP instead of the log.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type NotifyConfig struct {
	Buffer  int
	Workers int
	Timeout time.Duration
}

type CookieConfig struct {
	Secure bool
	Domain string
}

type LogConfig struct {
	Level  string
	Format string
}

// setDefaults registers every key; AutomaticEnv only overrides keys viper knows.
func setDefaults(v *viper.Viper) {
	v.SetDefault("servicehost", "0.0.0.0")
	v.SetDefault("serviceport", 8080)
	v.SetDefault("mode", "debug")
	v.SetDefault("clinicname", "City Clinic")
	v.SetDefault("maxuploadmb", 10)
	v.SetDefault("bcryptcost", 10)

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("minio.host", "127.0.0.1")
	v.SetDefault("minio.port", "9000")
	v.SetDefault("minio.accesskey", "minioadmin")
	v.SetDefault("minio.secretkey", "minioadmin")
	v.SetDefault("minio.bucket", "clinic")
	v.SetDefault("minio.usessl", false)
	v.SetDefault("minio.publicurl", "")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@clinic.local")

	v.SetDefault("notify.buffer", 64)
	v.SetDefault("notify.workers", 2)
	v.SetDefault("notify.timeout", "30s")

	v.SetDefault("cookie.secure", false)
	v.SetDefault("cookie.domain", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewConfig reads config/<CONFIG_NAME>.toml (default "config") after loading .env.
// Environment variables such as JWT_SECRET or REDIS_HOST override file values, and a
// missing file leaves the defaults in place.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configName := "config"
	if os.Getenv("CONFIG_NAME") != "" {
		configName = os.Getenv("CONFIG_NAME")
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("config")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		log.Warnf("config %q not found, using defaults and environment", configName)
	case err != nil:
		return nil, err
	default:
		v.OnConfigChange(func(e fsnotify.Event) {
			log.WithField("file", e.Name).Warn("config file changed, restart to apply")
		})
		v.WatchConfig()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// MinIO address from environment, as the deployment scripts set it
	if h := os.Getenv("MINIO_HOST"); h != "" {
		cfg.MinIO.Host = h
	}
	if p := os.Getenv("MINIO_PORT"); p != "" {
		cfg.MinIO.Port = p
	}

	log.Info("config parsed")

	return cfg, nil
}

// NewLogger builds the process logger from the log section.
func NewLogger(c LogConfig) *log.Logger {
	logger := log.New()
	if strings.EqualFold(c.Format, "json") {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
