package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envServerAddress   = "SERVER_ADDRESS"
	envPublicURL       = "SHORTENER_PUBLIC_URL"
	envStorageBackend  = "STORAGE_BACKEND"
	envFileStoragePath = "FILE_STORAGE_PATH"
	envDatabaseDSN     = "DATABASE_DSN"
	envGeoLookupURL    = "GEO_LOOKUP_URL"
	envGeoTimeout      = "GEO_TIMEOUT"
	envTunnelAPIURL    = "TUNNEL_API_URL"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"
	envCORSOrigins     = "CORS_ORIGINS"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

const (
	defaultServerAddress   = ":8001"
	defaultStorageBackend  = BackendFile
	defaultFileStoragePath = "shortened_urls.json"
	defaultDatabaseDSN     = "shortened_urls.db"
	defaultGeoLookupURL    = "http://ip-api.com/json"
	defaultGeoTimeout      = 2 * time.Second
	defaultTunnelAPIURL    = "http://localhost:4040/api/tunnels"
	defaultLogLevel        = "info"
	defaultLogFormat       = LogFormatConsole
	defaultCORSOrigins     = "*"
)

var (
	ErrInvalidBackend   = errors.New("unknown storage backend")
	ErrInvalidLogFormat = errors.New("unknown log format")
)

type Config struct {
	ServerAddress   string
	PublicURL       string // пусто - определяется при старте
	StorageBackend  string
	FileStoragePath string
	DatabaseDSN     string
	GeoLookupURL    string
	GeoTimeout      time.Duration
	TunnelAPIURL    string
	LogLevel        string
	LogFormat       string // console или json
	CORSOrigins     []string
}

// NewConfig resolves defaults, then flags, then environment (a .env file in
// the working directory is loaded first and never overrides real env).
func NewConfig(args []string) (*Config, error) {
	_ = godotenv.Load() // .env необязателен

	cfg := &Config{
		ServerAddress:   defaultServerAddress,
		StorageBackend:  defaultStorageBackend,
		FileStoragePath: defaultFileStoragePath,
		DatabaseDSN:     defaultDatabaseDSN,
		GeoLookupURL:    defaultGeoLookupURL,
		GeoTimeout:      defaultGeoTimeout,
		TunnelAPIURL:    defaultTunnelAPIURL,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
	}
	origins := defaultCORSOrigins

	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerAddress, "server-address", cfg.ServerAddress, "Server address")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Public base URL used in short links")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "Storage backend: file or sqlite")
	fs.StringVar(&cfg.FileStoragePath, "file-storage-path", cfg.FileStoragePath, "JSON storage file path")
	fs.StringVar(&cfg.DatabaseDSN, "database-dsn", cfg.DatabaseDSN, "SQLite database DSN")
	fs.StringVar(&cfg.GeoLookupURL, "geo-url", cfg.GeoLookupURL, "Geolocation lookup base URL")
	fs.DurationVar(&cfg.GeoTimeout, "geo-timeout", cfg.GeoTimeout, "Geolocation lookup timeout")
	fs.StringVar(&cfg.TunnelAPIURL, "tunnel-api-url", cfg.TunnelAPIURL, "Local tunnel inspection API")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	fs.StringVar(&origins, "cors-origins", origins, "Comma separated CORS origins for /api")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.applyEnv(envServerAddress, &cfg.ServerAddress)
	cfg.applyEnv(envPublicURL, &cfg.PublicURL)
	cfg.applyEnv(envStorageBackend, &cfg.StorageBackend)
	cfg.applyEnv(envFileStoragePath, &cfg.FileStoragePath)
	cfg.applyEnv(envDatabaseDSN, &cfg.DatabaseDSN)
	cfg.applyEnv(envGeoLookupURL, &cfg.GeoLookupURL)
	cfg.applyEnvDuration(envGeoTimeout, &cfg.GeoTimeout)
	cfg.applyEnv(envTunnelAPIURL, &cfg.TunnelAPIURL)
	cfg.applyEnv(envLogLevel, &cfg.LogLevel)
	cfg.applyEnv(envLogFormat, &cfg.LogFormat)
	cfg.applyEnv(envCORSOrigins, &origins)

	cfg.CORSOrigins = splitList(origins)
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.FileStoragePath = cfg.resolveFilePath()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(key string, target *string) {
	if val, ok := os.LookupEnv(key); ok {
		*target = val
	}
}

func (c *Config) applyEnvDuration(key string, target *time.Duration) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			*target = d
		}
	}
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.StorageBackend)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	if c.GeoTimeout <= 0 {
		c.GeoTimeout = defaultGeoTimeout
	}
	return nil
}

func (c *Config) resolveFilePath() string {
	if filepath.IsAbs(c.FileStoragePath) {
		return c.FileStoragePath
	}

	absPath, err := filepath.Abs(c.FileStoragePath)
	if err != nil {
		return filepath.Clean(c.FileStoragePath)
	}
	return absPath
}

// Port returns the port part of ServerAddress, "80" if none is given.
func (c *Config) Port() string {
	addr := c.ServerAddress
	if i := strings.LastIndex(addr, ":"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "80"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
