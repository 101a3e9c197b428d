package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// AppName is used for the XDG config directory and the default log file name.
const AppName = "catalog-scraper"

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Sites         SitesConfig         `yaml:"sites"`
	Crawl         CrawlConfig         `yaml:"crawl"`
	Storage       StorageConfig       `yaml:"storage"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type HTTPConfig struct {
	Engine                    string `yaml:"engine"`
	UserAgent                 string `yaml:"user_agent"`
	AcceptLanguage            string `yaml:"accept_language"`
	ConnectTimeoutMS          int    `yaml:"connect_timeout_ms"`
	TotalTimeoutMS            int    `yaml:"total_timeout_ms"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
	RespectRobots             bool   `yaml:"respect_robots"`
}

type SitesConfig struct {
	Rozetka  SiteConfig `yaml:"rozetka"`
	Telemart SiteConfig `yaml:"telemart"`
}

// SiteConfig holds per-site settings. BaseURL is the prefix every start URL
// must carry; SelectorsFile optionally overrides the built-in selector table.
type SiteConfig struct {
	BaseURL       string `yaml:"base_url"`
	SelectorsFile string `yaml:"selectors_file"`
}

type CrawlConfig struct {
	DefaultPages int `yaml:"default_pages"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ServerConfig struct {
	Addr             string `yaml:"addr"`
	ShutdownTimeoutS int    `yaml:"shutdown_timeout_s"`
	ReadTimeoutS     int    `yaml:"read_timeout_s"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
}

const (
	EngineNetHTTP = "nethttp"
	EngineColly   = "colly"

	DriverNone     = "none"
	DriverMSSQL    = "mssql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Default returns a configuration that works without a config file.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Engine:                    EngineNetHTTP,
			UserAgent:                 "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AcceptLanguage:            "uk-UA,uk;q=0.9,ru;q=0.8,en;q=0.7",
			ConnectTimeoutMS:          10000,
			TotalTimeoutMS:            30000,
			MaxIdleConnections:        100,
			MaxIdleConnectionsPerHost: 10,
			IdleConnectionTimeoutS:    90,
		},
		Sites: SitesConfig{
			Rozetka:  SiteConfig{BaseURL: "https://rozetka.com.ua/"},
			Telemart: SiteConfig{BaseURL: "https://telemart.ua/"},
		},
		Crawl: CrawlConfig{DefaultPages: 1},
		Storage: StorageConfig{
			Driver:           DriverNone,
			CommandTimeoutMS: 5000,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			ShutdownTimeoutS: 10,
			ReadTimeoutS:     15,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogFormat:     "text",
			LogMaxSizeMB:  50,
			LogMaxBackups: 5,
			LogMaxAgeDays: 30,
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.HTTP.Engine != EngineNetHTTP && c.HTTP.Engine != EngineColly {
		return fmt.Errorf("http.engine must be '%s' or '%s'", EngineNetHTTP, EngineColly)
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("http.connect_timeout_ms must be > 0")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.Sites.Rozetka.BaseURL == "" {
		return fmt.Errorf("sites.rozetka.base_url is required")
	}
	if c.Sites.Telemart.BaseURL == "" {
		return fmt.Errorf("sites.telemart.base_url is required")
	}
	if c.Crawl.DefaultPages <= 0 {
		return fmt.Errorf("crawl.default_pages must be > 0")
	}
	switch c.Storage.Driver {
	case DriverNone:
	case DriverMSSQL, DriverPostgres, DriverSQLite:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.driver is '%s'", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be 'none', 'mssql', 'postgres' or 'sqlite'")
	}
	if c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeoutS <= 0 {
		return fmt.Errorf("server.shutdown_timeout_s must be > 0")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Observability.LogFormat != "text" && c.Observability.LogFormat != "json" {
		return fmt.Errorf("observability.log_format must be 'text' or 'json'")
	}
	return nil
}

// Getters
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.HTTP.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutS) * time.Second
}

func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutS) * time.Second
}

// XDGConfigDir returns the per-user config directory, e.g. ~/.config/catalog-scraper.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
