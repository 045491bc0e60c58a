// Package config centralizes all application configuration into typed structs.
//
// Go Learning Note — Configuration Management:
// Defaults live in NewDefaultConfig as plain struct literals. Load layers an
// optional YAML file and HEALTHEASE_* environment variables on top of them
// with "github.com/spf13/viper", then decodes the result back into the same
// typed structs. Callers never touch viper or untyped maps.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g.
// HEALTHEASE_SERVER_PORT or HEALTHEASE_AUTH_SECRET.
const EnvPrefix = "HEALTHEASE"

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config is the top-level configuration container.
type Config struct {
	Env     string        `mapstructure:"env"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Map     MapConfig     `mapstructure:"map"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Geo     GeoConfig     `mapstructure:"geo"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// StorageConfig picks the repository implementation.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	Seed   bool   `mapstructure:"seed"`
}

// AuthConfig controls JWT checks on mutating routes. With Enabled false every
// request acts as staff.
type AuthConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// MapConfig controls the map simulation and its frames.
type MapConfig struct {
	FrameInterval time.Duration     `mapstructure:"frame_interval"`
	FrameWidth    float64           `mapstructure:"frame_width"`
	FrameHeight   float64           `mapstructure:"frame_height"`
	CenterLat     float64           `mapstructure:"center_lat"`
	CenterLng     float64           `mapstructure:"center_lng"`
	NoticeLimit   int               `mapstructure:"notice_limit"`
	Icons         map[string]string `mapstructure:"icons"`
	IconTimeout   time.Duration     `mapstructure:"icon_timeout"`
}

// SyncConfig controls how the ambulance roster is refreshed.
type SyncConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	MinVisible int           `mapstructure:"min_visible"`
	APIURL     string        `mapstructure:"api_url"`
}

// GeoConfig sets the geohash precision of the ambulance index. Precision 6 is
// about 1.2 km cells.
type GeoConfig struct {
	GeohashPrecision int     `mapstructure:"geohash_precision"`
	SearchRadiusKm   float64 `mapstructure:"search_radius_km"`
}

// LogConfig controls the zerolog root logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// NewDefaultConfig returns a Config populated with the defaults used when no
// file or environment override is present.
func NewDefaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			CORSOrigins:  []string{"*"},
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
			Path:   "healthease.db",
			Seed:   true,
		},
		Auth: AuthConfig{
			Enabled:  false,
			Issuer:   "healthease",
			TokenTTL: 24 * time.Hour,
		},
		Map: MapConfig{
			FrameInterval: 50 * time.Millisecond,
			FrameWidth:    900,
			FrameHeight:   600,
			CenterLat:     12.9716,
			CenterLng:     77.5946,
			NoticeLimit:   50,
			Icons: map[string]string{
				"ambulance": "https://cdn-icons-png.flaticon.com/512/2966/2966327.png",
				"delivery":  "https://cdn-icons-png.flaticon.com/512/259/259538.png",
			},
			IconTimeout: 10 * time.Second,
		},
		Sync: SyncConfig{
			Interval:   20 * time.Second,
			MinVisible: 6,
		},
		Geo: GeoConfig{
			GeohashPrecision: 6,
			SearchRadiusKm:   5.0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and HEALTHEASE_* environment variables, in increasing
// order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, NewDefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Server.CORSOrigins) == 1 && strings.Contains(cfg.Server.CORSOrigins[0], ",") {
		cfg.Server.CORSOrigins = strings.Split(cfg.Server.CORSOrigins[0], ",")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it; viper
// only consults the environment for keys it already knows.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("env", d.Env)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.seed", d.Storage.Seed)

	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.secret", d.Auth.Secret)
	v.SetDefault("auth.issuer", d.Auth.Issuer)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)

	v.SetDefault("map.frame_interval", d.Map.FrameInterval)
	v.SetDefault("map.frame_width", d.Map.FrameWidth)
	v.SetDefault("map.frame_height", d.Map.FrameHeight)
	v.SetDefault("map.center_lat", d.Map.CenterLat)
	v.SetDefault("map.center_lng", d.Map.CenterLng)
	v.SetDefault("map.notice_limit", d.Map.NoticeLimit)
	v.SetDefault("map.icons", d.Map.Icons)
	v.SetDefault("map.icon_timeout", d.Map.IconTimeout)

	v.SetDefault("sync.interval", d.Sync.Interval)
	v.SetDefault("sync.min_visible", d.Sync.MinVisible)
	v.SetDefault("sync.api_url", d.Sync.APIURL)

	v.SetDefault("geo.geohash_precision", d.Geo.GeohashPrecision)
	v.SetDefault("geo.search_radius_km", d.Geo.SearchRadiusKm)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", StorageMemory, StorageSQLite, c.Storage.Driver))
	}
	if c.Auth.Enabled && len(c.Auth.Secret) < 16 {
		errs = append(errs, errors.New("auth.secret must be at least 16 bytes when auth is enabled"))
	}
	if c.Map.FrameInterval <= 0 {
		errs = append(errs, errors.New("map.frame_interval must be positive"))
	}
	if c.Map.FrameWidth <= 0 || c.Map.FrameHeight <= 0 {
		errs = append(errs, errors.New("map.frame_width and map.frame_height must be positive"))
	}
	if c.Sync.Interval <= 0 {
		errs = append(errs, errors.New("sync.interval must be positive"))
	}
	if c.Sync.MinVisible < 0 {
		errs = append(errs, errors.New("sync.min_visible cannot be negative"))
	}
	if c.Geo.GeohashPrecision < 1 || c.Geo.GeohashPrecision > 12 {
		errs = append(errs, fmt.Errorf("geo.geohash_precision must be 1-12, got %d", c.Geo.GeohashPrecision))
	}
	return errors.Join(errs...)
}
