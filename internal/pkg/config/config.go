package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Bounds    BoundsConfig    `mapstructure:"bounds"`
	Datasets  DatasetsConfig  `mapstructure:"datasets"`
	Router    RouterConfig    `mapstructure:"router"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	ML        MLConfig        `mapstructure:"ml"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// BoundsConfig is the service area; coordinates outside it are rejected
// before any upstream call is made.
type BoundsConfig struct {
	MinLat float64 `mapstructure:"min_lat"`
	MaxLat float64 `mapstructure:"max_lat"`
	MinLon float64 `mapstructure:"min_lon"`
	MaxLon float64 `mapstructure:"max_lon"`
}

// DatasetsConfig points at the CSV files loaded once at startup.
type DatasetsConfig struct {
	CrimePath      string `mapstructure:"crime_path"`
	LightingPath   string `mapstructure:"lighting_path"`
	PopulationPath string `mapstructure:"population_path"`
}

type RouterConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Profile        string `mapstructure:"profile"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type GeocoderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	CitySuffix     string `mapstructure:"city_suffix"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type MLConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// EngineConfig tunes the optimizer's candidate search.
type EngineConfig struct {
	MaxWaypointRoutes int `mapstructure:"max_waypoint_routes"`
	Workers           int `mapstructure:"workers"`
	RequestTimeout    int `mapstructure:"request_timeout"` // outer deadline, seconds
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)

	// Bangalore service area
	v.SetDefault("bounds.min_lat", 12.704192)
	v.SetDefault("bounds.max_lat", 13.173706)
	v.SetDefault("bounds.min_lon", 77.269876)
	v.SetDefault("bounds.max_lon", 77.850066)

	v.SetDefault("datasets.crime_path", "data/bangalore_crimes.csv")
	v.SetDefault("datasets.lighting_path", "data/bangalore_lighting.csv")
	v.SetDefault("datasets.population_path", "data/bangalore_population.csv")

	v.SetDefault("router.base_url", "http://router.project-osrm.org")
	v.SetDefault("router.profile", "driving")
	v.SetDefault("router.timeout_seconds", 10)

	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.city_suffix", "Bangalore, India")
	v.SetDefault("geocoder.timeout_seconds", 5)

	v.SetDefault("ml.enabled", false)
	v.SetDefault("ml.base_url", "http://localhost:8501")
	v.SetDefault("ml.timeout_seconds", 3)

	v.SetDefault("engine.max_waypoint_routes", 25)
	v.SetDefault("engine.workers", 6)
	v.SetDefault("engine.request_timeout", 40)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "saferoutes")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "saferoutes")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.task_queue", "retrain-queue")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SAFEROUTES_ROUTER_BASE_URL → router.base_url
	v.SetEnvPrefix("SAFEROUTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Bounds.MinLat >= c.Bounds.MaxLat {
		errs = append(errs, "bounds.min_lat must be less than bounds.max_lat")
	}
	if c.Bounds.MinLon >= c.Bounds.MaxLon {
		errs = append(errs, "bounds.min_lon must be less than bounds.max_lon")
	}
	if c.Datasets.CrimePath == "" || c.Datasets.LightingPath == "" || c.Datasets.PopulationPath == "" {
		errs = append(errs, "datasets paths are required")
	}
	if c.Router.BaseURL == "" {
		errs = append(errs, "router.base_url is required")
	}
	if c.Router.TimeoutSeconds <= 0 {
		errs = append(errs, "router.timeout_seconds must be positive")
	}
	if c.ML.Enabled && c.ML.BaseURL == "" {
		errs = append(errs, "ml.base_url is required when ml.enabled")
	}
	if c.Engine.MaxWaypointRoutes <= 0 {
		errs = append(errs, "engine.max_waypoint_routes must be positive")
	}
	if c.Engine.Workers <= 0 || c.Engine.Workers > 32 {
		errs = append(errs, fmt.Sprintf("engine.workers must be 1-32, got %d", c.Engine.Workers))
	}
	if c.Engine.RequestTimeout <= 0 {
		errs = append(errs, "engine.request_timeout must be positive")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
