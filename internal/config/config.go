package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"vinscan-service/internal/domain/vehicle"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type GeminiConfig struct {
	// APIKey is resolved from the environment at request time; its
	// absence is a configuration error, not a recognition failure.
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type StorageConfig struct {
	// Backend is "file" or "postgres".
	Backend  string         `mapstructure:"backend"`
	DataDir  string         `mapstructure:"data_dir"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// DefaultsConfig seeds the user-editable settings on first run, before
// any settings document has been persisted.
type DefaultsConfig struct {
	CompanyName      string   `mapstructure:"company_name"`
	AllowedLocations []string `mapstructure:"allowed_locations"`
	BusinessType     string   `mapstructure:"business_type"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Every key needs a default: AutomaticEnv only resolves keys viper
	// already knows about, and the credential usually arrives via
	// VINSCAN_GEMINI_API_KEY rather than the config file.
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.database", "vinscan")
	v.SetDefault("storage.postgres.user", "vinscan")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("defaults.company_name", "STOCK AUTO MAROC")
	v.SetDefault("defaults.allowed_locations", []string{"RECEPTION", "SHOWROOM", "DEPOT", "LIVRAISON"})
	v.SetDefault("defaults.business_type", string(vehicle.BusinessUsed))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("VINSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if !vehicle.BusinessType(cfg.Defaults.BusinessType).Valid() {
		return nil, fmt.Errorf("invalid defaults.business_type %q", cfg.Defaults.BusinessType)
	}
	if len(cfg.Defaults.AllowedLocations) == 0 {
		return nil, fmt.Errorf("defaults.allowed_locations must not be empty")
	}

	return &cfg, nil
}

// DefaultSettings builds the initial user settings from config.
func (c *Config) DefaultSettings() vehicle.Settings {
	locs := make([]string, len(c.Defaults.AllowedLocations))
	copy(locs, c.Defaults.AllowedLocations)
	return vehicle.Settings{
		CompanyName:      c.Defaults.CompanyName,
		AllowedLocations: locs,
		BusinessType:     vehicle.BusinessType(c.Defaults.BusinessType),
	}
}
