package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// EnvPrefix is the prefix of every environment override, e.g. LIBMATE_DATABASE_PATH.
	EnvPrefix = "LIBMATE"
)

// Config defines the structure of the configuration file.
type Config struct {
	IsProduction bool           `yaml:"is_production" envconfig:"LIBMATE_IS_PRODUCTION"`
	LogLevel     zapcore.Level  `yaml:"log_level" envconfig:"LIBMATE_LOG_LEVEL"`
	LogFile      string         `yaml:"log_file" envconfig:"LIBMATE_LOG_FILE"`
	Database     DatabaseConfig `yaml:"database"`
	Seed         SeedConfig     `yaml:"seed"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver" envconfig:"LIBMATE_DATABASE_DRIVER"`
	Path            string        `yaml:"path" envconfig:"LIBMATE_DATABASE_PATH"` // sqlite file
	DSN             string        `yaml:"dsn" envconfig:"LIBMATE_DATABASE_DSN"`   // postgres only
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"LIBMATE_DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"LIBMATE_DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"LIBMATE_DATABASE_CONN_MAX_LIFETIME"`
	LogQueries      bool          `yaml:"log_queries" envconfig:"LIBMATE_DATABASE_LOG_QUERIES"`
}

// SeedConfig controls how much sample data the seeding utility generates.
type SeedConfig struct {
	Authors    int   `yaml:"authors" envconfig:"LIBMATE_SEED_AUTHORS"`
	Books      int   `yaml:"books" envconfig:"LIBMATE_SEED_BOOKS"`
	Borrowers  int   `yaml:"borrowers" envconfig:"LIBMATE_SEED_BORROWERS"`
	Loans      int   `yaml:"loans" envconfig:"LIBMATE_SEED_LOANS"`
	RandomSeed int64 `yaml:"random_seed" envconfig:"LIBMATE_SEED_RANDOM_SEED"`
}

// Default returns a configuration usable without any file or environment.
func Default() *Config {
	return &Config{
		LogLevel: zapcore.InfoLevel,
		LogFile:  "libmate.log",
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Path:            "libmate.db",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
		},
		Seed: SeedConfig{
			Authors:   10,
			Books:     50,
			Borrowers: 15,
			Loans:     30,
		},
	}
}

// LoadConfigFile decodes the yaml file on top of the provided config.
// A missing file is not an error.
func LoadConfigFile(configFile string, config *Config) error {
	file, err := os.Open(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	return yaml.NewDecoder(file).Decode(config)
}

// LoadConfigEnvs reads the environment variables into the config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig fills zero values with defaults and validates the storage settings.
func InitConfig(config *Config) error {
	def := Default()

	if config.LogFile == "" {
		config.LogFile = def.LogFile
	}
	if config.Database.Driver == "" {
		config.Database.Driver = def.Database.Driver
	}
	if config.Database.MaxOpenConns <= 0 {
		config.Database.MaxOpenConns = def.Database.MaxOpenConns
	}
	if config.Database.MaxIdleConns <= 0 {
		config.Database.MaxIdleConns = def.Database.MaxIdleConns
	}
	if config.Database.ConnMaxLifetime <= 0 {
		config.Database.ConnMaxLifetime = def.Database.ConnMaxLifetime
	}

	switch config.Database.Driver {
	case DriverSQLite:
		if config.Database.Path == "" {
			config.Database.Path = def.Database.Path
		}
	case DriverPostgres:
		if config.Database.DSN == "" {
			return errors.New("make sure to set a valid database dsn when using the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Seed.Authors < 0 || config.Seed.Books < 0 || config.Seed.Borrowers < 0 || config.Seed.Loans < 0 {
		return errors.New("seed counts cannot be negative")
	}

	return nil
}

// Load builds the application configuration from, in order, the defaults,
// the yaml file, the dotenv file and the process environment.
func Load(configFile, envFile string) (*Config, error) {
	config := Default()

	if err := LoadConfigFile(configFile, config); err != nil {
		return nil, fmt.Errorf("failed to load configurations from file: %w", err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to set environment configurations: %w", err)
		}
	}

	if err := LoadConfigEnvs(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to load configurations from environment: %w", err)
	}

	if err := InitConfig(config); err != nil {
		return nil, fmt.Errorf("failed to initialize configurations: %w", err)
	}
	return config, nil
}
