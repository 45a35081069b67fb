package config

import (
	"os"
	"time"

	"example/storefront/internal/logger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config holds everything the storefront reads from the environment
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":3000"`
	CORSOrigin      string        `envconfig:"CORS_ORIGIN" default:"http://localhost:5173"`
	SeedOnStart     bool          `envconfig:"SEED_ON_START" default:"false"`
	MigrateOnStart  bool          `envconfig:"MIGRATE_ON_START" default:"true"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	Database
}

// Database holds connection and pool settings
type Database struct {
	Driver       string        `envconfig:"DB_DRIVER" default:"mysql"`
	User         string        `envconfig:"DB_USER"`
	Password     string        `envconfig:"DB_PASS"`
	Host         string        `envconfig:"DB_HOST" default:"127.0.0.1:3306"`
	Name         string        `envconfig:"DB_NAME" default:"storefront"`
	Path         string        `envconfig:"DB_PATH" default:"storefront.db"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxIdle  time.Duration `envconfig:"DB_CONN_MAX_IDLE" default:"10s"`
}

// Production reports whether the service runs with production settings
func (c Config) Production() bool {
	return c.AppEnv == "production"
}

// Load reads envFile (if present) into the process environment and then
// decodes the environment into a Config.
func Load(envFile string) (Config, error) {
	var cfg Config

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(errors.Cause(err)) {
				return cfg, errors.Wrapf(err, "load %s", envFile)
			}
			logger.Log.Warnw("No .env file found, using existing environment variables", "file", envFile)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, errors.Wrap(err, "decode environment")
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be at least 1")
	}
	return nil
}
