package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
		PollTimeout int   `mapstructure:"poll_timeout"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled    bool
		ExpiryScan string `mapstructure:"expiry_scan"`
	} `mapstructure:"metrics"`

	Store struct {
		Driver string
	} `mapstructure:"store"`

	Lifecycle struct {
		DurationUnit time.Duration `mapstructure:"duration_unit"`
		Owner        string
		MetadataURI  string `mapstructure:"metadata_uri"`
	} `mapstructure:"lifecycle"`

	Classes []classes.Class `mapstructure:"classes"`
}

// Load reads path, overlaid with APP_* variables. A .env next to the
// working directory is applied to the environment first when present.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.expiry_scan", "*/5 * * * *")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("lifecycle.duration_unit", "168h")
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Lifecycle.Owner != "" {
		if _, err := address.Parse(c.Lifecycle.Owner); err != nil {
			return fmt.Errorf("config: lifecycle.owner: %w", err)
		}
	}
	if c.Lifecycle.DurationUnit < 0 {
		return errors.New("config: lifecycle.duration_unit must not be negative")
	}
	if _, err := c.Catalog(); err != nil {
		return fmt.Errorf("config: classes: %w", err)
	}
	return nil
}

// Catalog is the configured class table, or the built-in one.
func (c Config) Catalog() (classes.Catalog, error) {
	if len(c.Classes) == 0 {
		return classes.Default(), nil
	}
	return classes.NewCatalog(c.Classes...)
}

// Owner is the configured privileged address, zero when unset.
func (c Config) Owner() address.Address {
	a, err := address.Parse(c.Lifecycle.Owner)
	if err != nil {
		return address.Zero
	}
	return a
}

// Location resolves app.timezone, UTC when it is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
