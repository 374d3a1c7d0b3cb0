package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig
	Admin   AdminConfig
	Modal   ModalConfig
	Nav     NavConfig
	Session SessionConfig
	Chart   ChartConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type AdminConfig struct {
	Username string
	Password string
}

type ModalConfig struct {
	RenderDelay time.Duration `mapstructure:"render_delay"`
}

type NavConfig struct {
	Threshold float64
}

type SessionConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type ChartConfig struct {
	Format string
}

type LogConfig struct {
	Verbose bool
}

// UsingDefaultAdmin reports whether the development credentials are still in place.
func (c Config) UsingDefaultAdmin() bool {
	return c.Admin.Username == "admin" || c.Admin.Password == "admin123"
}

// Load reads configuration from an optional file and the environment. Env var overrides
// use prefix PORTFOLIO_ (PORTFOLIO_SERVER_PORT, PORTFOLIO_MODAL_RENDER_DELAY, ...). The
// plain PORT, ADMIN_USERNAME and ADMIN_PASSWORD variables are honoured too.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "admin123")
	v.SetDefault("modal.render_delay", "300ms")
	v.SetDefault("nav.threshold", 200)
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.sweep_interval", "1m")
	v.SetDefault("chart.format", "png")
	v.SetDefault("log.verbose", false)

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("PORTFOLIO_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("portfolio")
		// optional
		_ = v.ReadInConfig()
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" && os.Getenv("PORTFOLIO_SERVER_PORT") == "" {
		c.Server.Port = port
	}
	if u := os.Getenv("ADMIN_USERNAME"); u != "" {
		c.Admin.Username = u
	}
	if p := os.Getenv("ADMIN_PASSWORD"); p != "" {
		c.Admin.Password = p
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.Modal.RenderDelay < 0 {
		return fmt.Errorf("modal.render_delay must not be negative")
	}
	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session timeouts must be positive")
	}
	if c.Nav.Threshold < 0 {
		return fmt.Errorf("nav.threshold must not be negative")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q: want debug, release or test", c.Server.Mode)
	}
	switch c.Chart.Format {
	case "png", "svg":
	default:
		return fmt.Errorf("chart.format %q: want png or svg", c.Chart.Format)
	}
	return nil
}
