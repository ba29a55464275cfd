// Package config loads posdash settings from a YAML file, POSDASH_* environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	UI      UIConfig      `mapstructure:"ui"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig describes the content API.
type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	DashboardURL string        `mapstructure:"dashboard_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	Burst        int           `mapstructure:"burst"`
}

// AuthConfig holds credentials for the login fallback and the session cache location.
type AuthConfig struct {
	Email       string `mapstructure:"email"`
	Password    string `mapstructure:"password"`
	SessionFile string `mapstructure:"session_file"`
}

// UIConfig tunes list and search behaviour.
type UIConfig struct {
	PageSizes       []int         `mapstructure:"page_sizes"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
	SearchDebounce  time.Duration `mapstructure:"search_debounce"`
	StartScreen     string        `mapstructure:"start_screen"`
}

// PricingConfig holds the discount and tax rules for each sale entry point.
type PricingConfig struct {
	Sale PolicyConfig `mapstructure:"sale"`
	POS  PolicyConfig `mapstructure:"pos"`
}

// PolicyConfig is one discount/tax rule set.
type PolicyConfig struct {
	DiscountMode string  `mapstructure:"discount_mode"` // percent, fixed
	Discount     float64 `mapstructure:"discount"`
	TaxRate      float64 `mapstructure:"tax_rate"` // percent
	TaxBase      string  `mapstructure:"tax_base"` // subtotal, net
	RoundWhole   bool    `mapstructure:"round_whole"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// Load reads configuration. An empty configPath searches the working directory
// and ~/.config/posdash for posdash.yaml; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("posdash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "posdash"))
		}
	}

	v.SetEnvPrefix("POSDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the dashboard cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must be set")
	}
	if len(c.UI.PageSizes) == 0 {
		return errors.New("ui.page_sizes must list at least one size")
	}
	for _, n := range c.UI.PageSizes {
		if n < 1 {
			return fmt.Errorf("ui.page_sizes: invalid size %d", n)
		}
	}
	found := false
	for _, n := range c.UI.PageSizes {
		if n == c.UI.DefaultPageSize {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("ui.default_page_size %d is not one of ui.page_sizes", c.UI.DefaultPageSize)
	}
	for name, p := range map[string]PolicyConfig{"sale": c.Pricing.Sale, "pos": c.Pricing.POS} {
		if p.DiscountMode != "percent" && p.DiscountMode != "fixed" {
			return fmt.Errorf("pricing.%s.discount_mode must be percent or fixed, got %q", name, p.DiscountMode)
		}
		if p.TaxBase != "subtotal" && p.TaxBase != "net" {
			return fmt.Errorf("pricing.%s.tax_base must be subtotal or net, got %q", name, p.TaxBase)
		}
	}
	return nil
}

// SessionPath returns the session file location, expanding a leading ~.
func (c *Config) SessionPath() string {
	p := c.Auth.SessionFile
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

func setDefaults(v *viper.Viper) {
	// API
	v.SetDefault("api.base_url", "http://localhost:1337")
	v.SetDefault("api.dashboard_url", "http://localhost:3000/dashboard")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.burst", 20)

	// Auth
	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.session_file", "~/.config/posdash/session.json")

	// UI
	v.SetDefault("ui.page_sizes", []int{10, 25, 50})
	v.SetDefault("ui.default_page_size", 10)
	v.SetDefault("ui.search_debounce", "500ms")
	v.SetDefault("ui.start_screen", "dashboard")

	// Pricing
	v.SetDefault("pricing.sale.discount_mode", "percent")
	v.SetDefault("pricing.sale.discount", 10)
	v.SetDefault("pricing.sale.tax_rate", 7)
	v.SetDefault("pricing.sale.tax_base", "subtotal")
	v.SetDefault("pricing.sale.round_whole", false)
	v.SetDefault("pricing.pos.discount_mode", "fixed")
	v.SetDefault("pricing.pos.discount", 5)
	v.SetDefault("pricing.pos.tax_rate", 10)
	v.SetDefault("pricing.pos.tax_base", "net")
	v.SetDefault("pricing.pos.round_whole", true)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "file")
	v.SetDefault("log.file_path", filepath.Join(os.TempDir(), "posdash", "posdash.log"))
}
