// Package config loads runtime settings for the coming-soon site from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultListenAddr = "127.0.0.1:4173"

	// LaunchDateLayout is the accepted format for SITE_LAUNCH_DATE.
	LaunchDateLayout = "2006-01-02"
)

// Store drivers understood by storage.Open.
const (
	DriverAuto     = ""
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverJSON     = "json"
	DriverMemory   = "memory"
)

// Config captures runtime settings for the site server.
type Config struct {
	ListenAddr string        `env:"LISTEN_ADDR"`
	Port       string        `env:"PORT"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	LogDir     string        `env:"LOG_DIR"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionMax uint64        `env:"SESSION_MAX" envDefault:"10000"`
	CORSOrigin []string      `env:"CORS_ORIGINS"`

	Site   SiteConfig   `envPrefix:"SITE_"`
	Social SocialConfig `envPrefix:"SOCIAL_"`
	FAQ    FAQConfig    `envPrefix:"FAQ_"`
	Store  StoreConfig  `envPrefix:"STORE_"`
}

// SiteConfig holds the copy rendered in the hero and gift flow.
type SiteConfig struct {
	Name         string `env:"NAME" envDefault:"Lumen"`
	Tagline      string `env:"TAGLINE" envDefault:"Something bright is on its way."`
	LaunchDate   string `env:"LAUNCH_DATE"`
	GiftCode     string `env:"GIFT_CODE" envDefault:"EARLYBIRD15"`
	// ShowGiftCode prints GiftCode in the claim confirmation. Off, the
	// visitor is told the code arrives by email.
	ShowGiftCode bool   `env:"SHOW_GIFT_CODE" envDefault:"false"`
	BaseURL      string `env:"BASE_URL"`
}

// ConfirmationCode is the code to reveal after a successful claim, or empty
// when the code is delivered by email.
func (s SiteConfig) ConfirmationCode() string {
	if !s.ShowGiftCode {
		return ""
	}
	return s.GiftCode
}

// SocialConfig lists the outbound social links in the footer.
type SocialConfig struct {
	XURL         string `env:"X_URL" envDefault:"https://x.com/"`
	InstagramURL string `env:"INSTAGRAM_URL" envDefault:"https://instagram.com/"`
	DiscordURL   string `env:"DISCORD_URL" envDefault:"https://discord.com/"`
}

// FAQConfig controls the accordion behaviour.
type FAQConfig struct {
	Mode        string   `env:"MODE" envDefault:"single"`
	Collapsible bool     `env:"COLLAPSIBLE" envDefault:"true"`
	DefaultOpen []string `env:"DEFAULT_OPEN"`
}

// StoreConfig selects and configures the email store backend.
type StoreConfig struct {
	Driver   string        `env:"DRIVER"`
	URL      string        `env:"URL"`
	Key      string        `env:"KEY"`
	DSN      string        `env:"DSN"`
	DataDir  string        `env:"DATA_DIR" envDefault:"data"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Fallback bool          `env:"FALLBACK" envDefault:"true"`
}

// HostedConfigured reports whether credentials for the hosted REST store are present.
func (s StoreConfig) HostedConfigured() bool {
	return strings.TrimSpace(s.URL) != "" && strings.TrimSpace(s.Key) != ""
}

// ResolvedDriver returns the backend that Open will use.
func (s StoreConfig) ResolvedDriver() string {
	driver := strings.ToLower(strings.TrimSpace(s.Driver))
	if driver != DriverAuto {
		return driver
	}
	if s.HostedConfigured() {
		return DriverREST
	}
	return DriverMemory
}

// Load reads an optional dotenv file and then the process environment.
// A missing dotenv file is not an error.
func Load(envFile string) (Config, error) {
	if envFile = strings.TrimSpace(envFile); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return parse(env.Options{})
}

// FromMap builds a Config from an explicit variable set instead of the process environment.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		if port := strings.TrimSpace(c.Port); port != "" {
			c.ListenAddr = ":" + strings.TrimPrefix(port, ":")
		} else {
			c.ListenAddr = defaultListenAddr
		}
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.FAQ.Mode = strings.ToLower(strings.TrimSpace(c.FAQ.Mode))
	c.Site.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Site.BaseURL), "/")
}

// LaunchDate parses SITE_LAUNCH_DATE. The boolean is false when unset.
func (c Config) LaunchDate() (time.Time, bool) {
	raw := strings.TrimSpace(c.Site.LaunchDate)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(LaunchDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("config: listen address is required")
	}
	if strings.TrimSpace(c.Site.Name) == "" {
		return fmt.Errorf("config: site name is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session ttl must be positive")
	}
	if c.SessionMax == 0 {
		return fmt.Errorf("config: session max must be positive")
	}
	if raw := strings.TrimSpace(c.Site.LaunchDate); raw != "" {
		if _, err := time.Parse(LaunchDateLayout, raw); err != nil {
			return fmt.Errorf("config: launch date %q must use YYYY-MM-DD", raw)
		}
	}
	switch c.FAQ.Mode {
	case "single", "multiple":
	default:
		return fmt.Errorf("config: faq mode %q must be single or multiple", c.FAQ.Mode)
	}
	if c.Site.BaseURL != "" {
		if u, err := url.Parse(c.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: base url %q is not absolute", c.Site.BaseURL)
		}
	}
	return c.Store.validate()
}

func (s StoreConfig) validate() error {
	switch s.ResolvedDriver() {
	case DriverREST:
		if !s.HostedConfigured() {
			return fmt.Errorf("config: rest store requires STORE_URL and STORE_KEY")
		}
		u, err := url.Parse(strings.TrimSpace(s.URL))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: store url %q is not absolute", s.URL)
		}
		if s.Timeout <= 0 {
			return fmt.Errorf("config: store timeout must be positive")
		}
	case DriverPostgres, DriverRedis, DriverSQLite:
		if strings.TrimSpace(s.DSN) == "" {
			return fmt.Errorf("config: %s store requires STORE_DSN", s.ResolvedDriver())
		}
	case DriverJSON:
		if strings.TrimSpace(s.DataDir) == "" {
			return fmt.Errorf("config: json store requires STORE_DATA_DIR")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown store driver %q", s.Driver)
	}
	return nil
}
