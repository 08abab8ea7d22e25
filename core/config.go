package core

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "storefront.config.yml"
	defaultOutputDir  = "./cache"
	defaultFlashTTL   = 5 * time.Minute
)

type Config struct {
	OutputDir    string `yaml:"outputDir"`
	Cache        *bool  `yaml:"cache"`
	DebugHeaders bool   `yaml:"debugHeaders"`
	DebugLogs    bool   `yaml:"debugLogs"`
	TemplatesDir string `yaml:"templatesDir"`
	StaticDir    string `yaml:"staticDir"`
	SecretKey    string `yaml:"secretKey"`
	FlashTTL     string `yaml:"flashTTL"`
	LogLevel     string `yaml:"logLevel"`

	// CacheEnabled is the effective page cache switch. It follows Cache when
	// that is set and the run mode otherwise.
	CacheEnabled bool `yaml:"-"`

	// GeneratedSecret is set when no secret was configured and one was made up at load time.
	GeneratedSecret bool `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies STOREFRONT_* environment
// overrides and fills in defaults. A missing or unreadable file is not an error.
func LoadConfig(path string) Config {
	var cfg Config

	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, &cfg)
	}

	applyEnv(&cfg)

	if cfg.Cache != nil {
		cfg.CacheEnabled = *cfg.Cache
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = randomSecret()
		cfg.GeneratedSecret = true
	}

	return cfg
}

// FlashLifetime parses FlashTTL, falling back to five minutes.
func (c Config) FlashLifetime() time.Duration {
	if c.FlashTTL == "" {
		return defaultFlashTTL
	}
	d, err := time.ParseDuration(c.FlashTTL)
	if err != nil || d <= 0 {
		return defaultFlashTTL
	}
	return d
}

// ApplyModeDefault enables the page cache for the run mode unless the cache
// key or STOREFRONT_CACHE set it explicitly.
func (c *Config) ApplyModeDefault(cacheByDefault bool) {
	if c.Cache == nil {
		c.CacheEnabled = cacheByDefault
	}
}

func applyEnv(cfg *Config) {
	if v := envValue("STOREFRONT_SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := envValue("STOREFRONT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := envValue("STOREFRONT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := envValue("STOREFRONT_FLASH_TTL"); v != "" {
		cfg.FlashTTL = v
	}
	if v := envValue("STOREFRONT_CACHE"); v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			cfg.Cache = &b
		}
	}
	if v := envValue("STOREFRONT_DEBUG_HEADERS"); v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			cfg.DebugHeaders = b
		}
	}
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("storefront: cannot read random secret: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
