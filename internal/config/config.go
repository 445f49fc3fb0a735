package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/opencivicdata/ocdid-ca/internal/names"
)

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Scrape ScrapeConfig `yaml:"scrape" mapstructure:"scrape"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DataConfig locates the reference data checkout.
type DataConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// FetchConfig configures HTTP downloads.
type FetchConfig struct {
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// MatchConfig configures fingerprinting.
type MatchConfig struct {
	WordOrder string `yaml:"word_order" mapstructure:"word_order"`
}

// ScrapeConfig configures the scrapers.
type ScrapeConfig struct {
	TempDir string     `yaml:"temp_dir" mapstructure:"temp_dir"`
	URLs    ScrapeURLs `yaml:"urls" mapstructure:"urls"`
	// URLOverrides maps a census subdivision code to the URL written for it.
	URLOverrides map[string]string `yaml:"url_overrides" mapstructure:"url_overrides"`
}

// ScrapeURLs holds the source locations of the scrapers.
type ScrapeURLs struct {
	CensusDivisions    string `yaml:"census_divisions" mapstructure:"census_divisions"`
	CensusSubdivisions string `yaml:"census_subdivisions" mapstructure:"census_subdivisions"`
	FCMMembers         string `yaml:"fcm_members" mapstructure:"fcm_members"`
}

// WordOrder returns the configured fingerprint word order.
func (c *Config) WordOrder() names.WordOrder {
	o, err := names.ParseWordOrder(c.Match.WordOrder)
	if err != nil {
		return names.Sorted
	}
	return o
}

// Validate checks values that viper cannot.
func (c *Config) Validate() error {
	if _, err := names.ParseWordOrder(c.Match.WordOrder); err != nil {
		return eris.Wrap(err, "config: match.word_order")
	}
	switch strings.ToLower(c.Data.Encoding) {
	case "", "utf-8", "utf8", "latin-1", "latin1", "iso-8859-1":
	default:
		return eris.Errorf("config: data.encoding %q is not utf-8 or latin-1", c.Data.Encoding)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("config: log.format %q is not json or console", c.Log.Format)
	}
	if c.Fetch.MaxRetries < 0 {
		return eris.New("config: fetch.max_retries must not be negative")
	}
	if c.Fetch.TimeoutSecs < 0 {
		return eris.New("config: fetch.timeout_secs must not be negative")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return eris.New("config: fetch.requests_per_second must not be negative")
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OCDID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.dir", ".")
	v.SetDefault("data.encoding", "utf-8")
	v.SetDefault("fetch.user_agent", "ocdid-ca/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.requests_per_second", 2.0)
	v.SetDefault("match.word_order", "sorted")
	v.SetDefault("scrape.temp_dir", "")
	v.SetDefault("scrape.urls.census_divisions", "")
	v.SetDefault("scrape.urls.census_subdivisions", "")
	v.SetDefault("scrape.urls.fcm_members", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
