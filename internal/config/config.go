package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"etf-return-stats/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Report   ReportConfig   `mapstructure:"report"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates the optional PostgreSQL price cache.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SourceConfig covers price data source access.
type SourceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// HistogramClip bounds the x-axis of rendered return histograms.
type HistogramClip struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// ReportConfig parameterises the statistical report.
type ReportConfig struct {
	Tickers           []string      `mapstructure:"tickers"`
	Start             time.Time     `mapstructure:"start"`
	End               time.Time     `mapstructure:"end"`
	RollingWindows    []int         `mapstructure:"rolling_windows"`
	RollingPair       []string      `mapstructure:"rolling_pair"`
	CorrelationMethod string        `mapstructure:"correlation_method"`
	ConfidenceLevel   float64       `mapstructure:"confidence_level"`
	KSTicker          string        `mapstructure:"ks_ticker"`
	HistogramBins     int           `mapstructure:"histogram_bins"`
	HistogramClip     HistogramClip `mapstructure:"histogram_clip"`
	MaxChartPoints    int           `mapstructure:"max_chart_points"`
	OutputDir         string        `mapstructure:"output_dir"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ETFSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "etfstats")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("source.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("source.request_timeout", "15s")
	v.SetDefault("source.user_agent", "etfstats/1.0")

	v.SetDefault("report.tickers", []string{"SPY", "EFA", "TLT", "GLD", "VNQ"})
	v.SetDefault("report.start", "2015-01-02")
	v.SetDefault("report.end", "2025-01-02")
	v.SetDefault("report.rolling_windows", []int{25, 75, 252})
	v.SetDefault("report.rolling_pair", []string{"SPY", "TLT"})
	v.SetDefault("report.correlation_method", "kendall")
	v.SetDefault("report.confidence_level", 0.95)
	v.SetDefault("report.ks_ticker", "SPY")
	v.SetDefault("report.histogram_bins", 300)
	v.SetDefault("report.histogram_clip.min", -0.05)
	v.SetDefault("report.histogram_clip.max", 0.05)
	v.SetDefault("report.max_chart_points", 5000)
	v.SetDefault("report.output_dir", "reports")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.DateOnly),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	r := &c.Report

	if len(r.Tickers) < 2 {
		return fmt.Errorf("report.tickers must list at least two symbols")
	}
	seen := make(map[string]bool, len(r.Tickers))
	for _, t := range r.Tickers {
		if t == "" {
			return fmt.Errorf("report.tickers must not contain empty symbols")
		}
		if seen[t] {
			return fmt.Errorf("report.tickers contains duplicate symbol %q", t)
		}
		seen[t] = true
	}

	if !r.Start.Before(r.End) {
		return fmt.Errorf("report.start must be before report.end")
	}

	if len(r.RollingWindows) == 0 {
		return fmt.Errorf("report.rolling_windows must not be empty")
	}
	for _, w := range r.RollingWindows {
		if w < 2 {
			return fmt.Errorf("report.rolling_windows entries must be at least 2, got %d", w)
		}
	}

	if len(r.RollingPair) != 2 {
		return fmt.Errorf("report.rolling_pair must name exactly two symbols")
	}
	for _, t := range r.RollingPair {
		if !seen[t] {
			return fmt.Errorf("report.rolling_pair symbol %q is not in report.tickers", t)
		}
	}
	if r.RollingPair[0] == r.RollingPair[1] {
		return fmt.Errorf("report.rolling_pair symbols must differ")
	}

	if r.CorrelationMethod != "kendall" {
		return fmt.Errorf("report.correlation_method %q is not supported (only kendall)", r.CorrelationMethod)
	}

	if r.ConfidenceLevel <= 0 || r.ConfidenceLevel >= 1 {
		return fmt.Errorf("report.confidence_level must be in (0, 1)")
	}

	if !seen[r.KSTicker] {
		return fmt.Errorf("report.ks_ticker %q is not in report.tickers", r.KSTicker)
	}

	if r.HistogramBins <= 0 {
		return fmt.Errorf("report.histogram_bins must be greater than zero")
	}
	if r.HistogramClip.Min >= r.HistogramClip.Max {
		return fmt.Errorf("report.histogram_clip.min must be below report.histogram_clip.max")
	}

	if r.MaxChartPoints <= 0 {
		return fmt.Errorf("report.max_chart_points must be greater than zero")
	}

	if r.OutputDir == "" {
		return fmt.Errorf("report.output_dir must not be empty")
	}

	return nil
}

// SmallestWindow returns the shortest configured rolling window.
func (r *ReportConfig) SmallestWindow() int {
	smallest := r.RollingWindows[0]
	for _, w := range r.RollingWindows[1:] {
		if w < smallest {
			smallest = w
		}
	}
	return smallest
}
