package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeFlow    = "flow"
	ModePattern = "pattern"

	SourceRanked  = "ranked"
	SourceCatalog = "catalog"

	ScheduleOnce       = "once"
	ScheduleContinuous = "continuous"
)

type Config struct {
	Environment   string              `yaml:"environment" default:"development" validate:"required"`
	Log           LogConfig           `yaml:"log"`
	Scan          ScanConfig          `yaml:"scan"`
	Flow          FlowConfig          `yaml:"flow"`
	Pattern       PatternConfig       `yaml:"pattern"`
	Throttle      ThrottleConfig      `yaml:"throttle"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Report        ReportConfig        `yaml:"report"`
	CoinMarketCap CoinMarketCapConfig `yaml:"coinmarketcap"`
	Binance       BinanceConfig       `yaml:"binance"`
	Server        ServerConfig        `yaml:"server"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Sinks         SinksConfig         `yaml:"sinks"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stdout"`
}

type ScanConfig struct {
	Mode string `yaml:"mode" default:"flow" validate:"oneof=flow pattern"`
	// TargetCoins caps the universe; 0 leaves the catalog source unbounded.
	// Unset means 100 for the ranked source and every contract for the catalog.
	TargetCoins       *int   `yaml:"target_coins" validate:"omitempty,gte=0,lte=400"`
	CandidateHeadroom int    `yaml:"candidate_headroom" default:"200" validate:"gte=0"`
	Quote             string `yaml:"quote" default:"USDT" validate:"required"`
	UniverseSource    string `yaml:"universe_source" validate:"omitempty,oneof=ranked catalog"`
	Workers           int    `yaml:"workers" validate:"gte=0,lte=64"`
	ProgressEvery     int    `yaml:"progress_every" default:"10" validate:"gte=1"`
}

type FlowConfig struct {
	Depth       int `yaml:"depth" default:"500" validate:"oneof=5 10 20 50 100 500 1000"`
	TradesLimit int `yaml:"trades_limit" default:"1000" validate:"gte=1,lte=1000"`
}

type PatternConfig struct {
	Interval string `yaml:"interval" default:"2h" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w"`
	Candles  int    `yaml:"candles" default:"4" validate:"gte=3,lte=1500"`
}

type ThrottleConfig struct {
	// TaskDelay is paid once per symbol before its first read. Unset means the
	// mode default, an explicit 0 disables the pause.
	TaskDelay *time.Duration `yaml:"task_delay" validate:"omitempty,gte=0"`
	// EvidenceDelay separates the depth read from the trades read of one symbol.
	EvidenceDelay time.Duration `yaml:"evidence_delay" default:"200ms" validate:"gte=0"`
}

type SchedulerConfig struct {
	Mode            string        `yaml:"mode" default:"once" validate:"oneof=once continuous"`
	Interval        time.Duration `yaml:"interval" default:"5m" validate:"gte=0"`
	SubtractElapsed bool          `yaml:"subtract_elapsed" default:"true"`
}

type ReportConfig struct {
	Timezone     string `yaml:"timezone" default:"Asia/Kolkata"`
	ChartURLBase string `yaml:"chart_url_base" default:"https://binance.com/en/futures/" validate:"url"`
}

type CoinMarketCapConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url" default:"https://pro-api.coinmarketcap.com" validate:"url"`
	Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
}

type BinanceConfig struct {
	BaseURL string        `yaml:"base_url" default:"https://fapi.binance.com" validate:"url"`
	Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	// CatalogTTL keeps exchangeInfo across cycles; zero reads it every cycle.
	CatalogTTL time.Duration `yaml:"catalog_ttl" validate:"gte=0"`
}

type ServerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

type SinksConfig struct {
	Kafka      KafkaSinkConfig      `yaml:"kafka"`
	ClickHouse ClickHouseSinkConfig `yaml:"clickhouse"`
	Redis      RedisSinkConfig      `yaml:"redis"`
}

type KafkaSinkConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	FlowTopic    string        `yaml:"flow_topic" default:"flowscan.flow_reports"`
	SignalTopic  string        `yaml:"signal_topic" default:"flowscan.pattern_signals"`
	ReportTopic  string        `yaml:"report_topic" default:"flowscan.cycle_reports"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

type ClickHouseSinkConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Host        string        `yaml:"host" default:"localhost"`
	Port        int           `yaml:"port" default:"9000"`
	Database    string        `yaml:"database" default:"flowscan"`
	User        string        `yaml:"user" default:"default"`
	Password    string        `yaml:"password"`
	UseHTTP     bool          `yaml:"use_http"`
	DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
}

type RedisSinkConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Addr        string        `yaml:"addr" default:"localhost:6379"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	Channel     string        `yaml:"channel" default:"flowscan:signals"`
	Prefix      string        `yaml:"prefix" default:"flowscan"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl" default:"1h"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file next to the binary is honoured when present.
func LoadWithEnv(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides behaves like LoadWithEnv and then calls apply, if set,
// before mode defaults are filled and the result is validated.
func LoadWithOverrides(path string, apply func(*Config)) (*Config, error) {
	_ = godotenv.Load()

	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CMC_API_KEY"); v != "" {
		c.CoinMarketCap.APIKey = v
	}
	if v := os.Getenv("SCAN_MODE"); v != "" {
		c.Scan.Mode = v
	}
	if v := os.Getenv("TARGET_COINS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("TARGET_COINS: %w", err)
		}
		c.Scan.TargetCoins = &n
	}
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("WORKERS: %w", err)
		}
		c.Scan.Workers = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Sinks.Kafka.Brokers = strings.Split(v, ",")
	}
	if apply != nil {
		apply(c)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse applies struct defaults and then the YAML document on top of them.
// It does not validate.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid and fills mode dependent defaults.
func (c *Config) Validate() error {
	c.applyModeDefaults()

	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Scan.UniverseSource == SourceRanked {
		if c.CoinMarketCap.APIKey == "" {
			return errors.New("coinmarketcap.api_key is required for the ranked universe source")
		}
		if c.Scan.Target() < 1 {
			return errors.New("scan.target_coins must be >= 1 for the ranked universe source")
		}
	}
	if c.Scheduler.Mode == ScheduleContinuous && c.Scheduler.Interval <= 0 {
		return errors.New("scheduler.interval must be positive in continuous mode")
	}
	if c.Sinks.Kafka.Enabled && len(c.Sinks.Kafka.Brokers) == 0 {
		return errors.New("sinks.kafka.brokers cannot be empty when kafka is enabled")
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("report.timezone: %w", err)
	}
	return nil
}

// applyModeDefaults mirrors the two scanners: the flow scan runs strictly serial against
// the ranked universe, the pattern scan fans out over the whole catalog.
func (c *Config) applyModeDefaults() {
	if c.Scan.UniverseSource == "" {
		c.Scan.UniverseSource = SourceRanked
		if c.Scan.Mode == ModePattern {
			c.Scan.UniverseSource = SourceCatalog
		}
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 1
		if c.Scan.Mode == ModePattern {
			c.Scan.Workers = 3
		}
	}
	if c.Scan.TargetCoins == nil {
		n := 100
		if c.Scan.UniverseSource == SourceCatalog {
			n = 0
		}
		c.Scan.TargetCoins = &n
	}
	if c.Throttle.TaskDelay == nil {
		d := 200 * time.Millisecond
		if c.Scan.Mode == ModePattern {
			d = 400 * time.Millisecond
		}
		c.Throttle.TaskDelay = &d
	}
}

// Target returns the universe cap, 0 when unbounded.
func (s ScanConfig) Target() int {
	if s.TargetCoins == nil {
		return 0
	}
	return *s.TargetCoins
}

// TaskPause returns the per-task delay, 0 when disabled.
func (t ThrottleConfig) TaskPause() time.Duration {
	if t.TaskDelay == nil {
		return 0
	}
	return *t.TaskDelay
}
