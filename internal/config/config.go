package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultIDColumn = "SECFNAME"
	DefaultBaseURL  = "https://www.sec.gov/Archives/"
	DefaultIndex    = "filing-metrics"
)

type Input struct {
	File     string `yaml:"file"`
	IDColumn string `yaml:"id_column"`
	BaseURL  string `yaml:"base_url"`
	Glob     string `yaml:"glob"`
	Limit    int    `yaml:"limit"`
}

type Lexicons struct {
	MasterDictionary string `yaml:"master_dictionary"`
	Uncertainty      string `yaml:"uncertainty"`
	Constraining     string `yaml:"constraining"`
}

type Fetch struct {
	Headers       map[string]string `yaml:"headers"`
	Timeout       time.Duration     `yaml:"timeout"`
	RatePerSecond float64           `yaml:"rate_per_second"`
	MaxAttempts   int               `yaml:"max_attempts"`
	CacheSize     int               `yaml:"cache_size"`
	CacheTTL      time.Duration     `yaml:"cache_ttl"`
	RedisAddr     string            `yaml:"redis_addr"`
}

type Output struct {
	CSV                string `yaml:"csv"`
	SQLite             string `yaml:"sqlite"`
	Postgres           string `yaml:"postgres"`
	ElasticsearchAddr  string `yaml:"elasticsearch_addr"`
	ElasticsearchIndex string `yaml:"elasticsearch_index"`
	Workspace          string `yaml:"workspace"`
}

type Telemetry struct {
	MetricsFile  string  `yaml:"metrics_file"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Input     Input     `yaml:"input"`
	Lexicons  Lexicons  `yaml:"lexicons"`
	Fetch     Fetch     `yaml:"fetch"`
	Output    Output    `yaml:"output"`
	Workers   int       `yaml:"workers"`
	LogLevel  string    `yaml:"log_level"`
	Telemetry Telemetry `yaml:"telemetry"`
	Server    Server    `yaml:"server"`
}

// Defaults mirrors the SEC EDGAR setup: fair-access rate, a declared
// User-Agent and compressed transfers.
func Defaults() *Config {
	return &Config{
		Input: Input{
			IDColumn: DefaultIDColumn,
			BaseURL:  DefaultBaseURL,
		},
		Lexicons: Lexicons{
			MasterDictionary: "LoughranMcDonald_MasterDictionary_2018.csv",
			Uncertainty:      "uncertainty_dictionary.csv",
			Constraining:     "constraining_dictionary.csv",
		},
		Fetch: Fetch{
			Headers: map[string]string{
				"User-Agent":      "filingmetrics admin@example.com",
				"Accept-Encoding": "gzip, deflate",
				"Host":            "www.sec.gov",
			},
			Timeout:       30 * time.Second,
			RatePerSecond: 10,
			MaxAttempts:   4,
			CacheSize:     256,
			CacheTTL:      time.Hour,
		},
		Output: Output{
			CSV:                "Output.csv",
			ElasticsearchIndex: DefaultIndex,
		},
		LogLevel: "info",
		Telemetry: Telemetry{
			SamplingRate: 1,
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the optional YAML file at path over the defaults, then applies
// FM_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Input.File = getEnv("FM_INPUT_FILE", c.Input.File)
	c.Input.IDColumn = getEnv("FM_INPUT_ID_COLUMN", c.Input.IDColumn)
	c.Input.BaseURL = getEnv("FM_INPUT_BASE_URL", c.Input.BaseURL)
	c.Input.Glob = getEnv("FM_INPUT_GLOB", c.Input.Glob)
	c.Lexicons.MasterDictionary = getEnv("FM_MASTER_DICTIONARY", c.Lexicons.MasterDictionary)
	c.Lexicons.Uncertainty = getEnv("FM_UNCERTAINTY_DICTIONARY", c.Lexicons.Uncertainty)
	c.Lexicons.Constraining = getEnv("FM_CONSTRAINING_DICTIONARY", c.Lexicons.Constraining)
	c.Fetch.RedisAddr = getEnv("FM_REDIS_ADDR", c.Fetch.RedisAddr)
	c.Output.CSV = getEnv("FM_OUTPUT_CSV", c.Output.CSV)
	c.Output.SQLite = getEnv("FM_OUTPUT_SQLITE", c.Output.SQLite)
	c.Output.Postgres = getEnv("FM_OUTPUT_POSTGRES", c.Output.Postgres)
	c.Output.ElasticsearchAddr = getEnv("FM_ELASTICSEARCH_ADDR", c.Output.ElasticsearchAddr)
	c.Output.ElasticsearchIndex = getEnv("FM_ELASTICSEARCH_INDEX", c.Output.ElasticsearchIndex)
	c.Output.Workspace = getEnv("FM_WORKSPACE", c.Output.Workspace)
	c.LogLevel = getEnv("FM_LOG_LEVEL", c.LogLevel)
	c.Telemetry.MetricsFile = getEnv("FM_METRICS_FILE", c.Telemetry.MetricsFile)
	c.Telemetry.OTLPEndpoint = getEnv("FM_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Server.Addr = getEnv("FM_SERVER_ADDR", c.Server.Addr)
	if ua := getEnv("FM_USER_AGENT", ""); ua != "" {
		if c.Fetch.Headers == nil {
			c.Fetch.Headers = map[string]string{}
		}
		c.Fetch.Headers["User-Agent"] = ua
	}

	var err error
	if c.Input.Limit, err = getInt("FM_INPUT_LIMIT", c.Input.Limit); err != nil {
		return err
	}
	if c.Workers, err = getInt("FM_WORKERS", c.Workers); err != nil {
		return err
	}
	if c.Fetch.MaxAttempts, err = getInt("FM_FETCH_MAX_ATTEMPTS", c.Fetch.MaxAttempts); err != nil {
		return err
	}
	if c.Fetch.CacheSize, err = getInt("FM_FETCH_CACHE_SIZE", c.Fetch.CacheSize); err != nil {
		return err
	}
	if c.Fetch.RatePerSecond, err = getFloat("FM_FETCH_RATE", c.Fetch.RatePerSecond); err != nil {
		return err
	}
	if c.Telemetry.SamplingRate, err = getFloat("FM_SAMPLING_RATE", c.Telemetry.SamplingRate); err != nil {
		return err
	}
	if c.Fetch.Timeout, err = getDuration("FM_FETCH_TIMEOUT", c.Fetch.Timeout); err != nil {
		return err
	}
	if c.Fetch.CacheTTL, err = getDuration("FM_FETCH_CACHE_TTL", c.Fetch.CacheTTL); err != nil {
		return err
	}
	return nil
}

// Validate checks the settings a batch run depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.Input.File == "" && c.Input.Glob == "" {
		errs = append(errs, errors.New("input.file or input.glob is required"))
	}
	if c.Input.File != "" && c.Input.Glob != "" {
		errs = append(errs, errors.New("input.file and input.glob are mutually exclusive"))
	}
	if c.Input.File != "" {
		if strings.TrimSpace(c.Input.IDColumn) == "" {
			errs = append(errs, errors.New("input.id_column must not be empty"))
		}
		if _, err := url.Parse(c.Input.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("input.base_url: %w", err))
		}
	}
	if c.Input.Limit < 0 {
		errs = append(errs, errors.New("input.limit must not be negative"))
	}
	if c.Lexicons.MasterDictionary == "" || c.Lexicons.Uncertainty == "" || c.Lexicons.Constraining == "" {
		errs = append(errs, errors.New("lexicons.master_dictionary, lexicons.uncertainty and lexicons.constraining are required"))
	}
	if c.Fetch.RatePerSecond < 0 {
		errs = append(errs, errors.New("fetch.rate_per_second must not be negative"))
	}
	if c.Fetch.MaxAttempts <= 0 {
		errs = append(errs, errors.New("fetch.max_attempts must be positive"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		errs = append(errs, errors.New("telemetry.sampling_rate must be within [0, 1]"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
