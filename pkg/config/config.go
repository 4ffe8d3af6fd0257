package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/arrivalboard/pkg/arrivals"
	"github.com/travigo/arrivalboard/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStation        = "bosso"
	DefaultStationName    = "Bosso"
	DefaultRequestTimeout = 20 * time.Second
	DefaultQueue          = "arrival_events"
	DefaultCacheExpiry    = 10 * time.Minute
)

type Config struct {
	Station     string `yaml:"station"`
	StationName string `yaml:"station_name"`
	Endpoint    string `yaml:"endpoint"`

	RefreshRate    Duration `yaml:"refresh_rate"`
	ClockRate      Duration `yaml:"clock_rate"`
	RequestTimeout Duration `yaml:"request_timeout"`
	FetchOnStart   bool     `yaml:"fetch_on_start"`

	Listen string `yaml:"listen"`

	Console ConsoleConfig `yaml:"console"`
	Redis   RedisConfig   `yaml:"redis"`
}

type ConsoleConfig struct {
	Enabled   bool `yaml:"enabled"`
	ShowClock bool `yaml:"show_clock"`
}

type RedisConfig struct {
	BoardCache      bool     `yaml:"board_cache"`
	Events          bool     `yaml:"events"`
	Queue           string   `yaml:"queue"`
	CacheExpiration Duration `yaml:"cache_expiration"`
}

func (r RedisConfig) Enabled() bool {
	return r.BoardCache || r.Events
}

// Duration accepts ISO8601 durations (PT30S) as well as Go durations (500ms).
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ParseDuration(raw)
	if err != nil {
		return err
	}

	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(strings.ToUpper(raw), "P") {
		return time.ParseDuration(raw)
	}

	isoDuration, err := iso8601.ParseISO8601(strings.ToUpper(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid ISO8601 duration %q: %w", raw, err)
	}

	reference := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	return isoDuration.Shift(reference).Sub(reference), nil
}

func Default() *Config {
	return &Config{
		Station:        DefaultStation,
		StationName:    DefaultStationName,
		Endpoint:       arrivals.DefaultStationEndpoint,
		RefreshRate:    Duration{arrivals.DefaultRefreshRate},
		ClockRate:      Duration{arrivals.DefaultClockRate},
		RequestTimeout: Duration{DefaultRequestTimeout},
		Console: ConsoleConfig{
			Enabled: true,
		},
		Redis: RedisConfig{
			Queue:           DefaultQueue,
			CacheExpiration: Duration{DefaultCacheExpiry},
		},
	}
}

// Load builds the configuration from the defaults, then the YAML file at path (if any),
// then the ARRIVALBOARD_* environment variables.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		configYaml, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		decoder := yaml.NewDecoder(bytes.NewReader(configYaml))
		decoder.KnownFields(true)
		if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := config.ApplyEnvironment(util.GetEnvironmentVariables()); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) ApplyEnvironment(env map[string]string) error {
	if env["ARRIVALBOARD_STATION"] != "" {
		c.Station = env["ARRIVALBOARD_STATION"]
	}

	if env["ARRIVALBOARD_STATION_NAME"] != "" {
		c.StationName = env["ARRIVALBOARD_STATION_NAME"]
	}

	if env["ARRIVALBOARD_ENDPOINT"] != "" {
		c.Endpoint = env["ARRIVALBOARD_ENDPOINT"]
	}

	if env["ARRIVALBOARD_REFRESH_RATE"] != "" {
		refreshRate, err := ParseDuration(env["ARRIVALBOARD_REFRESH_RATE"])
		if err != nil {
			return fmt.Errorf("ARRIVALBOARD_REFRESH_RATE: %w", err)
		}
		c.RefreshRate = Duration{refreshRate}
	}

	if env["ARRIVALBOARD_FETCH_ON_START"] != "" {
		c.FetchOnStart = util.EnvironmentFlag(env["ARRIVALBOARD_FETCH_ON_START"])
	}

	if env["ARRIVALBOARD_LISTEN"] != "" {
		c.Listen = env["ARRIVALBOARD_LISTEN"]
	}

	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Station) == "" {
		return errors.New("station code must be set")
	}

	if c.Endpoint == "" {
		return errors.New("endpoint must be set")
	}

	if c.RefreshRate.Duration <= 0 {
		return fmt.Errorf("refresh rate must be positive, got %s", c.RefreshRate)
	}

	if c.ClockRate.Duration <= 0 {
		return fmt.Errorf("clock rate must be positive, got %s", c.ClockRate)
	}

	if c.RequestTimeout.Duration < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}

	if c.Redis.Events && c.Redis.Queue == "" {
		return errors.New("redis queue name must be set when events are enabled")
	}

	return nil
}
