package util

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const ConfigEnvKey = "STOCKTRADER_ENV"

type PeriodConfig struct {
	Start     string  `json:"start"`
	End       string  `json:"end"`
	MinReturn float64 `json:"minReturn"`
	MinYears  float64 `json:"minYears"`
}

func (p PeriodConfig) StartDate() (time.Time, error) {
	return ParseDate(p.Start)
}

func (p PeriodConfig) EndDate() (time.Time, error) {
	return ParseDate(p.End)
}

type WindowedConfig struct {
	MaxTransactions int     `json:"maxTransactions"`
	FloorFraction   float64 `json:"floorFraction"`
	GapYears        float64 `json:"gapYears"`
}

type IntradayConfig struct {
	MaxTransactions int `json:"maxTransactions"`
}

type Config struct {
	DataDir           string         `json:"dataDir"`
	OutputDir         string         `json:"outputDir"`
	InitialCapital    float64        `json:"initialCapital"`
	FeeRate           float64        `json:"feeRate"`
	MaxVolumeFraction float64        `json:"maxVolumeFraction"`
	Windowed          WindowedConfig `json:"windowed"`
	Intraday          IntradayConfig `json:"intraday"`
	Periods           []PeriodConfig `json:"periods"`
	ApiPort           int            `json:"apiPort"`
}

func DefaultPeriods() []PeriodConfig {
	return []PeriodConfig{
		{Start: "1962-01-01", End: "1980-01-01", MinReturn: 2, MinYears: 5},
		{Start: "1980-01-01", End: "2000-01-01", MinReturn: 100, MinYears: 10},
		{Start: "2000-01-01", End: "2018-01-01", MinReturn: 50, MinYears: 5},
	}
}

func DefaultConfig() Config {
	return Config{
		DataDir:           "data",
		OutputDir:         "out",
		InitialCapital:    1,
		FeeRate:           0.01,
		MaxVolumeFraction: 0.1,
		Windowed: WindowedConfig{
			MaxTransactions: 1000,
			FloorFraction:   0.1,
			GapYears:        6,
		},
		Intraday: IntradayConfig{
			MaxTransactions: 1_000_000,
		},
		Periods: DefaultPeriods(),
		ApiPort: 3009,
	}
}

func configPath() string {
	switch os.Getenv(ConfigEnvKey) {
	case "dev":
		return "config-dev.json"
	case "test":
		return "config-test.json"
	}
	return "/go/src/app/config.json"
}

// LoadConfig reads the json config at path, or the env specific default
// location when path is empty. a missing default file is not an error,
// missing fields keep their defaults
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}

	cfg := DefaultConfig()
	f, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	if err := json.Unmarshal(f, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initialCapital must be positive, got %f", c.InitialCapital)
	}
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return fmt.Errorf("feeRate must be in [0, 1), got %f", c.FeeRate)
	}
	if c.MaxVolumeFraction <= 0 || c.MaxVolumeFraction > 1 {
		return fmt.Errorf("maxVolumeFraction must be in (0, 1], got %f", c.MaxVolumeFraction)
	}
	for i, p := range c.Periods {
		start, err := p.StartDate()
		if err != nil {
			return fmt.Errorf("period %d: bad start %q: %w", i, p.Start, err)
		}
		end, err := p.EndDate()
		if err != nil {
			return fmt.Errorf("period %d: bad end %q: %w", i, p.End, err)
		}
		if !start.Before(end) {
			return fmt.Errorf("period %d: start %s is not before end %s", i, p.Start, p.End)
		}
	}
	return nil
}

// BoundaryGap is the windowed gap setting as a duration
func (c WindowedConfig) BoundaryGap() time.Duration {
	return time.Duration(c.GapYears * 365 * 24 * float64(time.Hour))
}
