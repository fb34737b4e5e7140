package mip

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const DefaultSolver = "gophersat"

// Config mirrors config.json; every key is optional
type Config struct {
	Solver    string        `mapstructure:"solver"`
	TimeLimit time.Duration `mapstructure:"timeLimit"`
	Verbose   bool          `mapstructure:"verbose"`
	ModelFile string        `mapstructure:"modelFile"`
	LogFile   string        `mapstructure:"logFile"`
}

func DefaultConfig() Config {
	return Config{
		Solver:    DefaultSolver,
		ModelFile: "assignment.lp",
		LogFile:   "my_log_file",
	}
}

// LoadConfig reads a config.json file on top of DefaultConfig
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	bytes, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrap(err, "cannot read config file")
	}
	var configJson map[string]any
	if err := json.Unmarshal(bytes, &configJson); err != nil {
		return config, errors.Wrapf(err, "cannot parse config file %v", path)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &config,
	})
	if err != nil {
		return config, err
	}
	if err := decoder.Decode(configJson); err != nil {
		return config, errors.Wrapf(err, "invalid config file %v", path)
	}
	return config, nil
}

func (config Config) Options() Options {
	return Options{
		TimeLimit: config.TimeLimit,
		Verbose:   config.Verbose,
	}
}
