package main

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
)

const defaultConfigFile = "pcvm.toml"

// Config holds the settings of the tool.
type Config struct {
	TraceLevel    string       `toml:"trace-level"`
	ValidateStack bool         `toml:"validate-stack"`
	TraceSteps    bool         `toml:"trace-vm-steps"`
	Disasm        DisasmConfig `toml:"disasm"`
}

// DisasmConfig holds the settings for listings.
type DisasmConfig struct {
	Header bool `toml:"header"`
	Labels bool `toml:"labels"`
}

func defaultConfig() *Config {
	return &Config{
		TraceLevel:    "Error",
		ValidateStack: true,
		Disasm: DisasmConfig{
			Header: true,
			Labels: true,
		},
	}
}

// loadConfig reads settings from a TOML file on top of the defaults. A missing
// file is an error only if it has been requested explicitly.
func loadConfig(path string) (*Config, error) {
	conf := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	md, err := toml.DecodeFile(path, conf)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return conf, nil
		}
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		tracer().Errorf("ignoring unknown configuration keys %v in %s", undecoded, path)
	}
	tracer().Infof("configuration read from %s", path)
	return conf, nil
}
