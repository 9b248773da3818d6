package main

import (
	goerrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config is the optional ~/.jscore.yaml file.
type Config struct {
	Indent  string `yaml:"indent"`
	Style   string `yaml:"style"`
	History string `yaml:"history"`
	Strict  bool   `yaml:"strict"`
}

func defaultConfig() Config {
	cfg := Config{Indent: "  ", Style: "dracula"}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.History = filepath.Join(home, ".jscore_history")
	}
	return cfg
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".jscore.yaml")
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the path was asked for explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && goerrors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.History != "" {
		cfg.History = expandHome(cfg.History)
	}
	return cfg, nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
