package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	DataDir     string
	LogLevel    string
	MetricsAddr string
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".arkade"
	}
	return filepath.Join(home, ".arkade")
}

func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("datadir is required")
	}
	if _, ok := allowedLogLevels[cfg.LogLevel]; !ok {
		return errors.New("log-level must be one of debug|info|warn|error")
	}
	return nil
}
