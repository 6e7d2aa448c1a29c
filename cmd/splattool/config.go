package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// config holds flag defaults taken from the environment.
type config struct {
	Workers    int
	Jobs       int
	ColorSpace string
	LogFile    string
	Debug      bool
}

// loadConfig reads an optional .env file and SPLAT_* variables.
func loadConfig(envFile string) (config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, err
	}

	cfg := config{
		Workers:    0,
		Jobs:       1,
		ColorSpace: "srgb",
	}
	var err error
	if cfg.Workers, err = envInt("SPLAT_WORKERS", cfg.Workers); err != nil {
		return config{}, err
	}
	if cfg.Jobs, err = envInt("SPLAT_JOBS", cfg.Jobs); err != nil {
		return config{}, err
	}
	if v := os.Getenv("SPLAT_COLOR_SPACE"); v != "" {
		cfg.ColorSpace = v
	}
	cfg.LogFile = os.Getenv("SPLAT_LOG_FILE")
	if v := os.Getenv("SPLAT_DEBUG"); v != "" {
		if cfg.Debug, err = strconv.ParseBool(v); err != nil {
			return config{}, fmt.Errorf("SPLAT_DEBUG: %w", err)
		}
	}
	return cfg, nil
}

func envInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}
