package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is everything the server needs at startup. Values come from the
// YAML file when present, then environment variables override.
type Config struct {
	Addr      string `yaml:"addr"`
	DSN       string `yaml:"dsn"`
	JWTSecret string `yaml:"jwt_secret"`
}

func defaults() Config {
	return Config{
		Addr:      ":8000",
		DSN:       "oneflow:oneflow@tcp(127.0.0.1:3306)/oneflow?charset=utf8mb4&parseTime=True&loc=Local",
		JWTSecret: "supersecretkey",
	}
}

// Load reads path (missing file is fine, defaults apply) and then applies
// ONEFLOW_ADDR, ONEFLOW_DSN and JWT_SECRET overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// no config file, env/defaults only
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("ONEFLOW_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("ONEFLOW_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}

	return cfg, nil
}
