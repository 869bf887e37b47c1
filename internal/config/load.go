package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
)

var envFiles = []string{".env", ".env.local"}

// Load reads the site file at configPath. .env files next to it are loaded
// first (never overriding the process environment), ${VAR} references are
// expanded, defaults applied and the result validated.
func Load(configPath string) (*Config, error) {
	baseDir := filepath.Dir(configPath)
	loadEnvFiles(baseDir)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("name", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("name", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))), baseDir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes an already expanded site file. Relative paths resolve against baseDir.
func Parse(data []byte, baseDir string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid site file").
			Fatal().
			Build()
	}

	cfg.BaseDir = baseDir
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.loadParamsFile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadParamsFile() error {
	if c.ParamsFile == "" {
		return nil
	}
	path := c.Path(c.ParamsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to read params file").
			Fatal().
			WithContext("name", path).
			Build()
	}
	params := map[string]any{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &params); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid params file").
			Fatal().
			WithContext("name", path).
			Build()
	}
	c.FileParams = params
	return nil
}

func loadEnvFiles(dir string) {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
	}
}
