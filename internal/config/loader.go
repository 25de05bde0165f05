package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/unalkalkan/Prompter/internal/logging"
	"github.com/unalkalkan/Prompter/internal/render"
	"github.com/unalkalkan/Prompter/internal/segmentation"
	"github.com/unalkalkan/Prompter/pkg/types"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "PR_"

// Load reads and parses the configuration file. The format follows the file
// extension: ".toml" is TOML, anything else is YAML. An empty path starts from
// GetDefault. Environment variables prefixed with PR_ override file values,
// and a .env file in the working directory is loaded first when present.
func Load(configPath string) (*types.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := GetDefault()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(configPath, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func decode(configPath string, data []byte, cfg *types.Config) error {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// Validate checks if the configuration is valid. Segmentation thresholds are
// resolved against the preset and written back, so callers always see the
// effective word budget.
func Validate(cfg *types.Config) error {
	// Validate server config
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Server.MaxScriptKB < 0 {
		return fmt.Errorf("invalid max_script_kb: %d", cfg.Server.MaxScriptKB)
	}

	// Validate storage adapter
	if cfg.Storage.Adapter != "local" && cfg.Storage.Adapter != "s3" {
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	if cfg.Storage.Adapter == "local" {
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	}

	if cfg.Storage.Adapter == "s3" {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	}

	th, err := segmentation.Resolve(cfg.Segmentation.Preset, cfg.Segmentation.Thresholds)
	if err != nil {
		return err
	}
	cfg.Segmentation.Thresholds = th

	if _, err := render.NewEncoder(cfg.Render.Format); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *types.Config) error {
	stringVars := map[string]*string{
		"SERVER_HOST":                  &cfg.Server.Host,
		"STORAGE_ADAPTER":              &cfg.Storage.Adapter,
		"STORAGE_LOCAL_BASE_PATH":      &cfg.Storage.Local.BasePath,
		"STORAGE_S3_BUCKET":            &cfg.Storage.S3.Bucket,
		"STORAGE_S3_REGION":            &cfg.Storage.S3.Region,
		"STORAGE_S3_ENDPOINT":          &cfg.Storage.S3.Endpoint,
		"STORAGE_S3_PREFIX":            &cfg.Storage.S3.Prefix,
		"STORAGE_S3_ACCESS_KEY_ID":     &cfg.Storage.S3.AccessKeyID,
		"STORAGE_S3_SECRET_ACCESS_KEY": &cfg.Storage.S3.SecretAccessKey,
		"SEGMENT_PRESET":               &cfg.Segmentation.Preset,
		"RENDER_FORMAT":                &cfg.Render.Format,
		"RENDER_TITLE":                 &cfg.Render.Title,
		"LOG_LEVEL":                    &cfg.Log.Level,
		"LOG_FORMAT":                   &cfg.Log.Format,
	}
	for name, field := range stringVars {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			*field = val
		}
	}

	intVars := map[string]*int{
		"SERVER_PORT":          &cfg.Server.Port,
		"SERVER_MAX_SCRIPT_KB": &cfg.Server.MaxScriptKB,
		"SEGMENT_IDEAL":        &cfg.Segmentation.Thresholds.Ideal,
		"SEGMENT_MAXIMUM":      &cfg.Segmentation.Thresholds.Maximum,
	}
	for name, field := range intVars {
		val := os.Getenv(EnvPrefix + name)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %q", EnvPrefix, name, val)
		}
		*field = n
	}

	return nil
}

// GetDefault returns a default configuration
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
			MaxScriptKB:  512,
		},
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/prompter/storage",
			},
		},
		// Zero thresholds defer to the preset
		Segmentation: types.SegmentationConfig{
			Preset: segmentation.DefaultPreset,
		},
		Render: types.RenderConfig{
			Format: "zip",
			Title:  "Teleprompter",
		},
		Log: types.LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
