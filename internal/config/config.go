// Package config loads the application configuration from an optional
// YAML file overlaid with environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces the environment variables, e.g.
// LICSEAL_LOGGING_LEVEL.
const envPrefix = "LICSEAL"

// Config represents the complete application configuration.
type Config struct {
	Logging Logging `yaml:"logging" envconfig:"LOGGING"`
	Paths   Paths   `yaml:"paths" envconfig:"PATHS"`
}

// Logging contains logging configuration.
type Logging struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/licseal.log"`
}

// Paths contains file system paths configuration.
type Paths struct {
	// SchemaFile is the license schema definition, YAML or JSON.
	SchemaFile string `yaml:"schema_file" envconfig:"SCHEMA_FILE" default:"license-schema.yaml"`
	// CanonicalizerMap binds file extensions to canonicalizer names.
	// Optional; built-in claims apply when absent.
	CanonicalizerMap string `yaml:"canonicalizer_map" envconfig:"CANONICALIZER_MAP"`
	// WorkDir resolves relative file paths in processor inputs.
	WorkDir string `yaml:"work_dir" envconfig:"WORK_DIR" default:"."`
}

var configValidator = validator.New()

// Load builds the configuration. Precedence, highest first: environment
// variables, the YAML file at path (when it exists), struct defaults.
func Load(path string) (*Config, error) {
	var fileCfg Config
	haveFile := false
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// A missing config file is fine; defaults and env apply.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			haveFile = true
		}
	}

	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if haveFile {
		mergeFile(cfg, &fileCfg)
	}

	if err := configValidator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// mergeFile overlays file values onto the env/default config for every
// field whose environment variable is not explicitly set.
func mergeFile(cfg, file *Config) {
	overlay := func(dst *string, fileVal, envKey string) {
		if fileVal == "" {
			return
		}
		if _, set := os.LookupEnv(envPrefix + "_" + envKey); set {
			return
		}
		*dst = fileVal
	}

	overlay(&cfg.Logging.Level, file.Logging.Level, "LOGGING_LEVEL")
	overlay(&cfg.Logging.Format, file.Logging.Format, "LOGGING_FORMAT")
	overlay(&cfg.Logging.Output, file.Logging.Output, "LOGGING_OUTPUT")
	overlay(&cfg.Logging.FilePath, file.Logging.FilePath, "LOGGING_FILE_PATH")
	overlay(&cfg.Paths.SchemaFile, file.Paths.SchemaFile, "PATHS_SCHEMA_FILE")
	overlay(&cfg.Paths.CanonicalizerMap, file.Paths.CanonicalizerMap, "PATHS_CANONICALIZER_MAP")
	overlay(&cfg.Paths.WorkDir, file.Paths.WorkDir, "PATHS_WORK_DIR")
}
