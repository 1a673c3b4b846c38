package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds file-provided deployment parameters. Zero values mean
// "unspecified"; the environment and flags take precedence during Merge.
type Config struct {
	Host             string   `json:"host" yaml:"host" toml:"host"`
	Port             int      `json:"port" yaml:"port" toml:"port"`
	ModelID          string   `json:"model_id" yaml:"model_id" toml:"model_id"`
	Tokenizer        string   `json:"tokenizer" yaml:"tokenizer" toml:"tokenizer"`
	InstanceType     string   `json:"instance_type" yaml:"instance_type" toml:"instance_type"`
	ServedModelNames []string `json:"served_model_names" yaml:"served_model_names" toml:"served_model_names"`
	LogLevel         string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat        string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	EngineURL        string   `json:"engine_url" yaml:"engine_url" toml:"engine_url"`
	EngineBin        string   `json:"engine_bin" yaml:"engine_bin" toml:"engine_bin"`
	EngineArgs       []string `json:"engine_args" yaml:"engine_args" toml:"engine_args"`
	ChatTemplate     string   `json:"chat_template" yaml:"chat_template" toml:"chat_template"`
	CORSOrigins      []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
