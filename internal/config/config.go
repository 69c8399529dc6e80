package config

import (
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	EnvProduction = "production"
	EnvSandbox    = "sandbox"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Asaas struct {
		APIKey      string `yaml:"api_key"`
		Environment string `yaml:"environment"`
	} `yaml:"asaas"`
}

// LoadConfig reads the yaml config and applies environment overrides.
// ASAAS_API_KEY and ASAAS_ENV always win over the file so credentials can
// stay out of the repository.
func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: failed to read config file %s: %v", path, err)
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	if v := os.Getenv("ASAAS_API_KEY"); v != "" {
		cfg.Asaas.APIKey = v
	}
	if v := os.Getenv("ASAAS_ENV"); v != "" {
		cfg.Asaas.Environment = v
	}
	cfg.Asaas.Environment = ResolveEnvironment(cfg.Asaas.APIKey, cfg.Asaas.Environment)
	return cfg
}

// ResolveEnvironment picks the provider environment. An explicit value
// wins; otherwise a credential carrying the provider's production marker
// selects production, anything else stays in sandbox.
func ResolveEnvironment(apiKey, environment string) string {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case EnvProduction:
		return EnvProduction
	case EnvSandbox:
		return EnvSandbox
	}
	if strings.Contains(strings.ToLower(apiKey), "prod") {
		return EnvProduction
	}
	return EnvSandbox
}
