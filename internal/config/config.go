// Package config loads gateway configuration from the process environment
// (with an optional .env preload and an optional YAML defaults file),
// layered under explicit flag overrides the way the teacher's cmd/server
// loads its own configuration.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the gateway's runtime configuration, resolved from (in
// increasing precedence) YAML defaults, environment variables, and CLI
// flag overrides.
type Config struct {
	Port                    int
	AuthKey                 string
	UpstreamHost            string
	KeyCooldown             time.Duration
	EnableParamsConversion  bool
	ModelsCacheTTL          time.Duration
	LogLevel                string
	LogFile                 string
	ExtraKeyFileSearchPaths []string
}

// fileDefaults is the optional YAML shape merged in under environment
// precedence; every field is optional.
type fileDefaults struct {
	KeyCooldownHours    *int     `yaml:"key_cooldown_hours"`
	ModelsCacheTTL      *int     `yaml:"models_cache_ttl"`
	ExtraKeyFileSearch  []string `yaml:"extra_key_file_search_paths"`
	LogFile             string   `yaml:"log_file"`
}

// Load resolves configuration: preload .env, read process environment,
// merge an optional YAML file's defaults for anything still unset, then
// apply flag overrides.
func Load(configPath string, portFlag int) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("config: failed to load .env: %v", err)
	}

	cfg := &Config{
		Port:                   envInt("PROXY_PORT", envInt("PORT", 3001)),
		AuthKey:                os.Getenv("AUTH_KEY"),
		UpstreamHost:           envString("UPSTREAM_HOST", "api.openai.com"),
		KeyCooldown:            time.Duration(envInt("KEY_COOLDOWN_HOURS", 24)) * time.Hour,
		EnableParamsConversion: envBool("ENABLE_PARAMS_CONVERSION", true),
		ModelsCacheTTL:         time.Duration(envInt("MODELS_CACHE_TTL", 3600)) * time.Second,
		LogLevel:               envString("LOG_LEVEL", "info"),
		LogFile:                os.Getenv("LOG_FILE"),
	}

	if configPath != "" {
		if defaults, err := loadFileDefaults(configPath); err != nil {
			log.Warnf("config: failed to read %s: %v", configPath, err)
		} else if defaults != nil {
			applyFileDefaults(cfg, defaults)
		}
	}

	if portFlag != 0 {
		cfg.Port = portFlag
	}

	return cfg
}

func loadFileDefaults(path string) (*fileDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var defaults fileDefaults
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}

// applyFileDefaults only fills in fields whose environment variable is not
// set at all, preserving env-var precedence over the file.
func applyFileDefaults(cfg *Config, defaults *fileDefaults) {
	if _, ok := os.LookupEnv("KEY_COOLDOWN_HOURS"); !ok && defaults.KeyCooldownHours != nil {
		cfg.KeyCooldown = time.Duration(*defaults.KeyCooldownHours) * time.Hour
	}
	if _, ok := os.LookupEnv("MODELS_CACHE_TTL"); !ok && defaults.ModelsCacheTTL != nil {
		cfg.ModelsCacheTTL = time.Duration(*defaults.ModelsCacheTTL) * time.Second
	}
	if _, ok := os.LookupEnv("LOG_FILE"); !ok && defaults.LogFile != "" {
		cfg.LogFile = defaults.LogFile
	}
	cfg.ExtraKeyFileSearchPaths = defaults.ExtraKeyFileSearch
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
