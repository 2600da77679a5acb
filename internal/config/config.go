package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	AI     AIConfig     `yaml:"ai"`
	Cache  CacheConfig  `yaml:"cache"`
	MCP    MCPConfig    `yaml:"mcp"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path enables a size-capped log file in addition to stderr.
	Path     string `yaml:"path"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type AIConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	PrimaryModel  string `yaml:"primary_model"`
	FallbackModel string `yaml:"fallback_model"`
}

type CacheConfig struct {
	// RedisURL enables the generated-draft cache when set.
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		DB: DBConfig{
			Path: "grantmate.db",
		},
		Log: LogConfig{
			Level:    "info",
			MaxBytes: 10 << 20,
		},
		AI: AIConfig{
			BaseURL:       "https://api.openai.com/v1",
			PrimaryModel:  "o1-preview",
			FallbackModel: "gpt-4o-mini",
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}

	if path := os.Getenv("GRANTMATE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("GRANTMATE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("GRANTMATE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRANTMATE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if origins := os.Getenv("GRANTMATE_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	if dbPath := os.Getenv("GRANTMATE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("GRANTMATE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("GRANTMATE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if baseURL := os.Getenv("GRANTMATE_AI_BASE_URL"); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}
	if model := os.Getenv("GRANTMATE_AI_PRIMARY_MODEL"); model != "" {
		cfg.AI.PrimaryModel = model
	}
	if model := os.Getenv("GRANTMATE_AI_FALLBACK_MODEL"); model != "" {
		cfg.AI.FallbackModel = model
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Cache.RedisURL = redisURL
	}
	if ttlStr := os.Getenv("GRANTMATE_DRAFT_CACHE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRANTMATE_DRAFT_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = ttl
	}
	if enabled := os.Getenv("GRANTMATE_MCP_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRANTMATE_MCP_ENABLED: %w", err)
		}
		cfg.MCP.Enabled = v
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
