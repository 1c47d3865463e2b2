package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

type ServerConfig struct {
	HTTPAddr    string
	GRPCAddr    string
	LogMode     string
	CORSOrigins []string
}

type StoreConfig struct {
	Backend     string // sqlite | redis | memory
	RedisAddr   string
	RedisPrefix string
}

// FileConfig is the optional YAML overlay named by RECIPEHUB_CONFIG.
// Environment variables win over file values.
type FileConfig struct {
	HTTPAddr    string   `yaml:"http_addr"`
	GRPCAddr    string   `yaml:"grpc_addr"`
	LogMode     string   `yaml:"log_mode"`
	CORSOrigins []string `yaml:"cors_origins"`
	Store       struct {
		Backend     string `yaml:"backend"`
		RedisAddr   string `yaml:"redis_addr"`
		RedisPrefix string `yaml:"redis_prefix"`
	} `yaml:"store"`
	Auth struct {
		Issuer   string `yaml:"issuer"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"auth"`
}

func LoadFileConfig() (FileConfig, error) {
	var fc FileConfig
	path := strings.TrimSpace(os.Getenv("RECIPEHUB_CONFIG"))
	if path == "" {
		return fc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func LoadAuthConfig(fc FileConfig) AuthConfig {
	secret := os.Getenv("RECIPEHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := firstNonEmpty(os.Getenv("RECIPEHUB_JWT_ISSUER"), fc.Auth.Issuer, "recipehub")

	hours := 24
	if fc.Auth.TTLHours > 0 {
		hours = fc.Auth.TTLHours
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("RECIPEHUB_JWT_TTL_HOURS"))); err == nil && n > 0 {
		hours = n
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: time.Duration(hours) * time.Hour,
	}
}

func LoadServerConfig(fc FileConfig) ServerConfig {
	origins := fc.CORSOrigins
	if raw := strings.TrimSpace(os.Getenv("RECIPEHUB_CORS_ORIGINS")); raw != "" {
		origins = splitList(raw)
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"}
	}
	return ServerConfig{
		HTTPAddr:    firstNonEmpty(os.Getenv("RECIPEHUB_HTTP_ADDR"), fc.HTTPAddr, ":8080"),
		GRPCAddr:    firstNonEmpty(os.Getenv("RECIPEHUB_GRPC_ADDR"), fc.GRPCAddr, ":9090"),
		LogMode:     firstNonEmpty(os.Getenv("RECIPEHUB_LOG_MODE"), fc.LogMode, "dev"),
		CORSOrigins: origins,
	}
}

func LoadStoreConfig(fc FileConfig) StoreConfig {
	return StoreConfig{
		Backend:     strings.ToLower(firstNonEmpty(os.Getenv("RECIPEHUB_STORE"), fc.Store.Backend, "sqlite")),
		RedisAddr:   firstNonEmpty(os.Getenv("RECIPEHUB_REDIS_ADDR"), fc.Store.RedisAddr, "localhost:6379"),
		RedisPrefix: firstNonEmpty(os.Getenv("RECIPEHUB_REDIS_PREFIX"), fc.Store.RedisPrefix, "recipehub:"),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
