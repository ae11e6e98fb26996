// ABOUTME: Server configuration loaded from PULSE_* environment variables and an optional .env file.
// ABOUTME: Enforces security constraint: remote access requires auth token.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrRemoteWithoutToken = errors.New(
		"PULSE_ALLOW_REMOTE is true but PULSE_AUTH_TOKEN is not set; refusing to start without authentication",
	)
	ErrNonLoopbackBind = errors.New(
		"PULSE_BIND is a non-loopback address but PULSE_ALLOW_REMOTE is not true; set PULSE_ALLOW_REMOTE=true and PULSE_AUTH_TOKEN to allow remote access",
	)
)

const (
	DefaultBind       = "127.0.0.1:8080"
	DefaultCacheTTL   = 10 * time.Minute
	DefaultSubmitRate = 10
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Home        string        // Data directory (PULSE_HOME)
	Bind        string        // Socket address (PULSE_BIND, default: 127.0.0.1:8080)
	AllowRemote bool          // Allow non-loopback connections (PULSE_ALLOW_REMOTE, default: false)
	AuthToken   string        // Bearer token for /api (PULSE_AUTH_TOKEN, optional)
	SiteFile    string        // Site settings YAML (PULSE_SITE_FILE, optional)
	CacheTTL    time.Duration // Render cache TTL (PULSE_CACHE_TTL, default: 10m)
	SubmitRate  int           // Form submissions per minute per client IP (PULSE_SUBMIT_RATE, default: 10)
	CORSOrigins []string      // Allowed origins for /api (PULSE_CORS_ORIGINS, comma separated)
	TrustProxy  bool          // Take client IPs from X-Forwarded-For/X-Real-IP (PULSE_TRUST_PROXY, default: false)
}

// DBPath returns the location of the content database inside Home.
func (c *Config) DBPath() string {
	return filepath.Join(c.Home, "pulse.db")
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv loads configuration from PULSE_* environment variables with sensible
// defaults. defaultHome is used when PULSE_HOME is unset.
func FromEnv(defaultHome string) (*Config, error) {
	home := os.Getenv("PULSE_HOME")
	if home == "" {
		home = defaultHome
	}
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.TempDir()
		}
		home = filepath.Join(homeDir, ".pulse")
	}

	bind := envOrDefault("PULSE_BIND", DefaultBind)

	allowRemote := envBool("PULSE_ALLOW_REMOTE")
	authToken := os.Getenv("PULSE_AUTH_TOKEN")
	trustProxy := envBool("PULSE_TRUST_PROXY")

	cacheTTL := DefaultCacheTTL
	if v := os.Getenv("PULSE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("PULSE_CACHE_TTL=%q: must be a positive duration", v)
		}
		cacheTTL = d
	}

	submitRate := DefaultSubmitRate
	if v := os.Getenv("PULSE_SUBMIT_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("PULSE_SUBMIT_RATE=%q: must be a positive integer", v)
		}
		submitRate = n
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("PULSE_CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	if allowRemote && authToken == "" {
		return nil, ErrRemoteWithoutToken
	}
	if !allowRemote && !isLoopbackBind(bind) {
		return nil, fmt.Errorf("%w: PULSE_BIND=%s", ErrNonLoopbackBind, bind)
	}

	return &Config{
		Home:        home,
		Bind:        bind,
		AllowRemote: allowRemote,
		AuthToken:   authToken,
		SiteFile:    os.Getenv("PULSE_SITE_FILE"),
		CacheTTL:    cacheTTL,
		SubmitRate:  submitRate,
		CORSOrigins: origins,
		TrustProxy:  trustProxy,
	}, nil
}

// isLoopbackBind reports whether bind only listens on loopback. Only
// 127.0.0.0/8, ::1, and "localhost" count; an empty host means all interfaces.
func isLoopbackBind(bind string) bool {
	host, _, err := net.SplitHostPort(bind)
	if err != nil || host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// envBool treats "true", "1" and "yes" as set.
func envBool(key string) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
