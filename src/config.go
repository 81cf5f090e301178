package main

import (
	"os"
	"strconv"
	"time"
)

// Stats cache tuning. Fixed, not configurable: the 2s TTL matches one dashboard
// refresh window and 4 concurrent fetches keeps load on the daemon bounded even
// with dozens of containers missing the cache at once.
const (
	statsCacheTTL        = 2 * time.Second
	maxConcurrentStats   = 4
	minRefreshInterval   = 200 * time.Millisecond
	defaultListenAddr    = ":8080"
	defaultMCPPort       = 9876
	actionStopTimeoutSec = 10
)

// Config holds all runtime settings. Everything comes from environment
// variables so the binary can be dropped into a compose file without flags.
type Config struct {
	AppTitle  string
	AppLocale string

	ListenAddr string

	LinkScheme string
	LinkHost   string

	RefreshInterval    time.Duration // snapshot broadcast cadence
	LogRefreshInterval time.Duration // logs page auto-reload cadence
	LogDefaultTail     int
	LogMaxTail         int
	ActionDelay        time.Duration // settle pause after start/stop/restart

	ExecShell string
	WSLDistro string

	AuthEnabled       bool
	AuthUsername      string
	AuthPassword      string
	AuthAllowLoopback bool

	MCPEnabled bool
	MCPPort    int
}

// loadConfig reads the environment and applies defaults and bounds.
func loadConfig() Config {
	cfg := Config{
		AppTitle:  getStrEnv("APP_TITLE", "Docker Dashboard"),
		AppLocale: getStrEnv("APP_LOCALE", "en"),

		ListenAddr: getStrEnv("LISTEN_ADDR", defaultListenAddr),

		LinkScheme: getStrEnv("LINK_SCHEME", "http"),
		LinkHost:   getStrEnv("LINK_HOST", "localhost"),

		RefreshInterval:    getDurationEnv("AUTO_REFRESH_SECONDS", 10*time.Second, minRefreshInterval),
		LogRefreshInterval: getDurationEnv("LOG_REFRESH_SECONDS", 5*time.Second, time.Second),
		LogDefaultTail:     getIntEnv("LOG_DEFAULT_TAIL", 200, 1),
		LogMaxTail:         getIntEnv("LOG_MAX_TAIL", 5000, 1),
		ActionDelay:        getDurationEnv("ACTION_DELAY_SECONDS", 100*time.Millisecond, 0),

		ExecShell: getStrEnv("EXEC_SHELL", "bash"),
		WSLDistro: getStrEnv("WSL_DISTRO", "Ubuntu"),

		AuthEnabled:       getBoolEnv("AUTH_ENABLED", false),
		AuthUsername:      getStrEnv("AUTH_USERNAME", ""),
		AuthPassword:      getStrEnv("AUTH_PASSWORD", ""),
		AuthAllowLoopback: getBoolEnv("AUTH_ALLOW_LOOPBACK", true),

		MCPEnabled: getBoolEnv("MCP_ENABLED", false),
		MCPPort:    getIntEnv("MCP_PORT", defaultMCPPort, 1),
	}

	// The default tail must never exceed the configured maximum.
	if cfg.LogDefaultTail > cfg.LogMaxTail {
		cfg.LogDefaultTail = cfg.LogMaxTail
	}

	return cfg
}

func getStrEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func getIntEnv(name string, def, minimum int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < minimum {
		return minimum
	}
	return v
}

func getBoolEnv(name string, def bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// getDurationEnv parses a float number of seconds with a lower bound.
func getDurationEnv(name string, def, minimum time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	d := time.Duration(secs * float64(time.Second))
	if d < minimum {
		return minimum
	}
	return d
}
