package main

import (
	"testing"
	"time"
)

// TestLoadConfigDefaults tests the out-of-the-box configuration
func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig()

	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.RefreshInterval != 10*time.Second {
		t.Errorf("RefreshInterval = %v, want 10s", cfg.RefreshInterval)
	}
	if cfg.LogDefaultTail != 200 || cfg.LogMaxTail != 5000 {
		t.Errorf("log tails = %d/%d, want 200/5000", cfg.LogDefaultTail, cfg.LogMaxTail)
	}
	if cfg.ActionDelay != 100*time.Millisecond {
		t.Errorf("ActionDelay = %v, want 100ms", cfg.ActionDelay)
	}
	if cfg.AuthEnabled {
		t.Error("auth enabled by default")
	}
	if cfg.MCPEnabled {
		t.Error("MCP enabled by default")
	}
	if cfg.MCPPort != defaultMCPPort {
		t.Errorf("MCPPort = %d, want %d", cfg.MCPPort, defaultMCPPort)
	}
}

// TestLoadConfigFromEnv tests environment overrides
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_TITLE", "My Stack")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("AUTO_REFRESH_SECONDS", "2.5")
	t.Setenv("ACTION_DELAY_SECONDS", "0.5")
	t.Setenv("LOG_DEFAULT_TAIL", "100")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("MCP_ENABLED", "1")
	t.Setenv("MCP_PORT", "9001")

	cfg := loadConfig()

	if cfg.AppTitle != "My Stack" {
		t.Errorf("AppTitle = %q", cfg.AppTitle)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.RefreshInterval != 2500*time.Millisecond {
		t.Errorf("RefreshInterval = %v, want 2.5s", cfg.RefreshInterval)
	}
	if cfg.ActionDelay != 500*time.Millisecond {
		t.Errorf("ActionDelay = %v, want 500ms", cfg.ActionDelay)
	}
	if cfg.LogDefaultTail != 100 {
		t.Errorf("LogDefaultTail = %d, want 100", cfg.LogDefaultTail)
	}
	if !cfg.AuthEnabled || !cfg.MCPEnabled || cfg.MCPPort != 9001 {
		t.Errorf("auth/mcp = %v/%v/%d", cfg.AuthEnabled, cfg.MCPEnabled, cfg.MCPPort)
	}
}

// TestLoadConfigBounds tests lower bounds and clamping
func TestLoadConfigBounds(t *testing.T) {
	t.Setenv("AUTO_REFRESH_SECONDS", "0.01")
	t.Setenv("LOG_DEFAULT_TAIL", "800")
	t.Setenv("LOG_MAX_TAIL", "500")

	cfg := loadConfig()

	if cfg.RefreshInterval != minRefreshInterval {
		t.Errorf("RefreshInterval = %v, want floor %v", cfg.RefreshInterval, minRefreshInterval)
	}
	if cfg.LogDefaultTail != cfg.LogMaxTail {
		t.Errorf("LogDefaultTail = %d, want clamped to LogMaxTail %d", cfg.LogDefaultTail, cfg.LogMaxTail)
	}
}

// TestLoadConfigIgnoresGarbage tests that unparseable values fall back to
// defaults instead of failing startup
func TestLoadConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("AUTO_REFRESH_SECONDS", "soon")
	t.Setenv("LOG_DEFAULT_TAIL", "many")
	t.Setenv("AUTH_ENABLED", "yep")

	cfg := loadConfig()

	if cfg.RefreshInterval != 10*time.Second {
		t.Errorf("RefreshInterval = %v, want default 10s", cfg.RefreshInterval)
	}
	if cfg.LogDefaultTail != 200 {
		t.Errorf("LogDefaultTail = %d, want default 200", cfg.LogDefaultTail)
	}
	if cfg.AuthEnabled {
		t.Error("AuthEnabled = true from garbage input, want default false")
	}
}
