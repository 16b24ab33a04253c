package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	// Test that version is at least "dev" or "unknown"
	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	// Create a config instance to test field access
	cfg := &Cfg{
		DBPath:                 "./test.db",
		SourcesDir:             "./sources",
		Port:                   "8080",
		APIAccessKey:           "test-key",
		SyncInterval:           900,
		DisplayRefreshInterval: 60,
		StalenessHours:         24,
		FetchTimeout:           15,
		UserAgent:              "Test Agent",
		Timezone:               "UTC",
		Debug:                  true,
		Version:                "test-version",
	}

	// Test direct field access
	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.SourcesDir != "./sources" {
		t.Errorf("Expected sources dir './sources', got '%s'", cfg.SourcesDir)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.SyncInterval != 900 {
		t.Errorf("Expected sync interval 900, got %d", cfg.SyncInterval)
	}
	if cfg.DisplayRefreshInterval != 60 {
		t.Errorf("Expected display refresh interval 60, got %d", cfg.DisplayRefreshInterval)
	}
	if cfg.StalenessHours != 24 {
		t.Errorf("Expected staleness hours 24, got %d", cfg.StalenessHours)
	}
	if cfg.FetchTimeout != 15 {
		t.Errorf("Expected fetch timeout 15, got %d", cfg.FetchTimeout)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}

func TestGetStalenessThreshold(t *testing.T) {
	cfg := &Cfg{StalenessHours: 24}
	if cfg.GetStalenessThreshold() != 24*time.Hour {
		t.Errorf("Expected 24h staleness threshold, got %v", cfg.GetStalenessThreshold())
	}

	// Zero or negative values fall back to the 24h default
	cfg = &Cfg{StalenessHours: 0}
	if cfg.GetStalenessThreshold() != 24*time.Hour {
		t.Errorf("Expected default 24h staleness threshold, got %v", cfg.GetStalenessThreshold())
	}
}

func TestGetFetchTimeout(t *testing.T) {
	cfg := &Cfg{FetchTimeout: 15}
	if cfg.GetFetchTimeout() != 15*time.Second {
		t.Errorf("Expected 15s fetch timeout, got %v", cfg.GetFetchTimeout())
	}

	cfg = &Cfg{FetchTimeout: -1}
	if cfg.GetFetchTimeout() != 15*time.Second {
		t.Errorf("Expected default 15s fetch timeout, got %v", cfg.GetFetchTimeout())
	}
}
