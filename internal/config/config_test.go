package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected validation error: defaults have no server address")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Server.Address = "irc.example.net"
	cfg.Server.Channels = []string{"#town"}
	cfg.Server.Auth = &AuthConfig{Handler: "NickServ", Password: "hunter2"}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.Address != "irc.example.net" {
		t.Errorf("Address = %q", loaded.Server.Address)
	}
	if loaded.Server.Port != DefaultPort {
		t.Errorf("Port = %d, want default %d", loaded.Server.Port, DefaultPort)
	}
	if loaded.Server.Username != DefaultNick || loaded.Server.Realname != DefaultNick {
		t.Errorf("username/realname should default to nick, got %q/%q",
			loaded.Server.Username, loaded.Server.Realname)
	}
	if loaded.Server.Auth == nil || loaded.Server.Auth.Password != "hunter2" {
		t.Errorf("Auth = %+v", loaded.Server.Auth)
	}
}

func TestLoadEnvPasswordOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Server.Address = "irc.example.net"
	cfg.Server.Auth = &AuthConfig{Handler: "NickServ", Password: "old"}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("GEOBOT_AUTH_PASSWORD", "fresh")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.Auth.Password != "fresh" {
		t.Errorf("Password = %q, want env override", loaded.Server.Auth.Password)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing address")
	}
	cfg.Server.Address = "irc.example.net"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	cfg.Server.Auth = &AuthConfig{Password: "pw"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for auth without handler")
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GEOBOT_CONFIG_DIR", dir)
	if got := ConfigDir(); got != dir {
		t.Errorf("ConfigDir = %q, want %q", got, dir)
	}
	if got := ConfigPath(); got != filepath.Join(dir, "config.json") {
		t.Errorf("ConfigPath = %q", got)
	}
}
