package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_ENV", "test-missing")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Fatalf("Port=%d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.PingPeriod != 54*time.Second || cfg.PongWait != 60*time.Second {
		t.Fatalf("keepalive=%s/%s", cfg.PingPeriod, cfg.PongWait)
	}
	if !cfg.ClientLog {
		t.Fatal("ClientLog should default to true")
	}
	if len(cfg.IPExclude) != 0 {
		t.Fatalf("IPExclude=%v, want empty", cfg.IPExclude)
	}
}

func TestLoadPortFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "4040")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 4040 {
		t.Fatalf("Port=%d, want 4040", cfg.Port)
	}
}

func TestLoadPrefixedEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PAIRSIGNAL_IP_EXCLUDE", "10.173.1.175,192.168.0.1")
	t.Setenv("PAIRSIGNAL_BACKPRESSURE", "close")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"10.173.1.175", "192.168.0.1"}; !slices.Equal(cfg.IPExclude, want) {
		t.Fatalf("IPExclude=%v, want %v", cfg.IPExclude, want)
	}
	if cfg.Backpressure != "close" {
		t.Fatalf("Backpressure=%q, want close", cfg.Backpressure)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "70000")

	if _, err := Load(); !errors.Is(err, ErrInvalidPort) {
		t.Fatalf("Load err=%v, want ErrInvalidPort", err)
	}
}

func writeConfig(t *testing.T, env, body string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	name := filepath.Join(dir, "config", "config."+env+".yaml")
	if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", env)
}

func TestLoadReadsFile(t *testing.T) {
	writeConfig(t, "unit", "port: 5050\nclient_log: false\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 5050 {
		t.Fatalf("Port=%d, want 5050", cfg.Port)
	}
	if cfg.ClientLog {
		t.Fatal("ClientLog=true, want false from file")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	writeConfig(t, "broken", "port: [3030\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Port:              DefaultPort,
		PingPeriod:        time.Second,
		PongWait:          2 * time.Second,
		RateLimitEvents:   1,
		RateLimitInterval: time.Second,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate(base): %v", err)
	}

	bad := base
	bad.PingPeriod = 3 * time.Second
	if err := bad.Validate(); !errors.Is(err, ErrInvalidKeepalive) {
		t.Fatalf("err=%v, want ErrInvalidKeepalive", err)
	}

	bad = base
	bad.Backpressure = "kick"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown backpressure policy")
	}

	bad = base
	bad.IPExclude = []string{"nope"}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for bad exclusion")
	}
}

func TestICEServers(t *testing.T) {
	cfg := Config{ICEURLs: []string{"turn:turn.example.org:3478"}, ICEUsername: "u", ICECredential: "p"}
	servers := cfg.ICEServers()
	if len(servers) != 1 {
		t.Fatalf("len=%d, want 1", len(servers))
	}
	if servers[0].Username != "u" || servers[0].Credential != "p" {
		t.Fatalf("unexpected server %+v", servers[0])
	}

	if got := (&Config{}).ICEServers(); len(got) != 0 {
		t.Fatalf("expected no servers, got %v", got)
	}
}
