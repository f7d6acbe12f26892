package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openaegis/darwin-go/session"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "darwin.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEndpointConfigUnix(t *testing.T) {
	path := writeConfig(t, `
kind = "unix"
socket_path = "/var/sockets/darwin/dga_1.sock"
timeout = "1s"
verbose = true
`)
	cfg, err := loadEndpointConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Kind != session.KindUnix || cfg.SocketPath != "/var/sockets/darwin/dga_1.sock" {
		t.Fatalf("unexpected endpoint: %+v", cfg)
	}
	if cfg.Timeout != time.Second || !cfg.Verbose {
		t.Fatalf("unexpected options: %+v", cfg)
	}
}

func TestLoadEndpointConfigTCP(t *testing.T) {
	path := writeConfig(t, `
kind = "tcp"
host = "10.59.10.28"
port = 8006
`)
	cfg, err := loadEndpointConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Kind != session.KindTCP || cfg.Host != "10.59.10.28" || cfg.Port != 8006 {
		t.Fatalf("unexpected endpoint: %+v", cfg)
	}
	// Timeout left undefined stays zero; the session layer applies its
	// own default on open.
	if cfg.Timeout != 0 {
		t.Fatalf("unexpected timeout %v", cfg.Timeout)
	}
}

func TestLoadEndpointConfigTimeoutNone(t *testing.T) {
	path := writeConfig(t, `
kind = "udp"
host = "127.0.0.1"
port = 8006
timeout = "none"
`)
	cfg, err := loadEndpointConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timeout != session.NoTimeout {
		t.Fatalf("expected NoTimeout, got %v", cfg.Timeout)
	}
}

func TestLoadEndpointConfigRejectsIncompleteEndpoint(t *testing.T) {
	path := writeConfig(t, `
kind = "tcp"
host = "10.59.10.28"
`)
	if _, err := loadEndpointConfig(path); !errors.Is(err, session.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestLoadEndpointConfigMissingFile(t *testing.T) {
	if _, err := loadEndpointConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestBuildSpecResolvesNamesAndCodes(t *testing.T) {
	spec, err := buildSpec("dga", "back", "other")
	if err != nil {
		t.Fatalf("build spec: %v", err)
	}
	if spec.FilterName != "dga" || spec.FilterCode != 0 {
		t.Fatalf("unexpected filter fields: %+v", spec)
	}

	spec, err = buildSpec("0x72657075", "no", "filter")
	if err != nil {
		t.Fatalf("build spec: %v", err)
	}
	if spec.FilterCode != 0x72657075 || spec.FilterName != "" {
		t.Fatalf("unexpected filter fields: %+v", spec)
	}

	if _, err := buildSpec("dga", "bogus", "other"); err == nil {
		t.Fatalf("expected error for bogus response type")
	}
}
