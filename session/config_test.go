package session

import (
	"errors"
	"testing"
	"time"

	"github.com/openaegis/darwin-go/protocol"
)

func TestValidateRejectsIncompleteEndpoints(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"unix without path", Config{Kind: KindUnix}},
		{"tcp without host", Config{Kind: KindTCP, Port: 8008}},
		{"tcp without port", Config{Kind: KindTCP, Host: "127.0.0.1"}},
		{"tcp6 port out of range", Config{Kind: KindTCP6, Host: "::1", Port: 70000}},
		{"udp without host", Config{Kind: KindUDP, Port: 8008}},
		{"unknown kind", Config{Kind: Kind("sctp"), Host: "127.0.0.1", Port: 8008}},
		{"empty kind", Config{}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}
}

func TestValidateAcceptsCompleteEndpoints(t *testing.T) {
	cases := []Config{
		{Kind: KindUnix, SocketPath: "/var/sockets/darwin/dga_1.sock"},
		{Kind: KindTCP, Host: "127.0.0.1", Port: 8008},
		{Kind: KindTCP6, Host: "::1", Port: 8008},
		{Kind: KindUDP, Host: "127.0.0.1", Port: 8008},
		{Kind: KindUDP6, Host: "::1", Port: 8008},
	}
	for _, cfg := range cases {
		if err := cfg.Validate(); err != nil {
			t.Fatalf("%s: unexpected error %v", cfg.Kind, err)
		}
	}
}

func TestWithDefaultsFillsTimeoutAndLimits(t *testing.T) {
	cfg := Config{Kind: KindUnix, SocketPath: "/tmp/x.sock"}.WithDefaults()
	if cfg.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.Limits != protocol.DefaultLimits() {
		t.Fatalf("expected default limits, got %+v", cfg.Limits)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Kind:    KindUnix,
		Timeout: 200 * time.Millisecond,
		Limits:  protocol.Limits{MaxCertitudes: 5, MaxBodyBytes: 64},
	}.WithDefaults()
	if cfg.Timeout != 200*time.Millisecond {
		t.Fatalf("explicit timeout overwritten: %v", cfg.Timeout)
	}
	if cfg.Limits.MaxCertitudes != 5 || cfg.Limits.MaxBodyBytes != 64 {
		t.Fatalf("explicit limits overwritten: %+v", cfg.Limits)
	}
}

func TestWithDefaultsNormalizesNoTimeout(t *testing.T) {
	cfg := Config{Kind: KindUnix, Timeout: -5 * time.Second}.WithDefaults()
	if cfg.Timeout != NoTimeout {
		t.Fatalf("expected NoTimeout, got %v", cfg.Timeout)
	}
}

func TestOpenValidatesBeforeSocketCreation(t *testing.T) {
	if _, err := Open(Config{Kind: KindTCP}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestOpenWrapsConnectFailure(t *testing.T) {
	cfg := Config{
		Kind:       KindUnix,
		SocketPath: t.TempDir() + "/missing.sock",
		Timeout:    200 * time.Millisecond,
	}
	if _, err := Open(cfg); !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
