package session

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/openaegis/darwin-go/protocol"
)

var (
	ErrInvalidArgument = errors.New("session: invalid argument")
	ErrConnection      = errors.New("session: connection failed")
	ErrTimeout         = errors.New("session: read deadline exceeded")
)

// Kind selects the socket family and type of an endpoint. The tcp and
// udp kinds are IPv4; tcp6 and udp6 are IPv6.
type Kind string

const (
	KindUnix Kind = "unix"
	KindTCP  Kind = "tcp"
	KindTCP6 Kind = "tcp6"
	KindUDP  Kind = "udp"
	KindUDP6 Kind = "udp6"
)

// network maps a Kind to the net package network name.
func (k Kind) network() string {
	switch k {
	case KindUnix:
		return "unix"
	case KindTCP:
		return "tcp4"
	case KindTCP6:
		return "tcp6"
	case KindUDP:
		return "udp4"
	case KindUDP6:
		return "udp6"
	}
	return ""
}

// datagram reports whether the kind is connectionless.
func (k Kind) datagram() bool {
	return k == KindUDP || k == KindUDP6
}

const (
	// DefaultTimeout bounds every blocking operation when the caller
	// leaves Timeout unset.
	DefaultTimeout = 10 * time.Second

	// NoTimeout disables the deadline entirely; reads block until the
	// peer delivers or the connection dies.
	NoTimeout time.Duration = -1
)

// Config describes one Darwin endpoint. Exactly one address form
// applies: SocketPath for unix, Host+Port for the tcp and udp kinds.
type Config struct {
	Kind       Kind
	SocketPath string
	Host       string
	Port       int

	// Timeout bounds connect, send and receive. Zero selects
	// DefaultTimeout; NoTimeout blocks indefinitely.
	Timeout time.Duration

	// Verbose routes per-call debug logs through Logger (or a default
	// console logger when Logger is nil).
	Verbose bool
	Logger  *zerolog.Logger

	// Limits bounds decode-side allocation. Zero fields take
	// protocol.DefaultLimits values.
	Limits protocol.Limits
}

// WithDefaults returns cfg with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Timeout < 0 {
		c.Timeout = NoTimeout
	}
	defaults := protocol.DefaultLimits()
	if c.Limits.MaxCertitudes == 0 {
		c.Limits.MaxCertitudes = defaults.MaxCertitudes
	}
	if c.Limits.MaxBodyBytes == 0 {
		c.Limits.MaxBodyBytes = defaults.MaxBodyBytes
	}
	return c
}

// Validate rejects incomplete or unknown endpoint descriptions before
// any socket is created.
func (c Config) Validate() error {
	switch c.Kind {
	case KindUnix:
		if strings.TrimSpace(c.SocketPath) == "" {
			return fmt.Errorf("%w: unix endpoint requires socket_path", ErrInvalidArgument)
		}
	case KindTCP, KindTCP6, KindUDP, KindUDP6:
		if strings.TrimSpace(c.Host) == "" {
			return fmt.Errorf("%w: %s endpoint requires host", ErrInvalidArgument, c.Kind)
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("%w: %s endpoint requires a port in 1-65535, got %d", ErrInvalidArgument, c.Kind, c.Port)
		}
	default:
		return fmt.Errorf("%w: unknown socket kind %q", ErrInvalidArgument, c.Kind)
	}
	return nil
}

// address returns the dial/resolve target for the configured kind.
func (c Config) address() string {
	if c.Kind == KindUnix {
		return c.SocketPath
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
