package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/openaegis/darwin-go/internal/logging"
	"github.com/openaegis/darwin-go/protocol"
)

// maxDatagram bounds a single datagram read; a Darwin reply always fits
// in one datagram on the udp kinds.
const maxDatagram = 65535

// Session is one open endpoint. Stream kinds connect at Open; datagram
// kinds keep an unconnected socket and address every send explicitly.
type Session struct {
	cfg   Config
	conn  net.Conn
	pconn net.PacketConn
	peer  net.Addr
	log   zerolog.Logger
}

// Open validates cfg, creates the socket, and connects it for stream
// kinds. Socket creation, connect, and address resolution failures wrap
// ErrConnection.
func Open(cfg Config) (*Session, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if cfg.Verbose {
		if cfg.Logger != nil {
			log = *cfg.Logger
		} else {
			log = logging.New("session")
		}
	}

	s := &Session{cfg: cfg, log: log}

	if cfg.Kind.datagram() {
		peer, err := net.ResolveUDPAddr(cfg.Kind.network(), cfg.address())
		if err != nil {
			return nil, fmt.Errorf("%w: resolve %s: %v", ErrConnection, cfg.address(), err)
		}
		pconn, err := net.ListenPacket(cfg.Kind.network(), ":0")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}
		s.pconn = pconn
		s.peer = peer
		log.Debug().Str("kind", string(cfg.Kind)).Stringer("peer", peer).Msg("datagram session open")
		return s, nil
	}

	dialer := net.Dialer{}
	if cfg.Timeout > 0 {
		dialer.Timeout = cfg.Timeout
	}
	conn, err := dialer.Dial(cfg.Kind.network(), cfg.address())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	s.conn = conn
	log.Debug().Str("kind", string(cfg.Kind)).Str("addr", cfg.address()).Msg("stream session open")
	return s, nil
}

// Send writes one framed request. A non-nil body always gains a
// trailing newline, counted in the header's body size; intermediary
// stream proxies hold back the last chunk of a TCP payload until they
// see a line terminator, and the newline is inert to JSON parsing on
// the Darwin side.
//
// Stream kinds write the header, then the body as a second write.
// Datagram kinds send everything as a single datagram, and refuse
// response types other than none and darwin before any bytes move: a
// connectionless socket cannot pair a reply with the session that asked
// for it.
func (s *Session) Send(h protocol.Header, body []byte) error {
	if s.pconn != nil && h.Response != protocol.ResponseNone && h.Response != protocol.ResponseDarwin {
		return fmt.Errorf("%w: datagram transport only supports the none and darwin response types", ErrInvalidArgument)
	}

	if body != nil {
		h.BodySize = uint64(len(body)) + 1
	} else {
		h.BodySize = 0
	}
	wire := protocol.EncodeHeader(h)
	s.log.Debug().Fields(h.Describe()).Msg("sending header")

	deadline := s.deadline(time.Now())

	if s.pconn != nil {
		datagram := wire
		if body != nil {
			datagram = make([]byte, 0, len(wire)+len(body)+1)
			datagram = append(datagram, wire...)
			datagram = append(datagram, body...)
			datagram = append(datagram, '\n')
		}
		if err := s.pconn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		if _, err := s.pconn.WriteTo(datagram, s.peer); err != nil {
			return s.classify(err)
		}
		return nil
	}

	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if _, err := s.conn.Write(wire); err != nil {
		return s.classify(err)
	}
	if body == nil {
		return nil
	}
	framed := make([]byte, 0, len(body)+1)
	framed = append(framed, body...)
	framed = append(framed, '\n')
	if _, err := s.conn.Write(framed); err != nil {
		return s.classify(err)
	}
	return nil
}

// Receive reads back one complete reply: the certitude list from the
// header and the raw body bytes. The deadline is anchored when Receive
// is called and every read re-checks it, so a peer dripping one byte at
// a time cannot block past the configured timeout. On ErrTimeout the
// partial bytes are discarded but the session stays open.
func (s *Session) Receive() ([]uint32, []byte, error) {
	deadline := s.deadline(time.Now())

	if s.pconn != nil {
		return s.receiveDatagram(deadline)
	}

	// Phase 1: the fixed prefix. Its certitude count tells us how many
	// more header bytes are in flight.
	buf := make([]byte, protocol.FixedHeaderLen)
	if err := s.readFull(buf, deadline); err != nil {
		return nil, nil, err
	}
	head, err := protocol.DecodeFixed(buf, s.cfg.Limits)
	if err != nil {
		return nil, nil, err
	}

	// Phase 2: the trailing certitude array, if any.
	if head.CertitudeCount > 0 {
		full := make([]byte, head.WireSize())
		copy(full, buf)
		if err := s.readFull(full[protocol.FixedHeaderLen:], deadline); err != nil {
			return nil, nil, err
		}
		head, err = protocol.DecodeHeader(full, s.cfg.Limits)
		if err != nil {
			return nil, nil, err
		}
	}
	s.log.Debug().Fields(head.Describe()).Msg("received header")

	if head.BodySize > s.cfg.Limits.MaxBodyBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes, limit %d", protocol.ErrBodyTooLarge, head.BodySize, s.cfg.Limits.MaxBodyBytes)
	}
	body := make([]byte, head.BodySize)
	if err := s.readFull(body, deadline); err != nil {
		return nil, nil, err
	}
	s.log.Debug().Int("body_bytes", len(body)).Msg("received body")
	return head.Certitudes, body, nil
}

// receiveDatagram reads one datagram and parses header and body out of
// it; datagram replies never span packets.
func (s *Session) receiveDatagram(deadline time.Time) ([]uint32, []byte, error) {
	if err := s.pconn.SetReadDeadline(deadline); err != nil {
		return nil, nil, err
	}
	buf := make([]byte, maxDatagram)
	n, _, err := s.pconn.ReadFrom(buf)
	if err != nil {
		return nil, nil, s.classify(err)
	}
	head, err := protocol.DecodeHeader(buf[:n], s.cfg.Limits)
	if err != nil {
		return nil, nil, err
	}
	rest := buf[head.WireSize():n]
	if uint64(len(rest)) < head.BodySize {
		return nil, nil, fmt.Errorf("%w: datagram carries %d body bytes, header claims %d", protocol.ErrTruncated, len(rest), head.BodySize)
	}
	body := make([]byte, head.BodySize)
	copy(body, rest)
	return head.Certitudes, body, nil
}

// Close releases the socket.
func (s *Session) Close() error {
	if s.pconn != nil {
		return s.pconn.Close()
	}
	return s.conn.Close()
}

// deadline converts the configured timeout into an absolute deadline;
// the zero time means no deadline.
func (s *Session) deadline(start time.Time) time.Time {
	if s.cfg.Timeout == NoTimeout {
		return time.Time{}
	}
	return start.Add(s.cfg.Timeout)
}

// readFull accumulates exactly len(buf) bytes before deadline. It is
// the single read primitive behind both the header and body loops.
func (s *Session) readFull(buf []byte, deadline time.Time) error {
	for got := 0; got < len(buf); {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return fmt.Errorf("%w: got %d of %d bytes", ErrTimeout, got, len(buf))
		}
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			return err
		}
		n, err := s.conn.Read(buf[got:])
		got += n
		if err != nil {
			if got >= len(buf) {
				return nil
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return fmt.Errorf("%w: got %d of %d bytes", ErrTimeout, got, len(buf))
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: peer closed after %d of %d bytes", ErrConnection, got, len(buf))
			}
			return err
		}
	}
	return nil
}

// classify wraps deadline errors from the net layer as ErrTimeout and
// leaves everything else untouched.
func (s *Session) classify(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
