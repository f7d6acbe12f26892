// Package darwin is a client for the Darwin stream-filtering daemons.
// It speaks the Darwin binary request/response protocol over unix, tcp,
// tcp6, udp, and udp6 sockets.
//
// A Client wraps one open session; calls on it run synchronously, one
// at a time, start to finish. Open one client per filter, or serialize
// access externally if several goroutines share a handle.
package darwin

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openaegis/darwin-go/internal/logging"
	"github.com/openaegis/darwin-go/protocol"
	"github.com/openaegis/darwin-go/session"
)

// CallSpec selects the header fields of a call. FilterName, when set,
// is resolved case-insensitively against the well-known filter table
// and takes precedence over FilterCode. EventID, when set, must be a
// 32-character hex string; when empty a fresh random id is generated
// per call.
type CallSpec struct {
	PacketType   protocol.PacketType
	ResponseType protocol.ResponseType
	FilterName   string
	FilterCode   int64
	EventID      string
}

// BulkResult is the outcome of a BulkCall. Certitudes and Body are only
// populated when the response type requested a reply; EventID is always
// set and lets asynchronous results delivered out of band be matched
// back to this call.
type BulkResult struct {
	EventID    string
	Certitudes []uint32
	Body       string
}

// CallResult is the outcome of a single Call. Answered reports whether
// a certitude came back; an empty certitude list is not an error.
type CallResult struct {
	EventID   string
	Certitude uint32
	Answered  bool
	Body      string
}

// Client issues Darwin calls over one session.
type Client struct {
	sess *session.Session
	log  zerolog.Logger
}

// Open creates the session described by cfg and wraps it in a Client.
func Open(cfg session.Config) (*Client, error) {
	sess, err := session.Open(cfg)
	if err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if cfg.Verbose {
		if cfg.Logger != nil {
			log = *cfg.Logger
		} else {
			log = logging.New("darwin")
		}
	}
	return &Client{sess: sess, log: log}, nil
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	return c.sess.Close()
}

// Call sends a single argument list and, when a reply was requested,
// unwraps the first certitude from the result.
func (c *Client) Call(args []string, spec CallSpec) (CallResult, error) {
	bulk, err := c.BulkCall([][]string{args}, spec)
	if err != nil {
		return CallResult{}, err
	}
	out := CallResult{EventID: bulk.EventID, Body: bulk.Body}
	if len(bulk.Certitudes) > 0 {
		out.Certitude = bulk.Certitudes[0]
		out.Answered = true
	} else if spec.ResponseType == protocol.ResponseBack || spec.ResponseType == protocol.ResponseBoth {
		c.log.Debug().Str("event_id", bulk.EventID).Msg("no certitude returned")
	}
	return out, nil
}

// BulkCall JSON-encodes data as the request body, sends one framed
// request, and reads the reply when the response type asks for one.
// When no reply is requested the returned result carries only the
// event id.
func (c *Client) BulkCall(data [][]string, spec CallSpec) (BulkResult, error) {
	code := spec.FilterCode
	if spec.FilterName != "" {
		resolved, err := protocol.FilterCodeByName(spec.FilterName)
		if err != nil {
			return BulkResult{}, fmt.Errorf("%w: %w", session.ErrInvalidArgument, err)
		}
		code = resolved
	}

	// Two-space indentation matches the reference client; the daemons
	// accept any JSON whitespace.
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return BulkResult{}, err
	}

	eventID := spec.EventID
	if eventID == "" {
		id := uuid.New()
		eventID = hex.EncodeToString(id[:])
		c.log.Debug().Str("event_id", eventID).Msg("generated event id")
	}

	head := protocol.Header{
		Type:       spec.PacketType,
		Response:   spec.ResponseType,
		FilterCode: code,
	}
	if err := head.SetEventIDHex(eventID); err != nil {
		return BulkResult{}, fmt.Errorf("%w: %w", session.ErrInvalidArgument, err)
	}

	if err := c.sess.Send(head, body); err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{EventID: eventID}
	if spec.ResponseType != protocol.ResponseBack && spec.ResponseType != protocol.ResponseBoth {
		return result, nil
	}

	certitudes, raw, err := c.sess.Receive()
	if err != nil {
		return BulkResult{}, err
	}
	result.Certitudes = certitudes
	result.Body = string(raw)
	c.log.Debug().Uints32("certitudes", certitudes).Msg("call answered")
	return result, nil
}
