package protocol

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// PacketType tells Darwin where a packet originates from.
type PacketType int32

const (
	// PacketOther marks packets from anything that is not a Darwin filter.
	PacketOther PacketType = 0
	// PacketFilter marks packets emitted by a Darwin filter itself.
	PacketFilter PacketType = 1
)

// ResponseType tells Darwin whether and where to send its answer.
type ResponseType int32

const (
	// ResponseNone requests no answer at all.
	ResponseNone ResponseType = 0
	// ResponseBack requests the answer be sent back to the caller.
	ResponseBack ResponseType = 1
	// ResponseDarwin requests the result be forwarded to the next filter stage.
	ResponseDarwin ResponseType = 2
	// ResponseBoth combines ResponseBack and ResponseDarwin.
	ResponseBoth ResponseType = 3
)

const (
	// FixedHeaderLen is the wire size of the header with an empty
	// certitude array: int32 + int32 + int64 + uint64 + 16 + uint64.
	FixedHeaderLen = 48

	// CertitudeLen is the wire size of one certitude entry.
	CertitudeLen = 4

	// FilterCodeNone is the sentinel "no filter" code.
	FilterCodeNone int64 = 0
)

// Limits constrains decode-side memory use against hostile or corrupt
// length fields.
type Limits struct {
	// MaxCertitudes bounds the certitude count claimed by a header.
	MaxCertitudes uint64
	// MaxBodyBytes bounds the body size claimed by a header.
	MaxBodyBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxCertitudes: 10_000,
		MaxBodyBytes:  8 * 1024 * 1024,
	}
}

// Header is one Darwin packet header. Its wire size is not constant:
// the certitude array trails the fixed fields, so the serialized length
// is FixedHeaderLen + CertitudeLen*len(Certitudes).
//
// A zero EventID is the placeholder id used when the caller does not
// supply one; the orchestration layer generates a random id per call.
type Header struct {
	Type       PacketType
	Response   ResponseType
	FilterCode int64
	BodySize   uint64
	EventID    [16]byte

	// CertitudeCount mirrors the wire field. Encoding derives the count
	// from len(Certitudes); decoding fills both consistently.
	CertitudeCount uint64
	Certitudes     []uint32
}

// WireSize returns the serialized header length implied by CertitudeCount.
func (h Header) WireSize() int {
	return FixedHeaderLen + CertitudeLen*int(h.CertitudeCount)
}

// EventIDHex returns the event id as a 32-character lowercase hex string.
func (h Header) EventIDHex() string {
	return hex.EncodeToString(h.EventID[:])
}

// SetEventIDHex parses a 32-character hex string into the event id.
func (h *Header) SetEventIDHex(s string) error {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEventID, s)
	}
	if len(raw) != len(h.EventID) {
		return fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidEventID, 2*len(h.EventID), len(s))
	}
	copy(h.EventID[:], raw)
	return nil
}

// Describe returns every field in host-native form for logging and for
// callers that must not depend on the wire representation.
func (h Header) Describe() map[string]any {
	certitudes := make([]uint32, len(h.Certitudes))
	copy(certitudes, h.Certitudes)
	return map[string]any{
		"packet_type":    int32(h.Type),
		"response_type":  int32(h.Response),
		"filter_code":    h.FilterCode,
		"body_size":      h.BodySize,
		"event_id":       h.EventIDHex(),
		"certitude_size": h.CertitudeCount,
		"certitude_list": certitudes,
	}
}

// EncodeHeader serializes h, fixed fields first, then the certitude
// array. The wire certitude count is always len(h.Certitudes).
func EncodeHeader(h Header) []byte {
	buf := make([]byte, FixedHeaderLen+CertitudeLen*len(h.Certitudes))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Type))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.Response))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.FilterCode))
	binary.LittleEndian.PutUint64(buf[16:24], h.BodySize)
	copy(buf[24:40], h.EventID[:])
	binary.LittleEndian.PutUint64(buf[40:48], uint64(len(h.Certitudes)))
	for i, c := range h.Certitudes {
		binary.LittleEndian.PutUint32(buf[FixedHeaderLen+CertitudeLen*i:], c)
	}
	return buf
}

// DecodeFixed parses the fixed 48-byte prefix of b. Certitudes is left
// nil; CertitudeCount carries the claimed array length so the transport
// can size its second read. The count is bound-checked here, before any
// allocation proportional to it can happen.
func DecodeFixed(b []byte, limits Limits) (Header, error) {
	if len(b) < FixedHeaderLen {
		return Header{}, fmt.Errorf("%w: %d bytes, need %d", ErrTruncated, len(b), FixedHeaderLen)
	}
	h := Header{
		Type:           PacketType(int32(binary.LittleEndian.Uint32(b[0:4]))),
		Response:       ResponseType(int32(binary.LittleEndian.Uint32(b[4:8]))),
		FilterCode:     int64(binary.LittleEndian.Uint64(b[8:16])),
		BodySize:       binary.LittleEndian.Uint64(b[16:24]),
		CertitudeCount: binary.LittleEndian.Uint64(b[40:48]),
	}
	copy(h.EventID[:], b[24:40])
	if h.CertitudeCount > limits.MaxCertitudes {
		return Header{}, fmt.Errorf("%w: %d entries, limit %d", ErrCertitudeOverflow, h.CertitudeCount, limits.MaxCertitudes)
	}
	return h, nil
}

// DecodeHeader parses a complete header from b, certitude array
// included. Decoding is two-phase because the message length depends on
// a field inside the message: the fixed prefix yields the count, the
// count yields the trailing bytes to consume.
func DecodeHeader(b []byte, limits Limits) (Header, error) {
	h, err := DecodeFixed(b, limits)
	if err != nil {
		return Header{}, err
	}
	if len(b) < h.WireSize() {
		return Header{}, fmt.Errorf("%w: %d bytes, certitude array needs %d", ErrTruncated, len(b), h.WireSize())
	}
	h.Certitudes = make([]uint32, h.CertitudeCount)
	for i := range h.Certitudes {
		h.Certitudes[i] = binary.LittleEndian.Uint32(b[FixedHeaderLen+CertitudeLen*i:])
	}
	return h, nil
}

// ParsePacketType resolves a symbolic packet type name.
func ParsePacketType(name string) (PacketType, error) {
	switch name {
	case "other":
		return PacketOther, nil
	case "filter":
		return PacketFilter, nil
	default:
		return 0, fmt.Errorf("%w: %q (accepted: other, filter)", ErrUnknownPacketType, name)
	}
}

// ParseResponseType resolves a symbolic response type name.
func ParseResponseType(name string) (ResponseType, error) {
	switch name {
	case "no":
		return ResponseNone, nil
	case "back":
		return ResponseBack, nil
	case "darwin":
		return ResponseDarwin, nil
	case "both":
		return ResponseBoth, nil
	default:
		return 0, fmt.Errorf("%w: %q (accepted: no, back, darwin, both)", ErrUnknownResponse, name)
	}
}
