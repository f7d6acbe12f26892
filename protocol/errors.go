package protocol

import "errors"

var (
	ErrTruncated         = errors.New("protocol: truncated header")
	ErrCertitudeOverflow = errors.New("protocol: certitude list exceeds limit")
	ErrBodyTooLarge      = errors.New("protocol: body exceeds limit")
	ErrInvalidEventID    = errors.New("protocol: invalid event id")
	ErrUnknownFilter     = errors.New("protocol: unknown filter name")
	ErrUnknownPacketType = errors.New("protocol: unknown packet type")
	ErrUnknownResponse   = errors.New("protocol: unknown response type")
)
