// Package session owns transport concerns for one Darwin endpoint.
//
// Ownership boundary:
// - socket lifetime (open, close)
// - framed send over stream and datagram sockets
// - deadline-bounded receive of a complete header + body
//
// A session serves one in-flight call at a time and owns its socket
// exclusively. Callers needing concurrent calls open separate sessions
// or serialize access themselves.
package session
