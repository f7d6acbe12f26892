// Package protocol owns the Darwin wire contract and parsing primitives.
//
// Ownership boundary:
// - packed header layout and its flexible certitude array
// - decode bounds enforcement
// - filter name resolution
//
// The header layout is a bilateral contract with the Darwin daemons:
// little-endian, byte-tight packing, 8-byte size fields. Both sides
// must agree; this package writes the reference-platform layout
// explicitly rather than probing the host.
package protocol
