// Package protocol implements the binary wire protocol between a Wayfare
// server and its clients.
//
// All messages travel inside frames with a fixed 4-byte header: one byte
// frame type, one byte flags, and a big-endian uint16 payload length.
// Payloads use a compact binary encoding built on protobuf-style varints
// and length-prefixed strings.
//
// Message flow:
//
//	Client                              Server
//	  │  Hello (version, session, URL)   │
//	  │──────────────────────────────────▶
//	  │        Hello (session assigned)  │
//	  ◀──────────────────────────────────│
//	  │         ViewUpdate (initial)     │
//	  ◀──────────────────────────────────│
//	  │  Navigate (push /users/42)       │
//	  │──────────────────────────────────▶
//	  │         ViewUpdate (user, {42})  │
//	  ◀──────────────────────────────────│
//
// Decoders validate length prefixes against the remaining buffer and
// against allocation limits, so malformed or hostile input fails with an
// error instead of a large allocation.
package protocol
