package core

import "errors"

// ErrConnClosed is returned by TrySend once the transport has shut down.
var ErrConnClosed = errors.New("connection closed")

// Frame is an encoded outbound envelope.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
