package session

import "context"

// Transport carries bytes between the controller and one device. The session
// holds no lock while calling any of these: all network I/O happens outside
// the in-memory state transitions.
//
// Connect semantics are request/response; cyclic semantics are fire-and-forget
// send plus most-recent-frame receive.
type Transport interface {
	// SendConnect transmits a connect request and returns the raw response.
	// Implementations honor the context deadline for the round trip.
	SendConnect(ctx context.Context, request []byte) ([]byte, error)

	// SendFrame transmits one outbound cyclic frame.
	SendFrame(frame []byte) error

	// RecvFrame returns the most recent inbound cyclic frame, or an error if
	// none arrived within the channel's update interval.
	RecvFrame(ctx context.Context) ([]byte, error)

	// Close releases the transport.
	Close() error
}
