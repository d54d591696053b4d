package core

// Close codes sent in the WebSocket close frame. 4xxx are application codes.
const (
	CloseNormal        = 1000
	CloseGoingAway     = 1001
	CloseInternal      = 1011
	CloseSuperseded    = 4000
	CloseUnauthorized  = 4001
	CloseForbidden     = 4003
	CloseNotFound      = 4004
	CloseAuthTimeout   = 4008
	CloseRoomFull      = 4009
	CloseBackpressure  = 4010
	CloseIdle          = 4011
	CloseInterviewOver = 4012
)

// Connection abstracts for a system messaging transport.
// Owned by the adapter; everything else only enqueues frames or asks it to close.
type Connection interface {
	ID() ConnID
	// TrySend enqueues f without blocking. It returns ErrBackpressure when the
	// outbound queue is full and ErrConnClosed after Close.
	TrySend(f Frame) error
	// Close flushes what is already queued, sends a close frame and releases
	// the socket. Safe to call more than once; only the first call wins.
	Close(code int, reason string)
}
