package contracts

// Connection is the transport handle the relay owns for one user. Exactly one
// Connection is registered per user at any instant; no other component keeps
// a reference once registered.
//
// Send must not block: implementations either queue the frame for their write
// pump or fail fast. A Send error means the remote end is unreachable and the
// caller may treat the handle as stale.
type Connection interface {
	Send(data []byte) error
	Close()
}
