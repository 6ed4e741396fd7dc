package core

// Frame is a raw encoded payload for the signaling channel.
type Frame []byte

// ConnID identifies one live channel to a browser tab. Transport-assigned
// and ephemeral, unlike the durable user identity.
type ConnID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
