package types

// EventKind names the ledger events surfaced to the host's observability
// layer. Public operations carry the amount; private ones reveal none.
type EventKind string

const (
	EventInitialized        EventKind = "Initialized"
	EventMinted             EventKind = "Minted"
	EventPrivateTransferred EventKind = "PrivateTransferred"
	EventReclaimed          EventKind = "Reclaimed"
)

// Event is one accepted state transition.
type Event struct {
	Kind  EventKind
	Actor string

	// Amount is set for Minted and Reclaimed only; private transfers
	// reveal no value.
	Amount uint64

	Commitments [][32]byte
	VoidNumbers [][32]byte
}
