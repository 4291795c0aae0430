package types

import (
	"errors"

	"github.com/kysee/shielded/crypto"
)

// Ledger error taxonomy. All failures are synchronous return values from
// the validation phase; none are retried automatically and none leave any
// partial state mutation behind.
var (
	ErrAlreadyInitialized = errors.New("shielded: ledger already initialized")
	ErrNotInitialized     = errors.New("shielded: ledger not initialized")

	// ErrParameterMismatch signals a deployment/config error: the supplied
	// parameter or key blob does not checksum to the pinned value.
	ErrParameterMismatch = errors.New("shielded: parameter checksum mismatch")

	// ErrMalformedEncoding covers every untrusted byte input that does not
	// decode to a valid field element or payload layout.
	ErrMalformedEncoding = crypto.ErrMalformedEncoding

	ErrDuplicateCommitment = errors.New("shielded: commitment already in shard")

	// ErrAlreadySpent is the double-spend guard: the void number was
	// recorded before.
	ErrAlreadySpent = errors.New("shielded: void number already spent")

	// ErrInvalidLedgerState rejects proofs built against a Merkle root the
	// shard table has never produced.
	ErrInvalidLedgerState = errors.New("shielded: unrecognized ledger root")

	ErrZKPFail = errors.New("shielded: proof verification failed")

	ErrMintFail = errors.New("shielded: mint commitment opening invalid")

	// ErrPoolOverdrawn signals a withdrawal exceeding the locked pool
	// balance; unreachable while circuit value conservation holds.
	ErrPoolOverdrawn = errors.New("shielded: pool balance insufficient")

	ErrBalanceLow = errors.New("shielded: public balance insufficient")
	ErrAmountZero = errors.New("shielded: amount is zero")

	ErrShardFull = errors.New("shielded: shard accumulator at capacity")
)
