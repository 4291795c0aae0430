// Package ledger implements the shielded-pool state machine: a single
// explicit LedgerState value mutated only through Init, Mint,
// PrivateTransfer, and Reclaim. One operation executes at a time; every
// operation either commits fully or leaves the state untouched.
package ledger

import (
	"github.com/consensys/gnark/backend/groth16"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/kysee/shielded/circuit"
	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/merkle"
	"github.com/kysee/shielded/types"
)

// Config carries the build-time choices of the deployment.
type Config struct {
	// MerkleDepth fixes the per-shard accumulator depth; it must match
	// the depth the circuits were compiled with.
	MerkleDepth int
}

func DefaultConfig() Config {
	return Config{MerkleDepth: 16}
}

// LedgerState aggregates all 256 shards, the void-number set, the
// ciphertext log, pool and public-token balances, and the checksums
// pinning the parameter set and verifying keys for the ledger's lifetime.
type LedgerState struct {
	cfg Config
	log zerolog.Logger

	initialized bool

	shards      *merkle.ShardTable
	voidNumbers [][32]byte
	voidSet     map[[32]byte]struct{}
	ciphertexts []types.CiphertextEntry

	poolBalance *uint256.Int
	totalSupply *uint256.Int
	balances    map[string]*uint256.Int

	hashParamSum   [32]byte
	commitParamSum [32]byte

	transferVKBytes []byte
	reclaimVKBytes  []byte
	transferVKSum   [32]byte
	reclaimVKSum    [32]byte
}

// NewLedgerState creates an uninitialized ledger. Every operation except
// Init fails with ErrNotInitialized until Init succeeds.
func NewLedgerState(cfg Config, log zerolog.Logger) *LedgerState {
	return &LedgerState{
		cfg:         cfg,
		log:         log,
		voidSet:     make(map[[32]byte]struct{}),
		poolBalance: uint256.NewInt(0),
		totalSupply: uint256.NewInt(0),
		balances:    make(map[string]*uint256.Int),
	}
}

// Init is the one-time transition from Uninitialized to Initialized: it
// pins the parameter and verifying-key checksums, builds the shard table,
// and issues the public total supply to the issuer account.
func (l *LedgerState) Init(p *crypto.Params, transferVK, reclaimVK []byte, issuer string, totalSupply uint64) (*types.Event, error) {
	if l.initialized {
		return nil, types.ErrAlreadyInitialized
	}
	// reject key blobs that do not even parse; they would poison every
	// later verification
	if _, err := circuit.UnmarshalVerifyingKey(transferVK); err != nil {
		return nil, err
	}
	if _, err := circuit.UnmarshalVerifyingKey(reclaimVK); err != nil {
		return nil, err
	}

	l.hashParamSum = crypto.Checksum(p.HashParamsBytes())
	l.commitParamSum = crypto.Checksum(p.CommitParamsBytes())
	l.transferVKBytes = append([]byte(nil), transferVK...)
	l.reclaimVKBytes = append([]byte(nil), reclaimVK...)
	l.transferVKSum = crypto.Checksum(transferVK)
	l.reclaimVKSum = crypto.Checksum(reclaimVK)

	l.shards = merkle.NewShardTable(l.cfg.MerkleDepth, p.Hash.LeafDomain)
	l.totalSupply = uint256.NewInt(totalSupply)
	l.balances[issuer] = uint256.NewInt(totalSupply)
	l.initialized = true

	l.log.Info().
		Str("issuer", issuer).
		Uint64("total_supply", totalSupply).
		Int("merkle_depth", l.cfg.MerkleDepth).
		Msg("ledger initialized")

	return &types.Event{Kind: types.EventInitialized, Actor: issuer, Amount: totalSupply}, nil
}

// checkParams recomputes the checksums of a caller-supplied parameter set
// against the pinned values.
func (l *LedgerState) checkParams(p *crypto.Params) error {
	if !crypto.SameChecksum(crypto.Checksum(p.HashParamsBytes()), l.hashParamSum) {
		return types.ErrParameterMismatch
	}
	if !crypto.SameChecksum(crypto.Checksum(p.CommitParamsBytes()), l.commitParamSum) {
		return types.ErrParameterMismatch
	}
	return nil
}

// transferVK re-checksums the stored verifying key blob and deserializes
// it. The comparison runs on every proof verification, pinning the ledger
// to the key set it was initialized with.
func (l *LedgerState) transferVK() (groth16.VerifyingKey, error) {
	if !crypto.SameChecksum(crypto.Checksum(l.transferVKBytes), l.transferVKSum) {
		return nil, types.ErrParameterMismatch
	}
	return circuit.UnmarshalVerifyingKey(l.transferVKBytes)
}

func (l *LedgerState) reclaimVK() (groth16.VerifyingKey, error) {
	if !crypto.SameChecksum(crypto.Checksum(l.reclaimVKBytes), l.reclaimVKSum) {
		return nil, types.ErrParameterMismatch
	}
	return circuit.UnmarshalVerifyingKey(l.reclaimVKBytes)
}

// Initialized reports the state-machine phase.
func (l *LedgerState) Initialized() bool { return l.initialized }

// PoolBalance is the public-token value currently locked in the pool.
func (l *LedgerState) PoolBalance() *uint256.Int {
	return new(uint256.Int).Set(l.poolBalance)
}

// TotalSupply is the pinned public supply.
func (l *LedgerState) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(l.totalSupply)
}

// BalanceOf returns the public balance of an account.
func (l *LedgerState) BalanceOf(addr string) *uint256.Int {
	if b, ok := l.balances[addr]; ok {
		return new(uint256.Int).Set(b)
	}
	return uint256.NewInt(0)
}

// Exists reports whether cm has been accepted into its shard.
func (l *LedgerState) Exists(cm [32]byte) bool {
	return l.initialized && l.shards.Exists(cm)
}

// CheckRoot reports whether root is a current or historical shard root.
func (l *LedgerState) CheckRoot(root [32]byte) bool {
	return l.initialized && l.shards.CheckRoot(root)
}

// IsSpent reports whether a void number has been recorded.
func (l *LedgerState) IsSpent(sn [32]byte) bool {
	_, ok := l.voidSet[sn]
	return ok
}

// VoidNumbers returns the recorded void numbers in append order.
func (l *LedgerState) VoidNumbers() [][32]byte {
	out := make([][32]byte, len(l.voidNumbers))
	copy(out, l.voidNumbers)
	return out
}

// Ciphertexts returns the value-channel log in append order.
func (l *LedgerState) Ciphertexts() []types.CiphertextEntry {
	out := make([]types.CiphertextEntry, len(l.ciphertexts))
	copy(out, l.ciphertexts)
	return out
}

// ProveCommitment builds a membership path for a live commitment together
// with the shard root it verifies against. Wallets use this to assemble
// spend witnesses.
func (l *LedgerState) ProveCommitment(cm [32]byte) (root [32]byte, p *merkle.Path, err error) {
	if !l.initialized {
		err = types.ErrNotInitialized
		return
	}
	return l.shards.Prove(cm)
}

// ShardRoot returns the current root of one shard.
func (l *LedgerState) ShardRoot(idx byte) [32]byte {
	return l.shards.Shard(idx).Tree.Root()
}

func hexOf(bz [32]byte) string {
	return hexutil.Encode(bz[:])
}
