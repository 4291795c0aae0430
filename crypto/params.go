package crypto

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2s"

	"github.com/kysee/shielded/utils"
)

// HashParams pins the domain separators of every MiMC use outside the
// plain two-to-one Merkle compression: PRF evaluation and leaf hashing.
type HashParams struct {
	PRFDomain  [32]byte
	LeafDomain [32]byte
}

// CommitParams pins the domain separator of the commitment scheme.
type CommitParams struct {
	Domain [32]byte
}

// Params is the full pinned parameter set a ledger is initialized with.
// The ledger stores only the checksums; callers re-supply the parameters
// on every operation and a mismatch is a deployment error, never retried.
type Params struct {
	Hash   HashParams
	Commit CommitParams
}

// DefaultParams derives the production domain separators. Each tag is a
// fixed string mapped into the scalar field.
func DefaultParams() *Params {
	return &Params{
		Hash: HashParams{
			PRFDomain:  domainTag("shielded/prf/v1"),
			LeafDomain: domainTag("shielded/merkle-leaf/v1"),
		},
		Commit: CommitParams{
			Domain: domainTag("shielded/commit/v1"),
		},
	}
}

func domainTag(label string) [32]byte {
	sum := blake2s.Sum256([]byte(label))
	// reduce into the field so the tag is usable as a hash input everywhere
	return utils.MiMCSum32(sum[:])
}

// HashParamsBytes serializes the hash parameter set for checksumming.
func (p *Params) HashParamsBytes() []byte {
	bz, err := rlp.EncodeToBytes([][]byte{p.Hash.PRFDomain[:], p.Hash.LeafDomain[:]})
	if err != nil {
		panic(err)
	}
	return bz
}

// CommitParamsBytes serializes the commitment parameter set for checksumming.
func (p *Params) CommitParamsBytes() []byte {
	bz, err := rlp.EncodeToBytes([][]byte{p.Commit.Domain[:]})
	if err != nil {
		panic(err)
	}
	return bz
}

// Checksum is the 32-byte digest used to pin parameter and key blobs.
func Checksum(blob []byte) [32]byte {
	return blake2s.Sum256(blob)
}

// SameChecksum compares a freshly computed checksum against a pinned one.
func SameChecksum(a, b [32]byte) bool {
	return bytes.Equal(a[:], b[:])
}
