package utils

import (
	crand "crypto/rand"
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	_ "github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	gnark_hash "github.com/consensys/gnark-crypto/hash"
)

func DefaultHasher() hash.Hash {
	return MiMCHasher()
}

func DefaultHashSum(ins ...[]byte) []byte {
	return MiMCHash(ins...)
}

func MiMCHasher() hash.Hash {
	return gnark_hash.MIMC_BLS12_381.New()
}

// MiMCHash hashes the inputs as a sequence of BLS12-381 scalar field
// elements. Chunks are reduced to canonical form before being fed to the
// hasher, so the native digest matches the in-circuit MiMC over the same
// element sequence.
func MiMCHash(ins ...[]byte) []byte {
	hasher := MiMCHasher()

	blockSize := hasher.Size()

	hasher.Reset()
	for _, in := range ins {
		for i := 0; i < len(in); i += blockSize {
			end := i + blockSize
			if end > len(in) {
				end = len(in)
			}
			chunk := in[i:end]

			if len(chunk) == blockSize {
				// this value may be greater than the modulus; convert to fr.Element
				var elem fr.Element
				elem.SetBytes(chunk)
				// canonical form
				chunk = elem.Marshal()
			}
			if _, err := hasher.Write(chunk); err != nil {
				panic(err)
			}
		}
	}
	return hasher.Sum(nil)
}

// MiMCSum32 is MiMCHash with a fixed-size result.
func MiMCSum32(ins ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], MiMCHash(ins...))
	return out
}

func RandBytes(n int) []byte {
	rbz := make([]byte, n)
	_, _ = crand.Read(rbz)
	return rbz
}

// RandField samples a uniform scalar field element and returns its
// canonical 32-byte big-endian encoding.
func RandField() [32]byte {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		panic(err)
	}
	return e.Bytes()
}
