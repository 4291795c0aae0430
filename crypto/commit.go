// Package crypto implements the commitment scheme, PRF, and value
// encryption channel of the shielded pool.
//
// Everything here is expressed over the BLS12-381 scalar field so that the
// native digests match the in-circuit MiMC evaluation of the same element
// sequence.
package crypto

import (
	"bytes"

	"github.com/kysee/shielded/utils"
)

// Commit binds a payload (a sequence of field-encoded values) under
// randomness s: out = MiMC(domain, payload..., s). The scheme is hiding in
// s and computationally binding through MiMC collision resistance.
func Commit(p *CommitParams, payload [][]byte, s [32]byte) [32]byte {
	ins := make([][]byte, 0, len(payload)+2)
	ins = append(ins, p.Domain[:])
	ins = append(ins, payload...)
	ins = append(ins, s[:])
	return utils.MiMCSum32(ins...)
}

// Open recomputes the commitment and compares it against out.
func Open(p *CommitParams, payload [][]byte, s, out [32]byte) bool {
	got := Commit(p, payload, s)
	return bytes.Equal(got[:], out[:])
}

// ValueCommitment computes cm = Commit(value || k, s).
func ValueCommitment(p *CommitParams, value uint64, k, s [32]byte) [32]byte {
	v := U64Field(value)
	return Commit(p, [][]byte{v[:], k[:]}, s)
}

// AddressCommitment computes k = Commit(pk || rho, r).
func AddressCommitment(p *CommitParams, pk, rho, r [32]byte) [32]byte {
	return Commit(p, [][]byte{pk[:], rho[:]}, r)
}
