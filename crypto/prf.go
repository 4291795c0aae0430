package crypto

import (
	"github.com/kysee/shielded/utils"
)

// PRF evaluates the keyed pseudo-random function:
// PRF(key, input) = MiMC(domain, key, input).
func PRF(p *HashParams, key, input [32]byte) [32]byte {
	return utils.MiMCSum32(p.PRFDomain[:], key[:], input[:])
}

// PublicKey derives the stable per-key pseudonym pk = PRF(sk, 0^32).
func PublicKey(p *HashParams, sk [32]byte) [32]byte {
	var zero [32]byte
	return PRF(p, sk, zero)
}

// VoidNumber derives the per-coin nullifier sn = PRF(sk, rho). It is
// revealed exactly once at spend time; recording it is what makes a coin
// unspendable without linking it back to its commitment.
func VoidNumber(p *HashParams, sk, rho [32]byte) [32]byte {
	return PRF(p, sk, rho)
}
