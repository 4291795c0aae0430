// Package types holds the coin model, wire payloads, events, and the error
// taxonomy of the shielded pool.
package types

import (
	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/utils"
)

// Coin is a shielded note: a hidden value spendable by the holder of its
// spending key, identified publicly only by the commitment Cm.
//
//	pk = PRF(sk, 0)
//	k  = Commit(pk || rho, r)
//	cm = Commit(value || k, s)
//	sn = PRF(sk, rho)
type Coin struct {
	Value uint64

	Sk  [32]byte
	Rho [32]byte
	R   [32]byte
	S   [32]byte

	Pk [32]byte
	K  [32]byte
	Cm [32]byte
	Sn [32]byte
}

// CoinPublicInfo is the part of a coin that can be revealed without
// compromising funds; a sender hands it to the receiver off-band so the
// receiver can later spend the coin with its own spending key.
type CoinPublicInfo struct {
	Pk  [32]byte
	Rho [32]byte
	S   [32]byte
	R   [32]byte
	K   [32]byte
}

// CoinPrivateInfo is revealed only at spend time.
type CoinPrivateInfo struct {
	Value uint64
	Sk    [32]byte
	Sn    [32]byte
}

// NewCoin constructs a fresh coin for the holder of sk with random
// rho, r, s sampled as field elements.
func NewCoin(p *crypto.Params, sk [32]byte, value uint64) *Coin {
	return buildCoin(p, sk, crypto.PublicKey(&p.Hash, sk), value,
		utils.RandField(), utils.RandField(), utils.RandField())
}

// NewCoinFor constructs a coin owned by a foreign public key pk. The
// builder cannot derive the nullifier (it has no sk), so Sn stays zero;
// the owner reconstructs the full coin with AdoptCoin.
func NewCoinFor(p *crypto.Params, pk [32]byte, value uint64) *Coin {
	var noSk [32]byte
	c := buildCoin(p, noSk, pk, value,
		utils.RandField(), utils.RandField(), utils.RandField())
	c.Sn = [32]byte{}
	return c
}

// AdoptCoin rebuilds a spendable coin from its public info and the owner's
// spending key plus the value recovered from the ciphertext channel.
func AdoptCoin(p *crypto.Params, sk [32]byte, pub *CoinPublicInfo, value uint64) *Coin {
	return buildCoin(p, sk, pub.Pk, value, pub.Rho, pub.R, pub.S)
}

func buildCoin(p *crypto.Params, sk, pk [32]byte, value uint64, rho, r, s [32]byte) *Coin {
	k := crypto.AddressCommitment(&p.Commit, pk, rho, r)
	return &Coin{
		Value: value,
		Sk:    sk,
		Rho:   rho,
		R:     r,
		S:     s,
		Pk:    pk,
		K:     k,
		Cm:    crypto.ValueCommitment(&p.Commit, value, k, s),
		Sn:    crypto.VoidNumber(&p.Hash, sk, rho),
	}
}

// PublicInfo splits out the revealable metadata.
func (c *Coin) PublicInfo() *CoinPublicInfo {
	return &CoinPublicInfo{Pk: c.Pk, Rho: c.Rho, S: c.S, R: c.R, K: c.K}
}

// PrivateInfo splits out the spend-time secrets.
func (c *Coin) PrivateInfo() *CoinPrivateInfo {
	return &CoinPrivateInfo{Value: c.Value, Sk: c.Sk, Sn: c.Sn}
}

// Check verifies the internal consistency of the coin against the pinned
// parameters (commitment opening and nullifier derivation).
func (c *Coin) Check(p *crypto.Params) bool {
	v := crypto.U64Field(c.Value)
	if !crypto.Open(&p.Commit, [][]byte{c.Pk[:], c.Rho[:]}, c.R, c.K) {
		return false
	}
	if !crypto.Open(&p.Commit, [][]byte{v[:], c.K[:]}, c.S, c.Cm) {
		return false
	}
	return true
}
