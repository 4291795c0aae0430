// Package circuit defines the zero-knowledge circuits of the shielded
// pool and the Groth16 prove/verify plumbing around them.
//
// One circuit family with a fixed public-input layout is selected at build
// time; the Merkle depth is the only compile parameter. Curve: BLS12-381.
package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/kysee/shielded/crypto"
)

// TransferCircuit proves that two existing, unspent, membership-proven
// coins were consumed and two validly-formed coins were produced with
// conserved total value. Public inputs, in layout order: the senders'
// address commitments, the Merkle roots the spends were proven against,
// both void numbers, and both new coin commitments.
type TransferCircuit struct {
	SenderK [2]frontend.Variable `gnark:",public"`
	Root    [2]frontend.Variable `gnark:",public"`
	Sn      [2]frontend.Variable `gnark:",public"`
	NewCm   [2]frontend.Variable `gnark:",public"`

	// spent-coin witness
	Sk       [2]frontend.Variable
	OldValue [2]frontend.Variable
	Rho      [2]frontend.Variable
	R        [2]frontend.Variable
	OldS     [2]frontend.Variable
	Siblings [2][]frontend.Variable
	PathBits [2][]frontend.Variable

	// created-coin witness
	NewValue [2]frontend.Variable
	NewK     [2]frontend.Variable
	NewS     [2]frontend.Variable

	prfDomain    *big.Int
	leafDomain   *big.Int
	commitDomain *big.Int
}

// NewTransferCircuit builds a circuit template (or assignment skeleton)
// for the given pinned parameters and Merkle depth.
func NewTransferCircuit(p *crypto.Params, depth int) *TransferCircuit {
	cc := &TransferCircuit{
		prfDomain:    new(big.Int).SetBytes(p.Hash.PRFDomain[:]),
		leafDomain:   new(big.Int).SetBytes(p.Hash.LeafDomain[:]),
		commitDomain: new(big.Int).SetBytes(p.Commit.Domain[:]),
	}
	for i := 0; i < 2; i++ {
		cc.Siblings[i] = make([]frontend.Variable, depth)
		cc.PathBits[i] = make([]frontend.Variable, depth)
	}
	return cc
}

func (cc *TransferCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	for i := 0; i < 2; i++ {
		spendChecks(api, &h, spendVars{
			prfDomain:    cc.prfDomain,
			leafDomain:   cc.leafDomain,
			commitDomain: cc.commitDomain,
			k:            cc.SenderK[i],
			root:         cc.Root[i],
			sn:           cc.Sn[i],
			sk:           cc.Sk[i],
			value:        cc.OldValue[i],
			rho:          cc.Rho[i],
			r:            cc.R[i],
			s:            cc.OldS[i],
			siblings:     cc.Siblings[i],
			pathBits:     cc.PathBits[i],
		})
	}

	for j := 0; j < 2; j++ {
		api.ToBinary(cc.NewValue[j], 64)
		h.Reset()
		h.Write(cc.commitDomain, cc.NewValue[j], cc.NewK[j], cc.NewS[j])
		api.AssertIsEqual(cc.NewCm[j], h.Sum())
	}

	// value is conserved inside the pool
	api.AssertIsEqual(
		api.Add(cc.OldValue[0], cc.OldValue[1]),
		api.Add(cc.NewValue[0], cc.NewValue[1]),
	)
	return nil
}

type spendVars struct {
	prfDomain, leafDomain, commitDomain *big.Int

	k, root, sn          frontend.Variable
	sk, value, rho, r, s frontend.Variable
	siblings, pathBits   []frontend.Variable
}

// spendChecks enforces, for one spent coin: well-formed pseudonym, address
// commitment, value commitment, void number, a 64-bit value, and Merkle
// membership of the commitment under the claimed root.
func spendChecks(api frontend.API, h *mimc.MiMC, v spendVars) {
	api.ToBinary(v.value, 64)

	// pk = PRF(sk, 0)
	h.Reset()
	h.Write(v.prfDomain, v.sk, 0)
	pk := h.Sum()

	// k = Commit(pk || rho, r)
	h.Reset()
	h.Write(v.commitDomain, pk, v.rho, v.r)
	api.AssertIsEqual(v.k, h.Sum())

	// cm = Commit(value || k, s)
	h.Reset()
	h.Write(v.commitDomain, v.value, v.k, v.s)
	cm := h.Sum()

	// sn = PRF(sk, rho)
	h.Reset()
	h.Write(v.prfDomain, v.sk, v.rho)
	api.AssertIsEqual(v.sn, h.Sum())

	// membership: fold the path from the domain-separated leaf hash up
	h.Reset()
	h.Write(v.leafDomain, cm)
	cur := h.Sum()
	for d := 0; d < len(v.siblings); d++ {
		bit := v.pathBits[d]
		api.AssertIsBoolean(bit)
		left := api.Select(bit, v.siblings[d], cur)
		right := api.Select(bit, cur, v.siblings[d])
		h.Reset()
		h.Write(left, right)
		cur = h.Sum()
	}
	api.AssertIsEqual(cur, v.root)
}
