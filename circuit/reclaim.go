package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/kysee/shielded/crypto"
)

// ReclaimCircuit is the withdrawal dual of TransferCircuit: the spend side
// is identical, but the revealed public amount leaves the pool and a
// single shielded change coin is produced. Binding the amount as a public
// input ties the withdrawal to what was proven conserved.
type ReclaimCircuit struct {
	SenderK [2]frontend.Variable `gnark:",public"`
	Root    [2]frontend.Variable `gnark:",public"`
	Sn      [2]frontend.Variable `gnark:",public"`
	NewCm   frontend.Variable    `gnark:",public"`
	Amount  frontend.Variable    `gnark:",public"`

	Sk       [2]frontend.Variable
	OldValue [2]frontend.Variable
	Rho      [2]frontend.Variable
	R        [2]frontend.Variable
	OldS     [2]frontend.Variable
	Siblings [2][]frontend.Variable
	PathBits [2][]frontend.Variable

	NewValue frontend.Variable
	NewK     frontend.Variable
	NewS     frontend.Variable

	prfDomain    *big.Int
	leafDomain   *big.Int
	commitDomain *big.Int
}

func NewReclaimCircuit(p *crypto.Params, depth int) *ReclaimCircuit {
	cc := &ReclaimCircuit{
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

func (cc *ReclaimCircuit) Define(api frontend.API) error {
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

	api.ToBinary(cc.Amount, 64)
	api.ToBinary(cc.NewValue, 64)

	h.Reset()
	h.Write(cc.commitDomain, cc.NewValue, cc.NewK, cc.NewS)
	api.AssertIsEqual(cc.NewCm, h.Sum())

	api.AssertIsEqual(
		api.Add(cc.OldValue[0], cc.OldValue[1]),
		api.Add(cc.Amount, cc.NewValue),
	)
	return nil
}
