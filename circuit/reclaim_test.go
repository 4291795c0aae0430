package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/utils"
)

func reclaimAssignment(p *crypto.Params, spends [2]*SpendWitness, amount uint64, change *OutputWitness) *ReclaimCircuit {
	cc := NewReclaimCircuit(p, testDepth)
	for i := 0; i < 2; i++ {
		assignSpend(cc.spendSlot(i), spends[i])
	}
	cc.Amount = amount
	cc.NewValue = change.Value
	cc.NewK = change.K[:]
	cc.NewS = change.S[:]
	cm := change.Cm(p)
	cc.NewCm = cm[:]
	return cc
}

func newChange(p *crypto.Params, value uint64) *OutputWitness {
	k := crypto.AddressCommitment(&p.Commit, utils.RandField(), utils.RandField(), utils.RandField())
	return &OutputWitness{Value: value, K: k, S: utils.RandField()}
}

func TestReclaimCircuitSolves(t *testing.T) {
	p := crypto.DefaultParams()
	spends := buildSpends(t, p, [2]uint64{100, 300})

	cc := reclaimAssignment(p, spends, 150, newChange(p, 250))
	err := test.IsSolved(NewReclaimCircuit(p, testDepth), cc, ecc.BLS12_381.ScalarField())
	require.NoError(t, err)
}

func TestReclaimCircuitRejectsOverdraw(t *testing.T) {
	p := crypto.DefaultParams()
	spends := buildSpends(t, p, [2]uint64{100, 300})

	// amount + change must equal the spent total
	cc := reclaimAssignment(p, spends, 200, newChange(p, 250))
	err := test.IsSolved(NewReclaimCircuit(p, testDepth), cc, ecc.BLS12_381.ScalarField())
	require.Error(t, err)
}

func TestReclaimCircuitRejectsWideValue(t *testing.T) {
	p := crypto.DefaultParams()
	spends := buildSpends(t, p, [2]uint64{100, 300})

	// a change of -100 balances the sum mod r (100+300 = 500-100) but must
	// fail the 64-bit range check
	cc := reclaimAssignment(p, spends, 500, newChange(p, 250))
	cc.NewValue = "52435875175126190479447740508185965837690552500527637822603658699938581184413"
	err := test.IsSolved(NewReclaimCircuit(p, testDepth), cc, ecc.BLS12_381.ScalarField())
	require.Error(t, err)
}
