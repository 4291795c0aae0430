package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/merkle"
	"github.com/kysee/shielded/types"
	"github.com/kysee/shielded/utils"
)

const testDepth = 4

// buildSpends mints two coins into one tree and returns their witnesses.
func buildSpends(t *testing.T, p *crypto.Params, values [2]uint64) [2]*SpendWitness {
	t.Helper()
	tree := merkle.NewTree(testDepth, p.Hash.LeafDomain)

	var spends [2]*SpendWitness
	coins := [2]*types.Coin{}
	for i := 0; i < 2; i++ {
		coins[i] = types.NewCoin(p, utils.RandField(), values[i])
		_, err := tree.Append(coins[i].Cm)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		path, err := tree.Prove(i)
		require.NoError(t, err)
		spends[i] = &SpendWitness{Coin: coins[i], Root: tree.Root(), Path: path}
	}
	return spends
}

func buildOutputs(p *crypto.Params, values [2]uint64) [2]*OutputWitness {
	var outs [2]*OutputWitness
	for j := 0; j < 2; j++ {
		k := crypto.AddressCommitment(&p.Commit, utils.RandField(), utils.RandField(), utils.RandField())
		outs[j] = &OutputWitness{Value: values[j], K: k, S: utils.RandField()}
	}
	return outs
}

func transferAssignment(p *crypto.Params, spends [2]*SpendWitness, outs [2]*OutputWitness) *TransferCircuit {
	cc := NewTransferCircuit(p, testDepth)
	for i := 0; i < 2; i++ {
		assignSpend(cc.spendSlot(i), spends[i])
	}
	for j := 0; j < 2; j++ {
		cc.NewValue[j] = outs[j].Value
		cc.NewK[j] = outs[j].K[:]
		cc.NewS[j] = outs[j].S[:]
		cm := outs[j].Cm(p)
		cc.NewCm[j] = cm[:]
	}
	return cc
}

func TestTransferCircuitSolves(t *testing.T) {
	p := crypto.DefaultParams()
	spends := buildSpends(t, p, [2]uint64{100, 300})
	outs := buildOutputs(p, [2]uint64{150, 250})

	err := test.IsSolved(NewTransferCircuit(p, testDepth), transferAssignment(p, spends, outs), ecc.BLS12_381.ScalarField())
	require.NoError(t, err)
}

func TestTransferCircuitRejectsValueCreation(t *testing.T) {
	p := crypto.DefaultParams()
	spends := buildSpends(t, p, [2]uint64{100, 300})
	outs := buildOutputs(p, [2]uint64{150, 251}) // one unit out of thin air

	err := test.IsSolved(NewTransferCircuit(p, testDepth), transferAssignment(p, spends, outs), ecc.BLS12_381.ScalarField())
	require.Error(t, err)
}

func TestTransferCircuitRejectsWrongVoidNumber(t *testing.T) {
	p := crypto.DefaultParams()
	spends := buildSpends(t, p, [2]uint64{100, 300})
	outs := buildOutputs(p, [2]uint64{200, 200})

	cc := transferAssignment(p, spends, outs)
	sn := utils.RandField()
	cc.Sn[0] = sn[:]
	err := test.IsSolved(NewTransferCircuit(p, testDepth), cc, ecc.BLS12_381.ScalarField())
	require.Error(t, err)
}

func TestTransferCircuitRejectsForeignRoot(t *testing.T) {
	p := crypto.DefaultParams()
	spends := buildSpends(t, p, [2]uint64{100, 300})
	outs := buildOutputs(p, [2]uint64{200, 200})

	cc := transferAssignment(p, spends, outs)
	root := utils.RandField()
	cc.Root[0] = root[:]
	err := test.IsSolved(NewTransferCircuit(p, testDepth), cc, ecc.BLS12_381.ScalarField())
	require.Error(t, err)
}

func TestTransferCircuitRejectsForeignSpendingKey(t *testing.T) {
	p := crypto.DefaultParams()
	spends := buildSpends(t, p, [2]uint64{100, 300})
	outs := buildOutputs(p, [2]uint64{200, 200})

	cc := transferAssignment(p, spends, outs)
	sk := utils.RandField()
	cc.Sk[0] = sk[:]
	err := test.IsSolved(NewTransferCircuit(p, testDepth), cc, ecc.BLS12_381.ScalarField())
	require.Error(t, err)
}
