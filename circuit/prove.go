package circuit

import (
	"bytes"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/merkle"
	"github.com/kysee/shielded/types"
)

// SpendWitness is the full witness for one coin being spent: the coin
// itself plus the membership path and the root it was proven against.
type SpendWitness struct {
	Coin *types.Coin
	Root [32]byte
	Path *merkle.Path
}

// OutputWitness describes one coin being created. The builder knows the
// receiver's address commitment and the commitment randomness but not the
// receiver's spending key.
type OutputWitness struct {
	Value uint64
	K     [32]byte
	S     [32]byte
}

// Cm computes the created coin's commitment.
func (o *OutputWitness) Cm(p *crypto.Params) [32]byte {
	return crypto.ValueCommitment(&p.Commit, o.Value, o.K, o.S)
}

// ProveTransfer produces a serialized Groth16 transfer proof.
func ProveTransfer(
	p *crypto.Params, ccs constraint.ConstraintSystem, pk groth16.ProvingKey,
	spends [2]*SpendWitness, outs [2]*OutputWitness,
) ([]byte, error) {
	depth := len(spends[0].Path.Siblings)
	cc := NewTransferCircuit(p, depth)
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
	return prove(ccs, pk, cc)
}

// ProveReclaim produces a serialized Groth16 reclaim proof for the public
// withdrawal amount and the shielded change output.
func ProveReclaim(
	p *crypto.Params, ccs constraint.ConstraintSystem, pk groth16.ProvingKey,
	spends [2]*SpendWitness, amount uint64, change *OutputWitness,
) ([]byte, error) {
	depth := len(spends[0].Path.Siblings)
	cc := NewReclaimCircuit(p, depth)
	for i := 0; i < 2; i++ {
		assignSpend(cc.spendSlot(i), spends[i])
	}
	cc.Amount = amount
	cc.NewValue = change.Value
	cc.NewK = change.K[:]
	cc.NewS = change.S[:]
	cm := change.Cm(p)
	cc.NewCm = cm[:]
	return prove(ccs, pk, cc)
}

// spendSlot views one sender slot of the circuit for assignment.
type spendSlot struct {
	k, root, sn, sk, value, rho, r, s *frontend.Variable
	siblings, pathBits                []frontend.Variable
}

func (cc *TransferCircuit) spendSlot(i int) *spendSlot {
	return &spendSlot{
		k: &cc.SenderK[i], root: &cc.Root[i], sn: &cc.Sn[i],
		sk: &cc.Sk[i], value: &cc.OldValue[i], rho: &cc.Rho[i],
		r: &cc.R[i], s: &cc.OldS[i],
		siblings: cc.Siblings[i], pathBits: cc.PathBits[i],
	}
}

func (cc *ReclaimCircuit) spendSlot(i int) *spendSlot {
	return &spendSlot{
		k: &cc.SenderK[i], root: &cc.Root[i], sn: &cc.Sn[i],
		sk: &cc.Sk[i], value: &cc.OldValue[i], rho: &cc.Rho[i],
		r: &cc.R[i], s: &cc.OldS[i],
		siblings: cc.Siblings[i], pathBits: cc.PathBits[i],
	}
}

func assignSpend(slot *spendSlot, sw *SpendWitness) {
	c := sw.Coin
	*slot.k = c.K[:]
	*slot.root = sw.Root[:]
	*slot.sn = c.Sn[:]
	*slot.sk = c.Sk[:]
	*slot.value = c.Value
	*slot.rho = c.Rho[:]
	*slot.r = c.R[:]
	*slot.s = c.S[:]
	for d := 0; d < len(slot.siblings); d++ {
		slot.siblings[d] = sw.Path.Siblings[d][:]
		slot.pathBits[d] = (sw.Path.Index >> d) & 1
	}
}

func prove(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, assignment frontend.Circuit) ([]byte, error) {
	wtn, err := frontend.NewWitness(assignment, ecc.BLS12_381.ScalarField())
	if err != nil {
		return nil, err
	}
	proof, err := groth16.Prove(ccs, pk, wtn)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	if _, err := proof.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
