package circuit

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/kysee/shielded/types"
)

// TransferPublicInputs is the public-input vector of a transfer proof,
// assembled by the ledger from submitted payload data.
type TransferPublicInputs struct {
	SenderK [2][32]byte
	Root    [2][32]byte
	Sn      [2][32]byte
	NewCm   [2][32]byte
}

// ReclaimPublicInputs is the public-input vector of a reclaim proof.
type ReclaimPublicInputs struct {
	SenderK [2][32]byte
	Root    [2][32]byte
	Sn      [2][32]byte
	NewCm   [32]byte
	Amount  uint64
}

// VerifyTransfer checks a serialized Groth16 transfer proof against the
// expected public inputs. Any parse or verification failure maps to
// ErrZKPFail; the caller treats the whole operation as invalid.
func VerifyTransfer(vk groth16.VerifyingKey, proofBytes []byte, pub *TransferPublicInputs) error {
	var cc TransferCircuit
	for i := 0; i < 2; i++ {
		cc.SenderK[i] = pub.SenderK[i][:]
		cc.Root[i] = pub.Root[i][:]
		cc.Sn[i] = pub.Sn[i][:]
		cc.NewCm[i] = pub.NewCm[i][:]
	}
	return verify(vk, proofBytes, &cc)
}

// VerifyReclaim checks a serialized Groth16 reclaim proof.
func VerifyReclaim(vk groth16.VerifyingKey, proofBytes []byte, pub *ReclaimPublicInputs) error {
	var cc ReclaimCircuit
	for i := 0; i < 2; i++ {
		cc.SenderK[i] = pub.SenderK[i][:]
		cc.Root[i] = pub.Root[i][:]
		cc.Sn[i] = pub.Sn[i][:]
	}
	cc.NewCm = pub.NewCm[:]
	cc.Amount = pub.Amount
	return verify(vk, proofBytes, &cc)
}

func verify(vk groth16.VerifyingKey, proofBytes []byte, assignment frontend.Circuit) error {
	proof := groth16.NewProof(ecc.BLS12_381)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("%w: proof decode: %v", types.ErrZKPFail, err)
	}
	pubWtn, err := frontend.NewWitness(assignment, ecc.BLS12_381.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("%w: public witness: %v", types.ErrZKPFail, err)
	}
	if err := groth16.Verify(proof, vk, pubWtn); err != nil {
		return fmt.Errorf("%w: %v", types.ErrZKPFail, err)
	}
	return nil
}
