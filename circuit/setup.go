package circuit

import (
	"bytes"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/kysee/shielded/crypto"
)

// CompileTransfer compiles the transfer circuit for the pinned parameters
// and Merkle depth.
func CompileTransfer(p *crypto.Params, depth int) (constraint.ConstraintSystem, error) {
	return frontend.Compile(ecc.BLS12_381.ScalarField(), r1cs.NewBuilder, NewTransferCircuit(p, depth))
}

// CompileReclaim compiles the reclaim circuit.
func CompileReclaim(p *crypto.Params, depth int) (constraint.ConstraintSystem, error) {
	return frontend.Compile(ecc.BLS12_381.ScalarField(), r1cs.NewBuilder, NewReclaimCircuit(p, depth))
}

// Setup runs the Groth16 setup for a compiled circuit. In production the
// keys come from the trusted-setup tool; this is the test/dev path.
func Setup(ccs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	return groth16.Setup(ccs)
}

// MarshalKey serializes a proving or verifying key.
func MarshalKey(k io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := k.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalVerifyingKey parses a serialized Groth16 verifying key blob.
func UnmarshalVerifyingKey(bz []byte) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BLS12_381)
	if _, err := vk.ReadFrom(bytes.NewReader(bz)); err != nil {
		return nil, fmt.Errorf("verifying key: %w", err)
	}
	return vk, nil
}

// UnmarshalProvingKey parses a serialized Groth16 proving key blob.
func UnmarshalProvingKey(bz []byte) (groth16.ProvingKey, error) {
	pk := groth16.NewProvingKey(ecc.BLS12_381)
	if _, err := pk.ReadFrom(bytes.NewReader(bz)); err != nil {
		return nil, fmt.Errorf("proving key: %w", err)
	}
	return pk, nil
}
