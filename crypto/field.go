package crypto

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// ErrMalformedEncoding is returned whenever an untrusted byte buffer does
// not decode to a canonical scalar field element. Inputs triggering it are
// always attacker-controlled; callers reject the whole operation.
var ErrMalformedEncoding = errors.New("shielded: malformed field element encoding")

// FieldSize is the serialized size of a BLS12-381 scalar field element.
const FieldSize = fr.Bytes

// DecodeField parses a 32-byte big-endian buffer into a field element.
// Non-canonical encodings (value >= modulus, wrong length) fail with
// ErrMalformedEncoding instead of being silently reduced.
func DecodeField(bz []byte) (fr.Element, error) {
	var e fr.Element
	if len(bz) != FieldSize {
		return e, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedEncoding, len(bz), FieldSize)
	}
	if err := e.SetBytesCanonical(bz); err != nil {
		return e, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return e, nil
}

// CheckFieldBytes reports whether every given 32-byte buffer is a canonical
// field element encoding.
func CheckFieldBytes(bzs ...[]byte) error {
	for _, bz := range bzs {
		if _, err := DecodeField(bz); err != nil {
			return err
		}
	}
	return nil
}

// U64Field returns the canonical field encoding of a uint64.
func U64Field(v uint64) [32]byte {
	var e fr.Element
	e.SetUint64(v)
	return e.Bytes()
}
