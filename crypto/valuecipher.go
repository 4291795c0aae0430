package crypto

import (
	"crypto/aes"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// The value channel is out-of-band to the proof system: an ephemeral/static
// X25519 exchange, HKDF over SHA-512/256 with a fixed label, and a single
// AES block carrying the little-endian u64 value zero-padded to 16 bytes.
// The commitment, not the ciphertext, is the source of truth for validity.

const (
	// ValueCipherSize is the size of one encrypted value block.
	ValueCipherSize = 16

	kdfLabel = "shielded-value-channel-v1"
)

var errBadValueCipher = errors.New("shielded: value ciphertext padding mismatch")

// ReceivingKey is the static X25519 keypair a receiver publishes so that
// senders can communicate transferred amounts off-proof.
type ReceivingKey struct {
	Sk [32]byte
	Pk [32]byte
}

// NewReceivingKey generates a static X25519 keypair from rng.
func NewReceivingKey(rng io.Reader) (*ReceivingKey, error) {
	var k ReceivingKey
	if _, err := io.ReadFull(rng, k.Sk[:]); err != nil {
		return nil, err
	}
	pk, err := curve25519.X25519(k.Sk[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	copy(k.Pk[:], pk)
	return &k, nil
}

// EncryptValue encrypts value for the holder of receiverPk. It returns the
// sender's ephemeral public key and the 16-byte ciphertext block; both are
// published on the ledger.
func EncryptValue(rng io.Reader, receiverPk [32]byte, value uint64) (ephPk [32]byte, cipher [16]byte, err error) {
	var ephSk [32]byte
	if _, err = io.ReadFull(rng, ephSk[:]); err != nil {
		return
	}
	pk, err := curve25519.X25519(ephSk[:], curve25519.Basepoint)
	if err != nil {
		return
	}
	copy(ephPk[:], pk)

	shared, err := curve25519.X25519(ephSk[:], receiverPk[:])
	if err != nil {
		return
	}

	key, err := deriveValueKey(shared)
	if err != nil {
		return
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return
	}
	var plain [16]byte
	binary.LittleEndian.PutUint64(plain[:8], value)
	block.Encrypt(cipher[:], plain[:])
	return
}

// DecryptValue recovers the transferred value from a ciphertext block and
// the sender's ephemeral public key using the receiver's static secret.
func DecryptValue(cipher [16]byte, senderPk [32]byte, receiverSk [32]byte) (uint64, error) {
	shared, err := curve25519.X25519(receiverSk[:], senderPk[:])
	if err != nil {
		return 0, err
	}
	key, err := deriveValueKey(shared)
	if err != nil {
		return 0, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return 0, err
	}
	var plain [16]byte
	block.Decrypt(plain[:], cipher[:])
	for _, b := range plain[8:] {
		if b != 0 {
			return 0, errBadValueCipher
		}
	}
	return binary.LittleEndian.Uint64(plain[:8]), nil
}

func deriveValueKey(shared []byte) ([]byte, error) {
	kdf := hkdf.New(sha512.New512_256, shared, nil, []byte(kdfLabel))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("value key derivation: %w", err)
	}
	return key, nil
}
