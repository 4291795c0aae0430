package types

import (
	"encoding/binary"
	"fmt"

	"github.com/kysee/shielded/crypto"
)

// Wire payloads consumed from the host call interface. Layouts are fixed
// except for the trailing proof blob, which is u32-length-prefixed. Every
// decoder fails with ErrMalformedEncoding on truncated buffers or
// non-canonical field encodings; it never panics on attacker input.

const (
	MintPayloadSize  = 8 + 3*32
	SenderSlotSize   = 3 * 32
	ReceiverSlotSize = 2*32 + ValueCipherSize + 32

	// ValueCipherSize mirrors crypto.ValueCipherSize at the wire layer.
	ValueCipherSize = 16

	proofLenSize = 4
	maxProofSize = 1 << 16
)

// MintPayload opens a commitment in public: {amount, cm, k, s}.
type MintPayload struct {
	Amount uint64
	Cm     [32]byte
	K      [32]byte
	S      [32]byte
}

// SenderSlot is one spent-coin slot of a transfer: the revealed address
// commitment, the void number, and the Merkle root the proof was built
// against.
type SenderSlot struct {
	K    [32]byte
	Sn   [32]byte
	Root [32]byte
}

// ReceiverSlot is one created-coin slot: the receiver's address
// commitment, the new coin commitment, the encrypted value block, and the
// sender's ephemeral key for the value channel.
type ReceiverSlot struct {
	K           [32]byte
	Cm          [32]byte
	Cipher      [16]byte
	EphemeralPk [32]byte
}

// TransferPayload is the full private-transfer operation: two spent coins,
// two created coins, one proof.
type TransferPayload struct {
	Senders   [2]SenderSlot
	Receivers [2]ReceiverSlot
	Proof     []byte
}

// ReclaimPayload withdraws a public amount from two spent coins, leaving
// one shielded change coin.
type ReclaimPayload struct {
	Amount   uint64
	Senders  [2]SenderSlot
	Receiver ReceiverSlot
	Proof    []byte
}

// CiphertextEntry is one record of the append-only ciphertext log, indexed
// in the same order as the corresponding receiver commitments.
type CiphertextEntry struct {
	EphemeralPk [32]byte
	Cipher      [16]byte
}

func (m *MintPayload) Encode() []byte {
	bz := make([]byte, MintPayloadSize)
	binary.LittleEndian.PutUint64(bz[0:8], m.Amount)
	copy(bz[8:40], m.Cm[:])
	copy(bz[40:72], m.K[:])
	copy(bz[72:104], m.S[:])
	return bz
}

func DecodeMintPayload(bz []byte) (*MintPayload, error) {
	if len(bz) != MintPayloadSize {
		return nil, fmt.Errorf("%w: mint payload is %d bytes, want %d", ErrMalformedEncoding, len(bz), MintPayloadSize)
	}
	var m MintPayload
	m.Amount = binary.LittleEndian.Uint64(bz[0:8])
	copy(m.Cm[:], bz[8:40])
	copy(m.K[:], bz[40:72])
	copy(m.S[:], bz[72:104])
	if err := crypto.CheckFieldBytes(m.Cm[:], m.K[:], m.S[:]); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SenderSlot) encode(bz []byte) {
	copy(bz[0:32], s.K[:])
	copy(bz[32:64], s.Sn[:])
	copy(bz[64:96], s.Root[:])
}

func decodeSenderSlot(bz []byte) (SenderSlot, error) {
	var s SenderSlot
	copy(s.K[:], bz[0:32])
	copy(s.Sn[:], bz[32:64])
	copy(s.Root[:], bz[64:96])
	if err := crypto.CheckFieldBytes(s.K[:], s.Sn[:], s.Root[:]); err != nil {
		return s, err
	}
	return s, nil
}

func (r *ReceiverSlot) encode(bz []byte) {
	copy(bz[0:32], r.K[:])
	copy(bz[32:64], r.Cm[:])
	copy(bz[64:80], r.Cipher[:])
	copy(bz[80:112], r.EphemeralPk[:])
}

func decodeReceiverSlot(bz []byte) (ReceiverSlot, error) {
	var r ReceiverSlot
	copy(r.K[:], bz[0:32])
	copy(r.Cm[:], bz[32:64])
	copy(r.Cipher[:], bz[64:80])
	copy(r.EphemeralPk[:], bz[80:112])
	// EphemeralPk is an X25519 point, not a field element; only the
	// commitments are canonical-checked here.
	if err := crypto.CheckFieldBytes(r.K[:], r.Cm[:]); err != nil {
		return r, err
	}
	return r, nil
}

func encodeProof(proof []byte) []byte {
	bz := make([]byte, proofLenSize+len(proof))
	binary.LittleEndian.PutUint32(bz[0:4], uint32(len(proof)))
	copy(bz[4:], proof)
	return bz
}

func decodeProof(bz []byte) ([]byte, error) {
	if len(bz) < proofLenSize {
		return nil, fmt.Errorf("%w: truncated proof length", ErrMalformedEncoding)
	}
	n := binary.LittleEndian.Uint32(bz[0:4])
	if n > maxProofSize || int(n) != len(bz)-proofLenSize {
		return nil, fmt.Errorf("%w: proof length %d does not match buffer", ErrMalformedEncoding, n)
	}
	proof := make([]byte, n)
	copy(proof, bz[4:])
	return proof, nil
}

func (t *TransferPayload) Encode() []byte {
	bz := make([]byte, 2*SenderSlotSize+2*ReceiverSlotSize)
	t.Senders[0].encode(bz[0:])
	t.Senders[1].encode(bz[SenderSlotSize:])
	off := 2 * SenderSlotSize
	t.Receivers[0].encode(bz[off:])
	t.Receivers[1].encode(bz[off+ReceiverSlotSize:])
	return append(bz, encodeProof(t.Proof)...)
}

func DecodeTransferPayload(bz []byte) (*TransferPayload, error) {
	fixed := 2*SenderSlotSize + 2*ReceiverSlotSize
	if len(bz) < fixed+proofLenSize {
		return nil, fmt.Errorf("%w: transfer payload is %d bytes", ErrMalformedEncoding, len(bz))
	}
	var t TransferPayload
	var err error
	for i := 0; i < 2; i++ {
		if t.Senders[i], err = decodeSenderSlot(bz[i*SenderSlotSize:]); err != nil {
			return nil, err
		}
	}
	off := 2 * SenderSlotSize
	for i := 0; i < 2; i++ {
		if t.Receivers[i], err = decodeReceiverSlot(bz[off+i*ReceiverSlotSize:]); err != nil {
			return nil, err
		}
	}
	if t.Proof, err = decodeProof(bz[fixed:]); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ReclaimPayload) Encode() []byte {
	bz := make([]byte, 8+2*SenderSlotSize+ReceiverSlotSize)
	binary.LittleEndian.PutUint64(bz[0:8], r.Amount)
	r.Senders[0].encode(bz[8:])
	r.Senders[1].encode(bz[8+SenderSlotSize:])
	r.Receiver.encode(bz[8+2*SenderSlotSize:])
	return append(bz, encodeProof(r.Proof)...)
}

func DecodeReclaimPayload(bz []byte) (*ReclaimPayload, error) {
	fixed := 8 + 2*SenderSlotSize + ReceiverSlotSize
	if len(bz) < fixed+proofLenSize {
		return nil, fmt.Errorf("%w: reclaim payload is %d bytes", ErrMalformedEncoding, len(bz))
	}
	var r ReclaimPayload
	var err error
	r.Amount = binary.LittleEndian.Uint64(bz[0:8])
	for i := 0; i < 2; i++ {
		if r.Senders[i], err = decodeSenderSlot(bz[8+i*SenderSlotSize:]); err != nil {
			return nil, err
		}
	}
	if r.Receiver, err = decodeReceiverSlot(bz[8+2*SenderSlotSize:]); err != nil {
		return nil, err
	}
	if r.Proof, err = decodeProof(bz[fixed:]); err != nil {
		return nil, err
	}
	return &r, nil
}
