package types

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/shielded/utils"
)

func randSender() SenderSlot {
	return SenderSlot{K: utils.RandField(), Sn: utils.RandField(), Root: utils.RandField()}
}

func randReceiver() ReceiverSlot {
	r := ReceiverSlot{K: utils.RandField(), Cm: utils.RandField()}
	copy(r.Cipher[:], utils.RandBytes(16))
	copy(r.EphemeralPk[:], utils.RandBytes(32))
	return r
}

func TestMintPayloadCodec(t *testing.T) {
	m := &MintPayload{Amount: 1234, Cm: utils.RandField(), K: utils.RandField(), S: utils.RandField()}
	bz := m.Encode()
	require.Len(t, bz, MintPayloadSize)

	got, err := DecodeMintPayload(bz)
	require.NoError(t, err)
	require.Equal(t, m, got)

	_, err = DecodeMintPayload(bz[:len(bz)-1])
	require.ErrorIs(t, err, ErrMalformedEncoding)

	// non-canonical commitment bytes
	bad := append([]byte(nil), bz...)
	copy(bad[8:40], bytes.Repeat([]byte{0xff}, 32))
	_, err = DecodeMintPayload(bad)
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestTransferPayloadCodec(t *testing.T) {
	tx := &TransferPayload{
		Senders:   [2]SenderSlot{randSender(), randSender()},
		Receivers: [2]ReceiverSlot{randReceiver(), randReceiver()},
		Proof:     utils.RandBytes(192),
	}
	bz := tx.Encode()
	got, err := DecodeTransferPayload(bz)
	require.NoError(t, err)
	require.Equal(t, tx, got)

	_, err = DecodeTransferPayload(bz[:2*SenderSlotSize])
	require.ErrorIs(t, err, ErrMalformedEncoding)

	// mismatched proof length prefix
	bad := append([]byte(nil), bz...)
	bad[len(bad)-1] ^= 0x01
	bad = bad[:len(bad)-1]
	_, err = DecodeTransferPayload(bad)
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestTransferPayloadRejectsNonCanonicalRoot(t *testing.T) {
	tx := &TransferPayload{
		Senders:   [2]SenderSlot{randSender(), randSender()},
		Receivers: [2]ReceiverSlot{randReceiver(), randReceiver()},
		Proof:     utils.RandBytes(192),
	}
	bz := tx.Encode()
	copy(bz[64:96], bytes.Repeat([]byte{0xff}, 32)) // first sender root
	_, err := DecodeTransferPayload(bz)
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestReclaimPayloadCodec(t *testing.T) {
	rx := &ReclaimPayload{
		Amount:   999,
		Senders:  [2]SenderSlot{randSender(), randSender()},
		Receiver: randReceiver(),
		Proof:    utils.RandBytes(192),
	}
	bz := rx.Encode()
	got, err := DecodeReclaimPayload(bz)
	require.NoError(t, err)
	require.Equal(t, rx, got)

	_, err = DecodeReclaimPayload(bz[:8])
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestProofSizeBound(t *testing.T) {
	tx := &TransferPayload{
		Senders:   [2]SenderSlot{randSender(), randSender()},
		Receivers: [2]ReceiverSlot{randReceiver(), randReceiver()},
		Proof:     utils.RandBytes(maxProofSize + 1),
	}
	_, err := DecodeTransferPayload(tx.Encode())
	require.ErrorIs(t, err, ErrMalformedEncoding)
}
