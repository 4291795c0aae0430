package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/types"
)

func newTestWallet(t *testing.T) *Wallet {
	t.Helper()
	w, err := NewWallet(crypto.DefaultParams())
	require.NoError(t, err)
	return w
}

func TestWalletAddress(t *testing.T) {
	w := newTestWallet(t)
	pk, recvPk, err := types.DecodeAddress(w.Address())
	require.NoError(t, err)
	require.Equal(t, w.PublicKey(), pk)
	require.Equal(t, w.ReceivingPk(), recvPk)
}

func TestBuildMintTracksCoin(t *testing.T) {
	w := newTestWallet(t)
	c, m := w.BuildMint(120)

	require.Equal(t, uint64(120), m.Amount)
	require.Equal(t, c.Cm, m.Cm)
	require.True(t, c.Check(crypto.DefaultParams()))
	require.Equal(t, uint64(120), w.Balance())

	w.DelCoin(c.Cm)
	require.Equal(t, uint64(0), w.Balance())
}

func TestSealOpenCoins(t *testing.T) {
	w := newTestWallet(t)
	c1, _ := w.BuildMint(10)
	c2, _ := w.BuildMint(20)

	blob, err := w.SealCoins()
	require.NoError(t, err)

	// a fresh wallet with a different sk cannot open the blob
	other := newTestWallet(t)
	require.Error(t, other.OpenCoins(blob))

	w.DelCoin(c1.Cm)
	w.DelCoin(c2.Cm)
	require.Equal(t, uint64(0), w.Balance())

	require.NoError(t, w.OpenCoins(blob))
	require.Equal(t, uint64(30), w.Balance())
	coins := w.Coins()
	require.Len(t, coins, 2)
	require.Equal(t, c1.Cm, coins[0].Cm)
	require.Equal(t, c2.Cm, coins[1].Cm)
}

func TestOpenCoinsRejectsTruncatedBlob(t *testing.T) {
	w := newTestWallet(t)
	require.Error(t, w.OpenCoins([]byte{1, 2, 3}))
}

func TestAdoptReceivedRoundTrip(t *testing.T) {
	p := crypto.DefaultParams()
	sender := newTestWallet(t)
	receiver := newTestWallet(t)

	slot, _, info, err := sender.outputFor(receiver.Address(), 75)
	require.NoError(t, err)

	v, err := receiver.TryDecryptValue(types.CiphertextEntry{
		EphemeralPk: slot.EphemeralPk,
		Cipher:      slot.Cipher,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(75), v)

	c := receiver.AdoptReceived(info, v)
	require.Equal(t, slot.Cm, c.Cm)
	require.True(t, c.Check(p))

	// a bystander cannot learn the value
	eve := newTestWallet(t)
	got, err := eve.TryDecryptValue(types.CiphertextEntry{
		EphemeralPk: slot.EphemeralPk,
		Cipher:      slot.Cipher,
	})
	if err == nil {
		require.NotEqual(t, uint64(75), got)
	}
}
