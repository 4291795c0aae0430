package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/utils"
)

func TestNewCoinConsistency(t *testing.T) {
	p := crypto.DefaultParams()
	sk := utils.RandField()
	c := NewCoin(p, sk, 500)

	require.True(t, c.Check(p))
	require.Equal(t, crypto.PublicKey(&p.Hash, sk), c.Pk)
	require.Equal(t, crypto.VoidNumber(&p.Hash, sk, c.Rho), c.Sn)
}

func TestAdoptCoinMatchesOriginal(t *testing.T) {
	p := crypto.DefaultParams()
	sk := utils.RandField()
	pk := crypto.PublicKey(&p.Hash, sk)

	// a sender builds the coin against the receiver's pseudonym
	sent := NewCoinFor(p, pk, 250)
	require.Equal(t, [32]byte{}, sent.Sn)

	// the receiver rebuilds it with its own sk and the decrypted value
	adopted := AdoptCoin(p, sk, sent.PublicInfo(), 250)
	require.Equal(t, sent.Cm, adopted.Cm)
	require.Equal(t, sent.K, adopted.K)
	require.NotEqual(t, [32]byte{}, adopted.Sn)
	require.True(t, adopted.Check(p))
}

func TestCoinCheckRejectsTamperedValue(t *testing.T) {
	p := crypto.DefaultParams()
	c := NewCoin(p, utils.RandField(), 10)
	c.Value = 11
	require.False(t, c.Check(p))
}
