package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/shielded/utils"
)

func TestPRFDeterministic(t *testing.T) {
	p := DefaultParams()
	sk := utils.RandField()
	rho := utils.RandField()
	require.Equal(t, PRF(&p.Hash, sk, rho), PRF(&p.Hash, sk, rho))
}

func TestVoidNumberUniqueness(t *testing.T) {
	p := DefaultParams()
	sk := utils.RandField()
	seen := make(map[[32]byte]bool, 10000)
	for i := 0; i < 10000; i++ {
		sn := VoidNumber(&p.Hash, sk, utils.RandField())
		require.False(t, seen[sn], "void number collision for fixed sk")
		seen[sn] = true
	}
}

func TestPRFKeySeparation(t *testing.T) {
	p := DefaultParams()
	rho := utils.RandField()
	sk1, sk2 := utils.RandField(), utils.RandField()
	require.NotEqual(t, PRF(&p.Hash, sk1, rho), PRF(&p.Hash, sk2, rho))
}

func TestPublicKeyUnlinkableFromVoidNumber(t *testing.T) {
	p := DefaultParams()
	sk := utils.RandField()
	pk := PublicKey(&p.Hash, sk)
	sn := VoidNumber(&p.Hash, sk, utils.RandField())
	require.NotEqual(t, pk, sn)
}
