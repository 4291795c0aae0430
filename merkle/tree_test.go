package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/types"
	"github.com/kysee/shielded/utils"
)

var testLeafDomain = crypto.DefaultParams().Hash.LeafDomain

func TestEmptyTreeRoot(t *testing.T) {
	a := NewTree(4, testLeafDomain)
	b := NewTree(4, testLeafDomain)
	require.Equal(t, a.Root(), b.Root())
	require.Equal(t, 0, a.Size())
	require.Equal(t, 16, a.Capacity())
}

func TestAppendChangesRoot(t *testing.T) {
	tr := NewTree(4, testLeafDomain)
	prev := tr.Root()
	for i := 0; i < tr.Capacity(); i++ {
		root, err := tr.Append(utils.RandField())
		require.NoError(t, err)
		require.NotEqual(t, prev, root)
		prev = root
	}
	_, err := tr.Append(utils.RandField())
	require.ErrorIs(t, err, types.ErrShardFull)
}

func TestProveVerify(t *testing.T) {
	tr := NewTree(4, testLeafDomain)
	leaves := make([][32]byte, 7)
	for i := range leaves {
		leaves[i] = utils.RandField()
		_, err := tr.Append(leaves[i])
		require.NoError(t, err)
	}
	for i, leaf := range leaves {
		p, err := tr.Prove(i)
		require.NoError(t, err)
		require.True(t, VerifyPath(testLeafDomain, leaf, p, tr.Root()))

		// the path does not verify for a different leaf
		require.False(t, VerifyPath(testLeafDomain, utils.RandField(), p, tr.Root()))
	}
	_, err := tr.Prove(7)
	require.Error(t, err)
}

func TestPathInvalidAfterLaterAppends(t *testing.T) {
	tr := NewTree(4, testLeafDomain)
	leaf := utils.RandField()
	_, err := tr.Append(leaf)
	require.NoError(t, err)
	p, err := tr.Prove(0)
	require.NoError(t, err)
	oldRoot := tr.Root()

	_, err = tr.Append(utils.RandField())
	require.NoError(t, err)

	// old path still verifies against the old root, not the new one
	require.True(t, VerifyPath(testLeafDomain, leaf, p, oldRoot))
	require.False(t, VerifyPath(testLeafDomain, leaf, p, tr.Root()))
}

func TestContains(t *testing.T) {
	tr := NewTree(4, testLeafDomain)
	leaf := utils.RandField()
	require.False(t, tr.Contains(leaf))
	_, err := tr.Append(leaf)
	require.NoError(t, err)
	require.True(t, tr.Contains(leaf))
}
