package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/shielded/types"
	"github.com/kysee/shielded/utils"
)

func TestShardRouting(t *testing.T) {
	st := NewShardTable(4, testLeafDomain)
	cm := utils.RandField()
	_, err := st.Append(cm)
	require.NoError(t, err)

	require.True(t, st.Exists(cm))
	require.Equal(t, cm[0], ShardIndex(cm))
	require.Equal(t, 1, st.Shard(cm[0]).Tree.Size())
}

func TestCheckRootHistory(t *testing.T) {
	st := NewShardTable(4, testLeafDomain)

	// empty roots are valid for every shard
	require.True(t, st.CheckRoot(st.Shard(0).Tree.Root()))

	var cm [32]byte
	copy(cm[1:], utils.RandBytes(20)) // shard 0x00
	root1, err := st.Append(cm)
	require.NoError(t, err)

	var cm2 [32]byte
	copy(cm2[1:], utils.RandBytes(20))
	root2, err := st.Append(cm2)
	require.NoError(t, err)

	// both the historical and the current root are accepted
	require.True(t, st.CheckRoot(root1))
	require.True(t, st.CheckRoot(root2))
	require.False(t, st.CheckRoot(utils.RandField()))
}

func TestHasCapacityCountsBatch(t *testing.T) {
	st := NewShardTable(1, testLeafDomain) // capacity 2 per shard

	var a, b, c [32]byte
	copy(a[1:], utils.RandBytes(8))
	copy(b[1:], utils.RandBytes(8))
	copy(c[1:], utils.RandBytes(8))

	require.NoError(t, st.HasCapacity(a, b))
	require.ErrorIs(t, st.HasCapacity(a, b, c), types.ErrShardFull)

	_, err := st.Append(a)
	require.NoError(t, err)
	require.NoError(t, st.HasCapacity(b))
	require.ErrorIs(t, st.HasCapacity(b, c), types.ErrShardFull)
}

func TestProveFromShard(t *testing.T) {
	st := NewShardTable(4, testLeafDomain)
	cm := utils.RandField()
	_, err := st.Append(cm)
	require.NoError(t, err)

	root, p, err := st.Prove(cm)
	require.NoError(t, err)
	require.True(t, st.CheckRoot(root))
	require.True(t, VerifyPath(testLeafDomain, cm, p, root))

	_, _, err = st.Prove(utils.RandField())
	require.Error(t, err)
}
