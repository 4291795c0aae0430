package merkle

import (
	"fmt"

	"github.com/kysee/shielded/types"
)

// ShardCount partitions commitment space by the first commitment byte.
const ShardCount = 256

// Shard is one partition of the global accumulator: an ordered commitment
// sequence, its tree, and the append-only history of roots it has taken.
type Shard struct {
	Tree  *Tree
	Roots [][32]byte
}

// ShardTable routes commitments to shards and answers root-recency and
// membership queries for the ledger.
//
// The shard index is the raw first byte of the commitment. The first byte
// of a field element is not uniformly distributed, so neither is the
// routing; proofs are generated against this exact rule, so it must not
// change.
type ShardTable struct {
	shards  [ShardCount]*Shard
	rootSet map[[32]byte]struct{}
}

func NewShardTable(depth int, leafDomain [32]byte) *ShardTable {
	st := &ShardTable{
		rootSet: make(map[[32]byte]struct{}),
	}
	for i := range st.shards {
		t := NewTree(depth, leafDomain)
		st.shards[i] = &Shard{
			Tree:  t,
			Roots: [][32]byte{t.Root()},
		}
		st.rootSet[t.Root()] = struct{}{}
	}
	return st
}

// ShardIndex derives the shard for a commitment.
func ShardIndex(cm [32]byte) byte { return cm[0] }

// Shard exposes one partition, for queries and persistence.
func (st *ShardTable) Shard(idx byte) *Shard { return st.shards[idx] }

// Append routes cm to its shard, appends it, and records the new root in
// the shard history.
func (st *ShardTable) Append(cm [32]byte) ([32]byte, error) {
	sh := st.shards[ShardIndex(cm)]
	root, err := sh.Tree.Append(cm)
	if err != nil {
		return root, err
	}
	sh.Roots = append(sh.Roots, root)
	st.rootSet[root] = struct{}{}
	return root, nil
}

// Exists reports whether cm was already accepted into its shard.
func (st *ShardTable) Exists(cm [32]byte) bool {
	return st.shards[ShardIndex(cm)].Tree.Contains(cm)
}

// CheckRoot reports whether root is a current or historical root of some
// shard. Accepting historical roots lets proofs built slightly behind the
// tip still succeed; replay is closed by void-number uniqueness alone.
func (st *ShardTable) CheckRoot(root [32]byte) bool {
	_, ok := st.rootSet[root]
	return ok
}

// HasCapacity verifies the shards of all given commitments can take one
// more leaf each, counting duplicates within the batch.
func (st *ShardTable) HasCapacity(cms ...[32]byte) error {
	pending := make(map[byte]int, len(cms))
	for _, cm := range cms {
		idx := ShardIndex(cm)
		t := st.shards[idx].Tree
		if t.Size()+pending[idx] >= t.Capacity() {
			return types.ErrShardFull
		}
		pending[idx]++
	}
	return nil
}

// Prove locates cm in its shard and returns the membership path together
// with the shard's current root.
func (st *ShardTable) Prove(cm [32]byte) (root [32]byte, p *Path, err error) {
	sh := st.shards[ShardIndex(cm)]
	leaves := sh.Tree.Leaves()
	for i, lf := range leaves {
		if lf == cm {
			p, err = sh.Tree.Prove(i)
			if err != nil {
				return
			}
			root = sh.Tree.Root()
			return
		}
	}
	err = fmt.Errorf("merkle: commitment not found in shard %d", ShardIndex(cm))
	return
}
