// Package merkle implements the fixed-depth incremental accumulator used
// by every shard, plus the 256-way shard table routing commitments by
// their first byte.
package merkle

import (
	"bytes"
	"fmt"

	"github.com/kysee/shielded/types"
	"github.com/kysee/shielded/utils"
)

// Tree is an append-only binary MiMC hash tree of fixed depth. Leaves are
// hashed with a domain-separated leaf hash; interior nodes use the plain
// two-to-one compression H(l, r). Absent subtrees hash as the all-zero
// field element, so the root is fully determined by the leaf sequence.
//
// The depth is fixed at construction because membership paths feed a
// circuit whose public layout cannot vary per proof.
type Tree struct {
	depth      int
	leafDomain [32]byte
	zeros      [][32]byte
	leaves     [][32]byte
	root       [32]byte
}

// Path is a membership proof: the sibling at each level, bottom up, plus
// the leaf index whose bits give the left/right directions.
type Path struct {
	Siblings [][32]byte
	Index    int
}

func NewTree(depth int, leafDomain [32]byte) *Tree {
	zeros := make([][32]byte, depth+1)
	for d := 0; d < depth; d++ {
		zeros[d+1] = compress(zeros[d], zeros[d])
	}
	t := &Tree{
		depth:      depth,
		leafDomain: leafDomain,
		zeros:      zeros,
	}
	t.root = zeros[depth]
	return t
}

func (t *Tree) Depth() int    { return t.depth }
func (t *Tree) Size() int     { return len(t.leaves) }
func (t *Tree) Capacity() int { return 1 << t.depth }

// Root returns the current accumulator root.
func (t *Tree) Root() [32]byte { return t.root }

// Leaves returns the appended leaf sequence in order.
func (t *Tree) Leaves() [][32]byte {
	out := make([][32]byte, len(t.leaves))
	copy(out, t.leaves)
	return out
}

// Contains scans the leaf list for an exact match. Shard size is bounded
// by construction, so the linear scan stays cheap.
func (t *Tree) Contains(leaf [32]byte) bool {
	for _, lf := range t.leaves {
		if bytes.Equal(lf[:], leaf[:]) {
			return true
		}
	}
	return false
}

// Append adds a leaf and returns the new root. Appending is the only
// mutation; leaves are never removed or reordered.
func (t *Tree) Append(leaf [32]byte) ([32]byte, error) {
	if len(t.leaves) >= t.Capacity() {
		return t.root, types.ErrShardFull
	}
	t.leaves = append(t.leaves, leaf)
	t.root = t.levels(nil)
	return t.root, nil
}

// Prove builds the membership path for the leaf at index.
func (t *Tree) Prove(index int) (*Path, error) {
	if index < 0 || index >= len(t.leaves) {
		return nil, fmt.Errorf("merkle: leaf index %d out of range", index)
	}
	p := &Path{
		Siblings: make([][32]byte, t.depth),
		Index:    index,
	}
	t.levels(p)
	return p, nil
}

// levels recomputes the tree bottom-up. When p is non-nil, the sibling of
// the tracked index is recorded at every level.
func (t *Tree) levels(p *Path) [32]byte {
	level := make([][32]byte, len(t.leaves))
	for i, lf := range t.leaves {
		level[i] = t.leafHash(lf)
	}
	idx := 0
	if p != nil {
		idx = p.Index
	}
	for d := 0; d < t.depth; d++ {
		if p != nil {
			sib := t.zeros[d]
			if idx^1 < len(level) {
				sib = level[idx^1]
			}
			p.Siblings[d] = sib
			idx >>= 1
		}
		next := make([][32]byte, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := t.zeros[d]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next[i/2] = compress(level[i], right)
		}
		level = next
	}
	if len(level) == 0 {
		return t.zeros[t.depth]
	}
	return level[0]
}

// VerifyPath recomputes the root from a leaf and its path and compares.
func VerifyPath(leafDomain [32]byte, leaf [32]byte, p *Path, root [32]byte) bool {
	cur := utils.MiMCSum32(leafDomain[:], leaf[:])
	idx := p.Index
	for _, sib := range p.Siblings {
		if idx&1 == 1 {
			cur = compress(sib, cur)
		} else {
			cur = compress(cur, sib)
		}
		idx >>= 1
	}
	return bytes.Equal(cur[:], root[:])
}

func (t *Tree) leafHash(leaf [32]byte) [32]byte {
	return utils.MiMCSum32(t.leafDomain[:], leaf[:])
}

func compress(l, r [32]byte) [32]byte {
	return utils.MiMCSum32(l[:], r[:])
}
