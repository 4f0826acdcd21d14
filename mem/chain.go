package mem

import (
	"github.com/biogo/store/llrb"

	"github.com/Androniki/bwa/fmindex"
)

// chainKey keys the chaining tree by a chain's anchor position (its first
// seed's RBeg), following the predecessor-query pattern
// encoding/bampair.ShardInfo uses llrb.Tree for.
type chainKey struct {
	pos   int64
	chain *Chain
}

func (k chainKey) Compare(other llrb.Comparable) int {
	o := other.(chainKey)
	if k.pos < o.pos {
		return -1
	}
	if k.pos > o.pos {
		return 1
	}
	return 0
}

// BuildChains runs the SMEM iterator over query and folds the resulting
// seeds into colinear chains using an ordered tree keyed by chain anchor
// position, per the predecessor-merge algorithm: each new seed is tested
// against the predecessor chain's last seed and either absorbed, appended,
// or used to start a new chain.
func BuildChains(index fmindex.Index, query []byte, opt *Options) []*Chain {
	if len(query) < opt.MinSeedLen {
		return nil
	}
	ivs := collectSmems(index, query, opt)

	tree := &llrb.Tree{}
	for _, iv := range ivs {
		if iv.S > uint64(opt.MaxOcc) {
			continue
		}
		qbeg := int(iv.QBeg)
		length := iv.Len()
		if length < opt.MinSeedLen {
			continue
		}
		for i := uint64(0); i < iv.S; i++ {
			rbeg := int64(index.SA(iv.K + i))
			seed := Seed{QBeg: qbeg, RBeg: rbeg, Len: length}
			addSeed(tree, seed, opt)
		}
	}

	var chains []*Chain
	tree.Do(func(c llrb.Comparable) bool {
		chains = append(chains, c.(chainKey).chain)
		return false
	})
	return chains
}

// addSeed tests seed against the predecessor chain (by anchor position) and
// either absorbs it, extends that chain, or inserts a new singleton chain.
func addSeed(tree *llrb.Tree, seed Seed, opt *Options) {
	pred := tree.Floor(chainKey{pos: seed.RBeg})
	if pred != nil {
		chain := pred.(chainKey).chain
		if mergeSeed(chain, seed, opt) {
			return
		}
	}
	newChain := &Chain{Seeds: []Seed{seed}, Pos: seed.RBeg}
	tree.Insert(chainKey{pos: seed.RBeg, chain: newChain})
}

// mergeSeed attempts the test-and-merge step of C2 against chain's last
// seed: absorb seed if it's contained in the chain's bounding box, append
// it if it's colinear within the band and gap bounds, or report no match.
func mergeSeed(chain *Chain, seed Seed, opt *Options) bool {
	first := chain.First()
	last := chain.Last()

	if seed.QBeg >= first.QBeg && seed.QEnd() <= last.QEnd() &&
		seed.RBeg >= first.RBeg && seed.REnd() <= last.REnd() {
		// Contained in the chain's existing bounding box: absorb silently.
		return true
	}

	x := seed.QBeg - last.QBeg
	y := seed.RBeg - last.RBeg
	if y >= 0 &&
		absInt(x-int(y)) <= opt.BandWidth &&
		x-last.Len < opt.MaxChainGap &&
		int(y)-last.Len < opt.MaxChainGap {
		chain.Seeds = append(chain.Seeds, seed)
		return true
	}
	return false
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
