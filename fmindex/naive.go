package fmindex

import "sync"

// NaiveIndex is a brute-force reference implementation of Index, useful for
// tests and small references. It performs O(len(pac)) substring scans per
// extension step rather than true backward BWT search, so it is not meant
// for genome-scale references; production callers should supply an Index
// backed by a real suffix array / BWT instead.
type NaiveIndex struct {
	pac  []byte // forward strand followed by its reverse complement, codes 0-3 and 4 for ambiguous
	lPac uint64

	mu sync.RWMutex
	sa []uint64 // synthetic suffix-array slots handed out by Smem1/occurrences
}

// NewNaiveIndex builds a NaiveIndex over pac, the concatenation of the
// forward-strand packed reference and its reverse complement (as produced by
// refseq.Reference.Pac). lPac is the forward-strand length.
func NewNaiveIndex(pac []byte, lPac uint64) *NaiveIndex {
	return &NaiveIndex{pac: pac, lPac: lPac}
}

// Smem1 implements Index.Smem1 by repeatedly extending the match starting at
// cursor one base at a time, stopping at the longest extension whose
// occurrence count is still >= minIntv (mirroring bwt_smem1's min_intv
// early-stop), or at maxLen, or at the first ambiguous base.
func (idx *NaiveIndex) Smem1(query []byte, cursor int, maxLen int, minIntv uint64, dst []Interval) (int, []Interval) {
	out := dst[:0]
	n := len(query)
	if cursor >= n {
		return cursor, out
	}
	if query[cursor] > 3 {
		return cursor + 1, out
	}
	limit := n
	if maxLen > 0 && cursor+maxLen < limit {
		limit = cursor + maxLen
	}

	best := -1
	var bestPos []uint64
	for end := cursor + 1; end <= limit; end++ {
		if query[end-1] > 3 {
			break
		}
		pos := idx.occurrences(query[cursor:end])
		if len(pos) == 0 {
			break
		}
		if uint64(len(pos)) < minIntv && best >= 0 {
			break
		}
		best = end
		bestPos = pos
	}
	if best < 0 {
		return cursor + 1, out
	}
	k := idx.store(bestPos)
	out = append(out, Interval{
		K:    k,
		L:    k + uint64(len(bestPos)),
		S:    uint64(len(bestPos)),
		QBeg: int32(cursor),
		QEnd: int32(best),
	})
	return best, out
}

// SA implements Index.SA.
func (idx *NaiveIndex) SA(k uint64) uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.sa[k]
}

// PacLen implements Index.PacLen.
func (idx *NaiveIndex) PacLen() uint64 { return idx.lPac }

func (idx *NaiveIndex) occurrences(sub []byte) []uint64 {
	n, m := len(idx.pac), len(sub)
	if m == 0 || m > n {
		return nil
	}
	var pos []uint64
outer:
	for i := 0; i+m <= n; i++ {
		for j := 0; j < m; j++ {
			if idx.pac[i+j] != sub[j] {
				continue outer
			}
		}
		pos = append(pos, uint64(i))
	}
	return pos
}

func (idx *NaiveIndex) store(positions []uint64) uint64 {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	k := uint64(len(idx.sa))
	idx.sa = append(idx.sa, positions...)
	return k
}
