package mem

// Read is one query sequence to align: the forward-strand bases encoded
// 0-3 (A/C/G/T), 4 for ambiguous, an optional per-base quality string, and
// a name carried through to the output record.
type Read struct {
	Name string
	Seq  []byte // 0-3/4 encoded, forward strand
	Qual []byte // phred scores, same length as Seq, or nil
}

// Len returns the query length, l_seq in the source's notation.
func (r *Read) Len() int { return len(r.Seq) }

// Seed is one exact-match anchor: qbeg is the 0-based query start, rbeg is
// the 0-based position in the packed reference (carrying strand by being
// >= or < l_pac), len is the exact-match length.
type Seed struct {
	QBeg int
	RBeg int64
	Len  int
}

// QEnd returns the exclusive query end of the seed.
func (s Seed) QEnd() int { return s.QBeg + s.Len }

// REnd returns the exclusive reference end of the seed.
func (s Seed) REnd() int64 { return s.RBeg + int64(s.Len) }

// Chain is an ordered, colinear run of seeds sharing a common diagonal
// band, plus the anchor position used to key it in the chaining tree (the
// first seed's RBeg).
type Chain struct {
	Seeds []Seed
	Pos   int64
}

// First returns the chain's first seed.
func (c *Chain) First() Seed { return c.Seeds[0] }

// Last returns the chain's last seed.
func (c *Chain) Last() Seed { return c.Seeds[len(c.Seeds)-1] }

// QSpan returns the chain's query-axis bounding interval
// [first.QBeg, last.QBeg+last.Len).
func (c *Chain) QSpan() (beg, end int) {
	return c.First().QBeg, c.Last().QEnd()
}

// AlignRegion is one local alignment produced by seed extension: half-open
// query interval [QB, QE) and reference interval [RB, RE), the extension
// score, and the bookkeeping fields used by chain/region filtering and by
// MAPQ estimation.
type AlignRegion struct {
	QB, QE int
	RB, RE int64

	Score int

	// Sub is the second-best overlapping region's score; CSub is the
	// best score among the read's regions from a *different* chain. SubN
	// counts dominated regions whose score is within max(a+b, q+r) of this
	// region's own Score.
	Sub  int
	CSub int
	SubN int

	// Seedcov is the number of query bases covered by chain seeds that
	// fall fully inside [QB,QE) x [RB,RE).
	Seedcov int

	// Secondary is -1 for a primary region, otherwise the index (into the
	// same-read region slice) of the dominating primary.
	Secondary int

	// Chain is the index of the source chain, used to distinguish Sub
	// (any overlapping region) from CSub (a different chain's region)
	// while scoring.
	Chain int
}

// Len returns the longer of the region's query and reference span,
// l = max(qe-qb, re-rb), as used by the MAPQ formula.
func (a *AlignRegion) Len() int {
	ql := a.QE - a.QB
	rl := int(a.RE - a.RB)
	if rl > ql {
		return rl
	}
	return ql
}

// Hit is the output-facing condensation of an AlignRegion plus its
// estimated mapping quality, ready for SAM formatting.
type Hit struct {
	RB, RE int64
	QB, QE int
	Score  int
	Sub    int
	Qual   int
	Flag   int
}
