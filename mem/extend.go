package mem

import (
	"github.com/Androniki/bwa/ksw"
	"github.com/Androniki/bwa/refseq"
)

// minSeedOverlap is the redundancy threshold used when deciding whether to
// skip a chain seed that's already covered by the previous seed's extended
// region: seeds overlapping the previous one by 7bp or more on both axes
// contribute nothing new.
const minSeedOverlap = 7

// ExtendChain turns one chain into zero, one, or several alignment regions
// by banded left/right extension from each seed that isn't already
// redundant with the region just produced, per C4.
func ExtendChain(chain *Chain, query []byte, ref refseq.Reference, aligner ksw.Aligner, opt *Options) []AlignRegion {
	if len(chain.Seeds) == 0 {
		return nil
	}

	rmax0, rmax1, ok := chainRefWindow(chain, len(query), 2*ref.PacLen(), opt)
	if !ok {
		return nil
	}
	refSlice, truncated := ref.GetSeq(rmax0, rmax1)
	if truncated {
		// Requested window straddled a boundary; abort extension for this
		// chain rather than extend against a short slice.
		return nil
	}

	mat := opt.Matrix()
	var regions []AlignRegion
	var prev *AlignRegion

	for _, s := range chain.Seeds {
		if prev != nil && redundant(*prev, s, minSeedOverlap) {
			continue
		}

		qb, qe := s.QBeg, s.QEnd()
		rb, re := s.RBeg, s.REnd()
		score := s.Len * int(opt.A)

		if s.QBeg > 0 {
			qPrefix := reverseBytes(query[:s.QBeg])
			rLocalBeg := s.RBeg - int64(rmax0)
			rPrefix := reverseBytes(refSlice[:rLocalBeg])
			sc, qle, tle := aligner.Extend(qPrefix, rPrefix, mat, opt.GapOpen, opt.GapExt, opt.BandWidth, score)
			qb = s.QBeg - qle
			rb = s.RBeg - int64(tle)
			score = sc
		}

		if s.QEnd() < len(query) {
			qSuffix := query[s.QEnd():]
			rLocalEnd := s.REnd() - int64(rmax0)
			rSuffix := refSlice[rLocalEnd:]
			sc, qle, tle := aligner.Extend(qSuffix, rSuffix, mat, opt.GapOpen, opt.GapExt, opt.BandWidth, score)
			qe = s.QEnd() + qle
			re = s.REnd() + int64(tle)
			score = sc
		}

		region := AlignRegion{
			QB: qb, QE: qe,
			RB: rb, RE: re,
			Score: score,
		}
		region.Seedcov = seedCoverage(chain, region)
		regions = append(regions, region)
		prev = &region
	}
	return regions
}

// chainRefWindow computes the reference window a chain's extension is
// allowed to use: each seed expanded by the maximum-gap bound on both
// sides, clamped to the packed reference's extent.
func chainRefWindow(chain *Chain, qlen int, lPacFull uint64, opt *Options) (rmax0, rmax1 uint64, ok bool) {
	gap := int64(opt.MaxGap(qlen))
	first, last := chain.First(), chain.Last()

	r0 := first.RBeg - gap
	if r0 < 0 {
		r0 = 0
	}
	r1 := last.REnd() + gap
	if uint64(r1) > lPacFull {
		r1 = int64(lPacFull)
	}
	if r1 <= r0 {
		return 0, 0, false
	}
	return uint64(r0), uint64(r1), true
}

// redundant reports whether seed is already covered by prev's produced
// region: skip it only when it overlaps prev by at least minOverlap bases
// on both axes AND lies fully inside prev's query/reference box. A seed
// that merely overlaps prev without being contained in it (e.g. it extends
// past prev's end on the same diagonal) still needs its own extension.
func redundant(prev AlignRegion, seed Seed, minOverlap int) bool {
	qOverlap := minInt(prev.QE, seed.QEnd()) - maxInt(prev.QB, seed.QBeg)
	rOverlap := minInt64(prev.RE, seed.REnd()) - maxInt64(prev.RB, seed.RBeg)
	insideQuery := seed.QBeg >= prev.QB && seed.QEnd() <= prev.QE
	insideRef := seed.RBeg >= prev.RB && seed.REnd() <= prev.RE
	return qOverlap >= minOverlap && rOverlap >= int64(minOverlap) && insideQuery && insideRef
}

// seedCoverage sums the length of every chain seed fully inside region's
// query x reference box.
func seedCoverage(chain *Chain, region AlignRegion) int {
	total := 0
	for _, s := range chain.Seeds {
		if s.QBeg >= region.QB && s.QEnd() <= region.QE &&
			s.RBeg >= region.RB && s.REnd() <= region.RE {
			total += s.Len
		}
	}
	return total
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
