package mem

import (
	"github.com/grailbio/hts/sam"

	"github.com/Androniki/bwa/ksw"
	"github.com/Androniki/bwa/refseq"
)

// ClippedCigar pairs a region's core alignment CIGAR with the soft/hard
// clip operations derived from qb and l_seq-qe.
type ClippedCigar struct {
	Cigar sam.Cigar
	Valid bool
}

// GenerateCigar re-aligns a primary region's query/reference span with
// banded global alignment to produce a canonical CIGAR, per C6. If the
// reference window straddles the forward/reverse boundary, the region is
// invalid and no CIGAR is produced. Reverse-strand regions are aligned
// with both sequences reversed so indels left-align on the forward strand.
func GenerateCigar(region AlignRegion, query []byte, ref refseq.Reference, aligner ksw.Aligner, opt *Options, isHard bool) ClippedCigar {
	lPac := int64(ref.PacLen())
	if region.RB < lPac && region.RE > lPac {
		return ClippedCigar{Valid: false}
	}

	qSlice := query[region.QB:region.QE]
	refSlice, truncated := ref.GetSeq(uint64(region.RB), uint64(region.RE))
	if truncated {
		return ClippedCigar{Valid: false}
	}

	reverse := region.RB >= lPac
	q, r := qSlice, refSlice
	if reverse {
		q = reverseBytes(qSlice)
		r = reverseBytes(refSlice)
	}

	w := bandWidth(opt, len(query), int(region.RE-region.RB))
	_, coreCigar := aligner.Global(q, r, opt.Matrix(), opt.GapOpen, opt.GapExt, w)
	if reverse {
		coreCigar = reverseCigarOps(coreCigar)
	}

	if len(coreCigar) == 0 {
		return ClippedCigar{Valid: false}
	}

	full := addClips(coreCigar, region.QB, len(query)-region.QE, isHard)
	return ClippedCigar{Cigar: full, Valid: true}
}

// bandWidth computes the CIGAR-generation band width: the configured band,
// clamped against a length-derived bound, widened by the difference
// between reference and query span. The clamp direction (min vs max of
// w_opt and the length-derived bound) is preserved from the upstream
// literal per the open question in DESIGN.md.
func bandWidth(opt *Options, lQuery, rlen int) int {
	bound := (lQuery*int(opt.A)-opt.GapOpen)/opt.GapExt + 1
	if bound < 1 {
		bound = 1
	}
	w := opt.BandWidth
	if bound < w {
		w = bound
	}
	diff := rlen - lQuery
	if diff < 0 {
		diff = -diff
	}
	return w + diff
}

func reverseCigarOps(c sam.Cigar) sam.Cigar {
	out := make(sam.Cigar, len(c))
	for i, op := range c {
		out[len(c)-1-i] = op
	}
	return out
}

// addClips prepends/appends a soft or hard clip operation for headLen and
// tailLen bases respectively, omitting either one when its length is 0.
// core is copied as is: a clip op it already starts or ends with is not
// merged with the new one (the kernel only emits M/I/D, so core never
// carries one).
func addClips(core sam.Cigar, headLen, tailLen int, isHard bool) sam.Cigar {
	clipOp := sam.CigarSoftClipped
	if isHard {
		clipOp = sam.CigarHardClipped
	}
	out := make(sam.Cigar, 0, len(core)+2)
	if headLen > 0 {
		out = append(out, sam.NewCigarOp(clipOp, headLen))
	}
	out = append(out, core...)
	if tailLen > 0 {
		out = append(out, sam.NewCigarOp(clipOp, tailLen))
	}
	return out
}
