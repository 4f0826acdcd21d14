package mem

import (
	"fmt"
	"strings"

	"github.com/Androniki/bwa/biosimd"

	"github.com/Androniki/bwa/pileup"
	"github.com/Androniki/bwa/refseq"
)

// SAM FLAG bits used by WriteSAM, mirroring the standard SAM 1.x field.
const (
	flagPaired       = 0x1
	flagUnmapped     = 0x4
	flagMateUnmapped = 0x8
	flagReverse      = 0x10
	flagMateReverse  = 0x20
	flagSecondary    = 0x100
)

// RecordInput gathers everything WriteSAM needs for one read: the read
// itself, its chosen region (nil if unmapped), the mate's region (nil if
// single-ended or mate unmapped), and whether this region is secondary.
type RecordInput struct {
	Read       *Read
	Region     *AlignRegion
	MateRegion *AlignRegion
	Secondary  bool
	Paired     bool
}

// WriteSAM formats one SAM line for a read (QNAME, FLAG, RNAME, POS, MAPQ,
// CIGAR, RNEXT, PNEXT, TLEN, SEQ, QUAL, AS:i:/XS:i: tags), per C8. It does
// not build a sam.Record/sam.Header object graph; GenerateCigar and
// EstimateMapq already did the alignment-level work upstream, and this
// function only assembles and writes the tab-delimited text from their
// results plus the sam.Cigar rendering.
func WriteSAM(in RecordInput, ref refseq.Reference, cigar ClippedCigar, mapq int) string {
	unmapped := in.Region == nil || !cigar.Valid

	flag := 0
	if in.Paired {
		flag |= flagPaired
	}
	if unmapped {
		flag |= flagUnmapped
	}
	if in.Paired && in.MateRegion == nil {
		flag |= flagMateUnmapped
	}
	reverse := !unmapped && in.Region.RB >= int64(ref.PacLen())
	if reverse {
		flag |= flagReverse
	}
	mateReverse := in.MateRegion != nil && in.MateRegion.RB >= int64(ref.PacLen())
	if mateReverse {
		flag |= flagMateReverse
	}
	if !unmapped && in.Secondary {
		flag |= flagSecondary
	}

	// An unmapped read with a mapped mate inherits the mate's coordinate
	// and is emitted with no CIGAR.
	posRegion := in.Region
	if unmapped {
		posRegion = in.MateRegion
	}
	rname, pos, contigID := locate(ref, posRegion)

	cigStr := "*"
	if !unmapped {
		cigStr = cigar.Cigar.String()
	}

	rnext, pnext, tlen := "*", 0, 0
	if in.MateRegion != nil && posRegion != nil {
		mateRname, matePos, mateContigID := locate(ref, in.MateRegion)
		switch {
		case mateContigID == contigID && contigID >= 0:
			rnext, pnext = "=", matePos
			tlen = computeTlen(posRegion, in.MateRegion)
		default:
			rnext, pnext = mateRname, matePos
		}
	}

	seq, qual := renderSeqQual(in.Read, reverse)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\t%d\t%s\t%d\t%d\t%s\t%s\t%d\t%d\t%s\t%s",
		in.Read.Name, flag, rname, pos, mapq, cigStr, rnext, pnext, tlen, seq, qual)
	if !unmapped {
		fmt.Fprintf(&b, "\tAS:i:%d", in.Region.Score)
		if in.Region.Sub != 0 {
			fmt.Fprintf(&b, "\tXS:i:%d", in.Region.Sub)
		}
	}
	return b.String()
}

// locate maps a region's reference start to a (contig name, 1-based
// offset, contig index) triple, or ("*", 0, -1) if region is nil.
func locate(ref refseq.Reference, region *AlignRegion) (name string, pos1 int, contigID int) {
	if region == nil {
		return "*", 0, -1
	}
	fwd, _ := ref.Depos(uint64(region.RB))
	_, contigID = ref.CntAmbi(fwd, 0)
	if contigID < 0 || contigID >= len(ref.Contigs()) {
		return "*", 0, -1
	}
	contig := ref.Contigs()[contigID]
	return contig.Name, int(fwd-contig.Offset) + 1, contigID
}

// computeTlen returns the signed insert size between two regions mapped to
// the same contig: positive from the leftmost mate's perspective.
func computeTlen(a, b *AlignRegion) int {
	lo, hi := a.RB, a.RE
	if b.RB < lo {
		lo = b.RB
	}
	if b.RE > hi {
		hi = b.RE
	}
	length := int(hi - lo)
	if a.RB > b.RB {
		return -length
	}
	return length
}

// renderSeqQual produces the forward-strand-oriented SEQ/QUAL fields,
// reverse-complementing SEQ (and reversing QUAL) when the alignment is to
// the reverse strand, so SEQ always reads along the forward reference
// strand, as FLAG 0x10 signals.
func renderSeqQual(r *Read, reverse bool) (seq, qual string) {
	ascii := make([]byte, len(r.Seq))
	for i, c := range r.Seq {
		ascii[i] = pileup.EnumToASCIITable[c]
	}
	q := make([]byte, len(r.Qual))
	copy(q, r.Qual)

	if reverse {
		biosimd.ReverseComp8Inplace(ascii)
		for i, j := 0, len(q)-1; i < j; i, j = i+1, j-1 {
			q[i], q[j] = q[j], q[i]
		}
	}

	seq = string(ascii)
	if len(q) == 0 {
		qual = "*"
	} else {
		for i := range q {
			q[i] += 33
		}
		qual = string(q)
	}
	return seq, qual
}
