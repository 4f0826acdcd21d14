package mem

import (
	"strings"
	"testing"

	"github.com/Androniki/bwa/fmindex"
	"github.com/Androniki/bwa/ksw"
)

// Three sequences build the references for the scenarios below: blockA and
// blockB are unique 59bp stretches, and motif is a 20bp sequence placed
// twice so it maps to two equally good loci.
const (
	blockA = "ACGTTGCAGGTCATGCAGGTACCTTGACGGTCATTGGCATCCGATGCATTGGACCGTAA"
	blockB = "TTGGACACGTTAGGCATTCGGATGCATTGGTACGGTTACCGATGGCATTCGGACCTAGG"
	motif  = "CTAGGTCCATGATTCGGACA"
)

func revcompEncoded(enc []byte) []byte {
	out := make([]byte, len(enc))
	for i, c := range enc {
		j := len(enc) - 1 - i
		if c < 4 {
			out[j] = 3 - c
		} else {
			out[j] = 4
		}
	}
	return out
}

func TestAlignBatchExactMatchForward(t *testing.T) {
	opt := DefaultOptions()
	ref := buildRef(t, blockA+motif+blockB+motif)
	idx := fmindex.NewNaiveIndex(ref.Pac, ref.PacLen())

	read := Read{Name: "exact", Seq: encodeDNAmem(blockA[:50])}
	results, err := AlignBatch([]Read{read}, idx, ref, ksw.BandedAligner{}, &opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	fields := strings.Split(results[0].SAMLine, "\t")
	if fields[1] != "0" {
		t.Fatalf("FLAG = %s, want 0", fields[1])
	}
	if fields[5] != "50M" {
		t.Fatalf("CIGAR = %s, want 50M", fields[5])
	}
}

func TestAlignBatchSingleMismatch(t *testing.T) {
	opt := DefaultOptions()
	ref := buildRef(t, blockA+motif+blockB+motif)
	idx := fmindex.NewNaiveIndex(ref.Pac, ref.PacLen())

	seq := encodeDNAmem(blockA[:50])
	mid := seq[25]
	seq[25] = (mid + 1) % 4 // swap to a different base, still unambiguous
	read := Read{Name: "snp", Seq: seq}

	results, err := AlignBatch([]Read{read}, idx, ref, ksw.BandedAligner{}, &opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Region == nil {
		t.Fatal("expected the single-mismatch read to map")
	}
	fields := strings.Split(results[0].SAMLine, "\t")
	if fields[5] != "50M" {
		t.Fatalf("CIGAR = %s, want 50M (mismatch, no indel)", fields[5])
	}
	if results[0].Region.Score >= 50 {
		t.Fatalf("score = %d, should be penalized below a perfect 50", results[0].Region.Score)
	}
}

func TestAlignBatchSingleBaseInsertion(t *testing.T) {
	opt := DefaultOptions()
	ref := buildRef(t, blockA+motif+blockB+motif)
	idx := fmindex.NewNaiveIndex(ref.Pac, ref.PacLen())

	base := encodeDNAmem(blockA[:50])
	seq := make([]byte, 0, len(base)+1)
	seq = append(seq, base[:25]...)
	seq = append(seq, 1) // extra base not present in the reference at this point
	seq = append(seq, base[25:]...)
	read := Read{Name: "ins", Seq: seq}

	results, err := AlignBatch([]Read{read}, idx, ref, ksw.BandedAligner{}, &opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Region == nil {
		t.Fatal("expected the 1bp-insertion read to map")
	}
	fields := strings.Split(results[0].SAMLine, "\t")
	if !strings.Contains(fields[5], "I") {
		t.Fatalf("CIGAR = %s, want an insertion operation", fields[5])
	}
}

func TestAlignBatchReverseStrandHit(t *testing.T) {
	opt := DefaultOptions()
	ref := buildRef(t, blockA+motif+blockB+motif)
	idx := fmindex.NewNaiveIndex(ref.Pac, ref.PacLen())

	fwd := encodeDNAmem(blockB[:50])
	read := Read{Name: "rev", Seq: revcompEncoded(fwd)}

	results, err := AlignBatch([]Read{read}, idx, ref, ksw.BandedAligner{}, &opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Region == nil {
		t.Fatal("expected the reverse-strand read to map")
	}
	fields := strings.Split(results[0].SAMLine, "\t")
	flag := fields[1]
	if flag != "16" {
		t.Fatalf("FLAG = %s, want 16 (reverse strand)", flag)
	}
}

func TestAlignBatchChimericReadYieldsTwoSAMLines(t *testing.T) {
	opt := DefaultOptions()
	ref := buildRef(t, blockA+motif+blockB+motif)
	idx := fmindex.NewNaiveIndex(ref.Pac, ref.PacLen())

	seq := append(encodeDNAmem(blockA[:30]), encodeDNAmem(blockB[:30])...)
	results, err := AlignBatch([]Read{{Name: "chimera", Seq: seq}}, idx, ref, ksw.BandedAligner{}, &opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	// A chimeric read's two disjoint primary loci must both reach the SAM
	// output as their own record rather than the second being discarded.
	if len(results) < 2 {
		t.Fatalf("expected at least 2 SAM lines for a chimeric read, got %d", len(results))
	}
	for _, r := range results {
		fields := strings.Split(r.SAMLine, "\t")
		if fields[0] != "chimera" {
			t.Fatalf("QNAME = %s, want chimera", fields[0])
		}
		flag := fields[1]
		if flag == "0x100" || flag == "256" {
			t.Fatalf("expected no secondary-flagged record among chimeric primaries, got FLAG=%s", flag)
		}
	}
}

func TestPass1ChimericReadYieldsTwoPrimaryRegions(t *testing.T) {
	opt := DefaultOptions()
	ref := buildRef(t, blockA+motif+blockB+motif)
	idx := fmindex.NewNaiveIndex(ref.Pac, ref.PacLen())

	seq := append(encodeDNAmem(blockA[:30]), encodeDNAmem(blockB[:30])...)
	regions := pass1(Read{Name: "chimera", Seq: seq}, idx, ref, ksw.BandedAligner{}, &opt)
	if len(regions) < 2 {
		t.Fatalf("expected at least 2 regions for a chimeric read, got %d", len(regions))
	}
	for _, r := range regions {
		if r.Secondary != -1 {
			t.Fatalf("expected all disjoint chimeric segments to be primary, got %+v", r)
		}
	}
}

func TestPass1RepetitiveSeedYieldsAmbiguousRegions(t *testing.T) {
	opt := DefaultOptions()
	opt.MinSeedLen = 15
	ref := buildRef(t, blockA+motif+blockB+motif)
	idx := fmindex.NewNaiveIndex(ref.Pac, ref.PacLen())

	regions := pass1(Read{Name: "repeat", Seq: encodeDNAmem(motif)}, idx, ref, ksw.BandedAligner{}, &opt)
	if len(regions) < 2 {
		t.Fatalf("expected at least 2 equally-scoring regions for the repeated motif, got %d", len(regions))
	}
	primaries := 0
	for _, r := range regions {
		if r.Secondary == -1 {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly 1 primary among the fully-overlapping repeat hits, got %d", primaries)
	}
	mapq := EstimateMapq(regions[0], &opt)
	if mapq > 10 {
		t.Fatalf("MAPQ = %d, expected a low MAPQ for an ambiguous repeat hit", mapq)
	}
}
