package refseq

import "testing"

func encode(s string) []byte {
	out := make([]byte, len(s))
	EncodeASCII(out, []byte(s))
	return out
}

func TestInMemoryForwardReverse(t *testing.T) {
	fwd := encode("ACGTACGTN")
	ref, err := NewInMemory([]Contig{{Name: "chr1", Offset: 0, Len: uint64(len(fwd))}}, fwd)
	if err != nil {
		t.Fatal(err)
	}
	if ref.PacLen() != uint64(len(fwd)) {
		t.Fatalf("PacLen = %d, want %d", ref.PacLen(), len(fwd))
	}

	seq, truncated := ref.GetSeq(0, ref.PacLen())
	if truncated {
		t.Fatal("unexpected truncation")
	}
	for i, b := range fwd {
		if seq[i] != b {
			t.Fatalf("forward[%d] = %d, want %d", i, seq[i], b)
		}
	}

	// Reverse complement half should read backwards-and-complemented,
	// except ambiguous bases stay ambiguous.
	rev, truncated := ref.GetSeq(ref.PacLen(), 2*ref.PacLen())
	if truncated {
		t.Fatal("unexpected truncation")
	}
	want := []byte{4, 0, 1, 2, 3, 0, 1, 2, 3} // revcomp("ACGTACGTN") with N->N
	for i, b := range want {
		if rev[i] != b {
			t.Fatalf("revcomp[%d] = %d, want %d", i, rev[i], b)
		}
	}
}

func TestInMemoryGetSeqTruncation(t *testing.T) {
	fwd := encode("ACGT")
	ref, err := NewInMemory([]Contig{{Name: "c", Offset: 0, Len: 4}}, fwd)
	if err != nil {
		t.Fatal(err)
	}
	seq, truncated := ref.GetSeq(2, 100)
	if !truncated {
		t.Fatal("expected truncation past end of packed reference")
	}
	if len(seq) != int(2*ref.PacLen())-2 {
		t.Fatalf("got %d bytes, want %d", len(seq), int(2*ref.PacLen())-2)
	}
}

func TestInMemoryDepos(t *testing.T) {
	fwd := encode("ACGTACGT")
	ref, err := NewInMemory([]Contig{{Name: "c", Offset: 0, Len: 8}}, fwd)
	if err != nil {
		t.Fatal(err)
	}
	if fp, rev := ref.Depos(3); fp != 3 || rev {
		t.Fatalf("Depos(3) = (%d, %v), want (3, false)", fp, rev)
	}
	lPac := ref.PacLen()
	fp, rev := ref.Depos(lPac)
	if !rev || fp != lPac-1 {
		t.Fatalf("Depos(lPac) = (%d, %v), want (%d, true)", fp, rev, lPac-1)
	}
}

func TestInMemoryCntAmbi(t *testing.T) {
	fwd := encode("ACGTNNAC")
	ref, err := NewInMemory([]Contig{{Name: "c", Offset: 0, Len: 8}}, fwd)
	if err != nil {
		t.Fatal(err)
	}
	ambig, contigID := ref.CntAmbi(0, 8)
	if ambig != 2 {
		t.Fatalf("ambig = %d, want 2", ambig)
	}
	if contigID != 0 {
		t.Fatalf("contigID = %d, want 0", contigID)
	}
}

func TestNewInMemoryRejectsEmpty(t *testing.T) {
	if _, err := NewInMemory(nil, nil); err == nil {
		t.Fatal("expected error for empty reference")
	}
}
