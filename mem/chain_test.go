package mem

import (
	"testing"

	"github.com/Androniki/bwa/fmindex"
)

func encodeDNAmem(s string) []byte {
	out := make([]byte, len(s))
	for i, c := range s {
		switch c {
		case 'A':
			out[i] = 0
		case 'C':
			out[i] = 1
		case 'G':
			out[i] = 2
		case 'T':
			out[i] = 3
		default:
			out[i] = 4
		}
	}
	return out
}

func TestBuildChainsExactMatchSingleChain(t *testing.T) {
	opt := DefaultOptions()
	opt.MinSeedLen = 10

	ref := encodeDNAmem("ACGTACGTACGTACGTACGTACGTACGT")
	idx := fmindex.NewNaiveIndex(ref, uint64(len(ref)))

	query := encodeDNAmem("ACGTACGTAC")
	chains := BuildChains(idx, query, &opt)
	if len(chains) == 0 {
		t.Fatal("expected at least one chain")
	}
	for _, c := range chains {
		if len(c.Seeds) == 0 {
			t.Fatal("chain has no seeds")
		}
		prev := c.Seeds[0]
		for _, s := range c.Seeds[1:] {
			if s.QBeg < prev.QBeg || s.RBeg < prev.RBeg {
				t.Fatalf("chain seeds not monotone: %+v after %+v", s, prev)
			}
			if d := absInt(int(s.QBeg-prev.QBeg) - int(s.RBeg-prev.RBeg)); d > opt.BandWidth {
				t.Fatalf("diagonal drift %d exceeds band width %d", d, opt.BandWidth)
			}
			prev = s
		}
	}
}

func TestBuildChainsShortQueryReturnsEmpty(t *testing.T) {
	opt := DefaultOptions()
	ref := encodeDNAmem("ACGTACGTACGTACGTACGT")
	idx := fmindex.NewNaiveIndex(ref, uint64(len(ref)))

	query := encodeDNAmem("ACGT") // shorter than MinSeedLen
	if chains := BuildChains(idx, query, &opt); chains != nil {
		t.Fatalf("expected nil chains for short query, got %d", len(chains))
	}
}

func TestBuildChainsSkipsHyperRepetitiveSeed(t *testing.T) {
	opt := DefaultOptions()
	opt.MinSeedLen = 4
	opt.MaxOcc = 2

	ref := encodeDNAmem("AAAAAAAAAAAAAAAAAAAA")
	idx := fmindex.NewNaiveIndex(ref, uint64(len(ref)))

	query := encodeDNAmem("AAAA")
	chains := BuildChains(idx, query, &opt)
	if len(chains) != 0 {
		t.Fatalf("expected the hyper-repetitive seed to be skipped entirely, got %d chains", len(chains))
	}
}

func TestMergeSeedAbsorbsContained(t *testing.T) {
	opt := DefaultOptions()
	chain := &Chain{Seeds: []Seed{{QBeg: 0, RBeg: 100, Len: 20}}, Pos: 100}
	contained := Seed{QBeg: 5, RBeg: 105, Len: 5}
	if !mergeSeed(chain, contained, &opt) {
		t.Fatal("expected contained seed to be absorbed")
	}
	if len(chain.Seeds) != 1 {
		t.Fatalf("absorbed seed should not grow the chain, got %d seeds", len(chain.Seeds))
	}
}

func TestMergeSeedAppendsColinear(t *testing.T) {
	opt := DefaultOptions()
	chain := &Chain{Seeds: []Seed{{QBeg: 0, RBeg: 100, Len: 20}}, Pos: 100}
	next := Seed{QBeg: 25, RBeg: 125, Len: 10}
	if !mergeSeed(chain, next, &opt) {
		t.Fatal("expected colinear seed to be appended")
	}
	if len(chain.Seeds) != 2 {
		t.Fatalf("expected chain to grow to 2 seeds, got %d", len(chain.Seeds))
	}
}

func TestMergeSeedRejectsOffDiagonal(t *testing.T) {
	opt := DefaultOptions()
	opt.BandWidth = 5
	chain := &Chain{Seeds: []Seed{{QBeg: 0, RBeg: 100, Len: 20}}, Pos: 100}
	farOff := Seed{QBeg: 25, RBeg: 500, Len: 10}
	if mergeSeed(chain, farOff, &opt) {
		t.Fatal("expected off-diagonal seed to be rejected")
	}
}
