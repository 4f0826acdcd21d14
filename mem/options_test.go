package mem

import "testing"

func TestMatrixDiagonalAndAmbiguousRow(t *testing.T) {
	opt := DefaultOptions()
	m := opt.Matrix()
	if len(m) != 25 {
		t.Fatalf("len(matrix) = %d, want 25", len(m))
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := -opt.B
			if i == j {
				want = opt.A
			}
			if got := m[i*5+j]; got != want {
				t.Errorf("m[%d][%d] = %d, want %d", i, j, got, want)
			}
		}
	}
	for i := 0; i < 5; i++ {
		if m[i*5+4] != 0 || m[4*5+i] != 0 {
			t.Errorf("row/col 4 not zero at index %d", i)
		}
	}
}

func TestMaxGap(t *testing.T) {
	opt := DefaultOptions()
	got := opt.MaxGap(50)
	want := (50*int(opt.A)-opt.GapOpen)/opt.GapExt + 1
	if got != want {
		t.Fatalf("MaxGap(50) = %d, want %d", got, want)
	}
	if opt.MaxGap(0) < 1 {
		t.Fatalf("MaxGap(0) must be >= 1")
	}
}
