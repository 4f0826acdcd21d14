package ksw

import "github.com/grailbio/hts/sam"

// negInf is a sentinel score for band-excluded or unreachable cells. It is
// kept far enough from zero that no realistic combination of match/gap
// scores can make an excluded cell look reachable.
const negInf = -(1 << 30)

// BandedAligner is a plain (non-SIMD) reference implementation of Aligner,
// using Gotoh's three-matrix affine-gap recurrence banded to +/-band around
// the main diagonal.
type BandedAligner struct{}

func inBand(i, j, band int) bool {
	d := i - j
	if d < 0 {
		d = -d
	}
	return d <= band
}

func max3(a, b, c int) int {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

// Extend implements Aligner.Extend.
func (BandedAligner) Extend(query, target []byte, mat []int8, gapOpen, gapExt, band, initScore int) (score, qle, tle int) {
	qlen, tlen := len(query), len(target)
	if qlen == 0 || tlen == 0 {
		return initScore, 0, 0
	}
	h, e, f := newMatrices(qlen, tlen)

	h[0][0] = initScore
	for i := 1; i <= qlen; i++ {
		if inBand(i, 0, band) {
			h[i][0] = initScore - gapCost(gapOpen, gapExt, i)
		}
	}
	for j := 1; j <= tlen; j++ {
		if inBand(0, j, band) {
			h[0][j] = initScore - gapCost(gapOpen, gapExt, j)
		}
	}

	bestScore, bestI, bestJ := initScore, 0, 0
	for i := 1; i <= qlen; i++ {
		lo, hi := bandRange(i, band, tlen)
		for j := lo; j <= hi; j++ {
			e[i][j] = max(h[i-1][j]-gapOpen, e[i-1][j]-gapExt)
			f[i][j] = max(h[i][j-1]-gapOpen, f[i][j-1]-gapExt)
			diag := h[i-1][j-1] + int(mat[int(query[i-1])*5+int(target[j-1])])
			h[i][j] = max3(diag, e[i][j], f[i][j])
			if h[i][j] > bestScore {
				bestScore, bestI, bestJ = h[i][j], i, j
			}
		}
	}
	return bestScore, bestI, bestJ
}

// Global implements Aligner.Global.
func (BandedAligner) Global(query, target []byte, mat []int8, gapOpen, gapExt, band int) (int, sam.Cigar) {
	qlen, tlen := len(query), len(target)
	h, e, f := newMatrices(qlen, tlen)
	// direction[i][j]: 0 = diagonal, 1 = insertion (consume query only,
	// from E), 2 = deletion (consume target only, from F).
	dir := make([][]byte, qlen+1)
	for i := range dir {
		dir[i] = make([]byte, tlen+1)
	}

	h[0][0] = 0
	for i := 1; i <= qlen; i++ {
		if inBand(i, 0, band) {
			h[i][0] = -gapCost(gapOpen, gapExt, i)
			dir[i][0] = 1
		} else {
			h[i][0] = negInf
		}
	}
	for j := 1; j <= tlen; j++ {
		if inBand(0, j, band) {
			h[0][j] = -gapCost(gapOpen, gapExt, j)
			dir[0][j] = 2
		} else {
			h[0][j] = negInf
		}
	}

	for i := 1; i <= qlen; i++ {
		lo, hi := bandRange(i, band, tlen)
		for j := lo; j <= hi; j++ {
			e[i][j] = max(h[i-1][j]-gapOpen, e[i-1][j]-gapExt)
			f[i][j] = max(h[i][j-1]-gapOpen, f[i][j-1]-gapExt)
			diag := h[i-1][j-1] + int(mat[int(query[i-1])*5+int(target[j-1])])
			switch {
			case diag >= e[i][j] && diag >= f[i][j]:
				h[i][j] = diag
				dir[i][j] = 0
			case e[i][j] >= f[i][j]:
				h[i][j] = e[i][j]
				dir[i][j] = 1
			default:
				h[i][j] = f[i][j]
				dir[i][j] = 2
			}
		}
	}

	cigar := traceback(dir, qlen, tlen)
	return h[qlen][tlen], cigar
}

func traceback(dir [][]byte, i, j int) sam.Cigar {
	var ops []sam.CigarOp
	push := func(t sam.CigarOpType) {
		if len(ops) > 0 && ops[len(ops)-1].Type() == t {
			ops[len(ops)-1] = sam.NewCigarOp(t, ops[len(ops)-1].Len()+1)
			return
		}
		ops = append(ops, sam.NewCigarOp(t, 1))
	}
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && dir[i][j] == 0:
			push(sam.CigarMatch)
			i--
			j--
		case i > 0 && (j == 0 || dir[i][j] == 1):
			push(sam.CigarInsertion)
			i--
		default:
			push(sam.CigarDeletion)
			j--
		}
	}
	// Reverse in place: traceback walked from the end.
	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	return sam.Cigar(ops)
}

func gapCost(gapOpen, gapExt, length int) int {
	if length <= 0 {
		return 0
	}
	return gapOpen + (length-1)*gapExt
}

func bandRange(i, band, tlen int) (lo, hi int) {
	lo = i - band
	if lo < 1 {
		lo = 1
	}
	hi = i + band
	if hi > tlen {
		hi = tlen
	}
	return lo, hi
}

func newMatrices(qlen, tlen int) (h, e, f [][]int) {
	h = allocInt(qlen+1, tlen+1, negInf)
	e = allocInt(qlen+1, tlen+1, negInf)
	f = allocInt(qlen+1, tlen+1, negInf)
	return h, e, f
}

func allocInt(rows, cols int, fill int) [][]int {
	m := make([][]int, rows)
	buf := make([]int, rows*cols)
	for i := range buf {
		buf[i] = fill
	}
	for i := range m {
		m[i] = buf[i*cols : (i+1)*cols]
	}
	return m
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
