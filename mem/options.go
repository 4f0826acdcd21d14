// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mem implements the seed-and-extend short-read alignment pipeline:
// SMEM seeding, seed chaining, chain filtering, banded extension, CIGAR
// reconstruction, MAPQ estimation, and SAM record formatting.
package mem

// Flag bits for Options.Flag.
const (
	// FlagPE marks the batch as paired-end.
	FlagPE = 1 << iota
	// FlagHardClip emits hard clips (H) instead of soft clips (S) for
	// clipped bases in primary alignments.
	FlagHardClip
)

// Options carries every tunable of the alignment pipeline. Field names
// mirror the source's single-letter option names where those are the
// conventional scoring-parameter symbols.
type Options struct {
	A int8 // match score
	B int8 // mismatch penalty

	GapOpen int // q: gap-open penalty
	GapExt  int // r: gap-extension penalty

	BandWidth int // w

	MinSeedLen int
	MaxSeedLen int
	MinIntv    int
	MaxOcc     int

	MaxChainGap int

	MaskLevel      float64
	ChainDropRatio float64

	// SplitFactor is reserved for adaptive reseeding; the pipeline accepts
	// it but no component currently reads it.
	SplitFactor float64

	NThreads int

	Flag int

	ChunkSize int

	PenUnpaired int
}

// DefaultOptions returns the option set with the pipeline's reference
// defaults.
func DefaultOptions() Options {
	return Options{
		A:              1,
		B:              4,
		GapOpen:        6,
		GapExt:         1,
		BandWidth:      100,
		MinSeedLen:     19,
		MaxSeedLen:     32,
		MinIntv:        10,
		MaxOcc:         10000,
		MaxChainGap:    10000,
		MaskLevel:      0.50,
		ChainDropRatio: 0.50,
		SplitFactor:    1.5,
		NThreads:       1,
		Flag:           0,
		ChunkSize:      10000000,
		PenUnpaired:    9,
	}
}

// Matrix builds the flat 5x5 (A,C,G,T,N) substitution matrix used by the
// alignment kernels: match/-mismatch on the diagonal for bases 0-3, zero
// in row/column 4 (the ambiguous-base row/column).
func (o *Options) Matrix() []int8 {
	m := make([]int8, 25)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				m[i*5+j] = o.A
			} else {
				m[i*5+j] = -o.B
			}
		}
	}
	// Row/column 4 (ambiguous base) stays zero.
	return m
}

// MaxGap returns the maximum-gap bound used to size the reference window
// an extension is allowed to escape into, for a query of length qlen:
// max(1, floor((qlen*a - q)/r) + 1).
func (o *Options) MaxGap(qlen int) int {
	if qlen == 0 {
		return 1
	}
	g := (qlen*int(o.A)-o.GapOpen)/o.GapExt + 1
	if g < 1 {
		g = 1
	}
	return g
}
