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

// Package ksw declares the generic banded Smith-Waterman/Needleman-Wunsch
// kernel collaborator (ksw_extend/ksw_global) that the seed extender and
// CIGAR generator treat as a black box. Kernel *design* is out of scope for
// this module; BandedAligner is a plain, unoptimized implementation of the
// interface so the rest of the pipeline is runnable end to end. A production
// deployment would typically swap in a SIMD kernel instead.
package ksw

import "github.com/grailbio/hts/sam"

// Aligner is the external alignment-kernel collaborator.
//
// mat is a flat 5x5 substitution matrix (see mem.Options.Matrix), indexed
// mat[a*5+b] for bases a, b in {0,1,2,3,4}. gapOpen/gapExt are the q/r
// penalties from the scoring options; a gap of length L costs
// gapOpen + (L-1)*gapExt.
type Aligner interface {
	// Extend performs a banded, start-anchored, end-free alignment of
	// query against target (the left/right extension step in seed
	// extension), starting from score initScore at (0,0). It returns the
	// best score reached and how much of query/target (qle/tle) that
	// score consumed.
	Extend(query, target []byte, mat []int8, gapOpen, gapExt, band, initScore int) (score, qle, tle int)

	// Global performs a banded, fully-anchored (both ends fixed) global
	// alignment of query against target, returning the alignment score
	// and its CIGAR.
	Global(query, target []byte, mat []int8, gapOpen, gapExt, band int) (score int, cigar sam.Cigar)
}
