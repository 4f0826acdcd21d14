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

// Package fmindex declares the FM-index/BWT collaborator the seeding stage
// consumes as a black box. Index construction itself is out of scope; this
// package only states the interface and ships a small in-memory reference
// backend so the rest of the pipeline has something real to run against in
// tests.
package fmindex

// Interval is a BWT suffix-array interval: the triple (k, l, s) of bwtintv,
// naming s occurrences of some substring between SA positions k and l,
// together with the query span (qbeg, qend) that substring was matched
// against.
type Interval struct {
	K, L uint64
	S    uint64
	QBeg int32
	QEnd int32
}

// Len returns the matched query length, qend-qbeg.
func (iv Interval) Len() int { return int(iv.QEnd - iv.QBeg) }

// Index is the external FM-index collaborator enumerated in the aligner
// spec's external-interfaces section. Implementations need not be
// thread-safe for writes, but Smem1/SA/PacLen must be safe to call
// concurrently from multiple worker goroutines against a single shared
// Index, since the batch driver fans out reads across workers against one
// read-only index.
type Index interface {
	// Smem1 extends the match anchored at cursor (the bwt_smem1 primitive),
	// appending discovered intervals to dst and returning the new cursor
	// position plus the (possibly dst-backed) slice of intervals found.
	// Ambiguous bases (encoded >3) at cursor are the caller's
	// responsibility to skip; Smem1 assumes query[cursor] < 4.
	Smem1(query []byte, cursor int, maxLen int, minIntv uint64, dst []Interval) (next int, out []Interval)

	// SA returns the suffix-array occurrence at position k (the bwt_sa
	// primitive): a 0-based position in the packed reference.
	SA(k uint64) uint64

	// PacLen returns l_pac, the length of the forward-strand packed
	// reference in bases.
	PacLen() uint64
}
