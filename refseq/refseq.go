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

// Package refseq declares the packed-reference and name/offset table
// collaborator (bns_* in the aligner this package's spec is drawn from).
// Construction of the on-disk packed representation is out of scope; this
// package states the interface and ships a small in-memory backend.
package refseq

import "github.com/grailbio/base/errors"

// Contig names one reference sequence and its forward-strand extent
// [Offset, Offset+Len) within the packed reference.
type Contig struct {
	Name   string
	Offset uint64
	Len    uint64
}

// Reference is the external packed-reference collaborator. Positions
// [0, PacLen()) address the forward strand; [PacLen(), 2*PacLen()) address
// its reverse complement, matching the aligner's strand-via-coordinate
// convention.
type Reference interface {
	// GetSeq returns the packed bases in [begin, end), and whether the
	// request was truncated (e.g. by hitting the end of the packed
	// reference). A truncated result still returns every available byte;
	// callers must compare len(seq) against end-begin themselves.
	GetSeq(begin, end uint64) (seq []byte, truncated bool)

	// Depos maps a packed-reference position to a forward-strand position
	// plus a flag saying whether pos named the reverse strand.
	Depos(pos uint64) (forward uint64, reverse bool)

	// CntAmbi counts ambiguous (N) bases in [pos, pos+length) on the
	// forward strand and returns the contig id pos falls in.
	CntAmbi(pos uint64, length uint64) (ambig int, contigID int)

	// PacLen returns l_pac, the forward-strand length in bases.
	PacLen() uint64

	// Contigs returns the name/offset table in forward-strand order.
	Contigs() []Contig
}

// InMemory is a Reference backed by a single []byte held entirely in
// memory: codes 0-3 for A/C/G/T, 4 for ambiguous. Pac holds the forward
// strand immediately followed by its reverse complement, so
// len(Pac) == 2*PacLen().
type InMemory struct {
	Pac     []byte
	contigs []Contig
}

// NewInMemory builds an InMemory reference from a set of named forward-
// strand sequences, each already encoded as 0-3/4 codes. It computes and
// appends the reverse complement half itself.
func NewInMemory(seqs []Contig, forward []byte) (*InMemory, error) {
	if len(forward) == 0 {
		return nil, errors.E("refseq: empty reference")
	}
	lPac := uint64(len(forward))
	pac := make([]byte, 2*lPac)
	copy(pac, forward)
	for i := uint64(0); i < lPac; i++ {
		b := forward[lPac-1-i]
		if b < 4 {
			pac[lPac+i] = 3 - b
		} else {
			pac[lPac+i] = 4
		}
	}
	return &InMemory{Pac: pac, contigs: seqs}, nil
}

// GetSeq implements Reference.
func (r *InMemory) GetSeq(begin, end uint64) ([]byte, bool) {
	n := uint64(len(r.Pac))
	if begin >= n {
		return nil, true
	}
	truncated := false
	if end > n {
		end = n
		truncated = true
	}
	if end < begin {
		end = begin
	}
	out := make([]byte, end-begin)
	copy(out, r.Pac[begin:end])
	return out, truncated
}

// PacLen implements Reference.
func (r *InMemory) PacLen() uint64 { return uint64(len(r.Pac)) / 2 }

// Contigs implements Reference.
func (r *InMemory) Contigs() []Contig { return r.contigs }

// Depos implements Reference.
func (r *InMemory) Depos(pos uint64) (uint64, bool) {
	lPac := r.PacLen()
	if pos < lPac {
		return pos, false
	}
	// Reverse-strand coordinate: mirror back onto the forward strand.
	return 2*lPac - 1 - pos, true
}

// CntAmbi implements Reference.
func (r *InMemory) CntAmbi(pos uint64, length uint64) (int, int) {
	lPac := r.PacLen()
	end := pos + length
	if end > lPac {
		end = lPac
	}
	ambig := 0
	for i := pos; i < end; i++ {
		if r.Pac[i] == 4 {
			ambig++
		}
	}
	return ambig, r.contigAt(pos)
}

func (r *InMemory) contigAt(pos uint64) int {
	for i, c := range r.contigs {
		if pos >= c.Offset && pos < c.Offset+c.Len {
			return i
		}
	}
	return -1
}
