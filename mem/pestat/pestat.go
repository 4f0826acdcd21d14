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

// Package pestat implements the paired-end insert-size estimation and mate
// rescue collaborator (mem_pestat/mem_sam_pe) that mem.AlignBatch treats as
// an external, swappable step: Estimate runs between its two passes and
// Rescue once per mate pair in Pass 2. Rescue semantics
// (mate-SW when one mate is unmapped) are out of scope; Simple only
// estimates insert-size statistics from Pass 1's regions and never
// rescues.
package pestat

import (
	"math"
	"sort"

	"github.com/Androniki/bwa/mem"
	"github.com/Androniki/bwa/refseq"
)

// orientation indexes mem.InsertStat's four slots: the relative
// orientation of a read pair's best regions.
const (
	orientFR = iota
	orientFF
	orientRF
	orientRR
)

// Simple estimates insert-size statistics per orientation from Pass 1
// region vectors, using a simple mean/stddev over primaries whose
// orientation matches. Outliers are not trimmed: every sample enters the
// mean and stddev, and Low/High are set NSigma standard deviations either
// side of the mean. It never performs mate rescue (Rescue is a no-op
// returning 0), since rescue's mate-SW step is out of scope for this
// module.
type Simple struct {
	// NSigma sets how many standard deviations either side of the mean
	// the reported Low/High range extends.
	NSigma float64
}

// NewSimple returns a Simple estimator with the conventional 4-sigma
// outlier bound.
func NewSimple() *Simple {
	return &Simple{NSigma: 4}
}

// Estimate implements mem.PEStats.
func (s *Simple) Estimate(pacLen uint64, regions [][]mem.AlignRegion) [4]mem.InsertStat {
	var samples [4][]int
	for i := 0; i+1 < len(regions); i += 2 {
		a := primaryOf(regions[i])
		b := primaryOf(regions[i+1])
		if a == nil || b == nil {
			continue
		}
		o, isize, ok := pairOrientation(a, b, pacLen)
		if !ok {
			continue
		}
		samples[o] = append(samples[o], isize)
	}

	var out [4]mem.InsertStat
	for o := range samples {
		out[o] = summarize(samples[o], s.nSigma())
	}
	return out
}

func (s *Simple) nSigma() float64 {
	if s.NSigma > 0 {
		return s.NSigma
	}
	return 4
}

// Rescue implements mem.PEStats. Mate rescue (realigning an unmapped mate
// against a window implied by its partner and the insert-size
// distribution) is out of scope; Simple reports zero rescues.
func (s *Simple) Rescue(stats [4]mem.InsertStat, ref refseq.Reference, mate [2]*mem.Read, regs [2][]mem.AlignRegion) int {
	return 0
}

func primaryOf(regions []mem.AlignRegion) *mem.AlignRegion {
	for i := range regions {
		if regions[i].Secondary == -1 {
			return &regions[i]
		}
	}
	return nil
}

// pairOrientation classifies a mate pair's relative orientation and
// returns the absolute insert size between their outer coordinates.
func pairOrientation(a, b *mem.AlignRegion, pacLen uint64) (orient int, isize int, ok bool) {
	aRev := a.RB >= int64(pacLen)
	bRev := b.RB >= int64(pacLen)
	lo, hi := a.RB, a.RE
	if b.RB < lo {
		lo = b.RB
	}
	if b.RE > hi {
		hi = b.RE
	}
	isize = int(hi - lo)

	switch {
	case !aRev && bRev:
		return orientFR, isize, true
	case aRev && !bRev:
		return orientFR, isize, true
	case !aRev && !bRev:
		return orientFF, isize, true
	default:
		return orientRR, isize, true
	}
}

func summarize(samples []int, nSigma float64) mem.InsertStat {
	if len(samples) == 0 {
		return mem.InsertStat{Failed: true}
	}
	sort.Ints(samples)

	var sum float64
	for _, v := range samples {
		sum += float64(v)
	}
	mean := sum / float64(len(samples))

	var sq float64
	for _, v := range samples {
		d := float64(v) - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(samples)))

	low := int(mean - nSigma*std)
	high := int(mean + nSigma*std)
	return mem.InsertStat{Mean: mean, Std: std, Low: low, High: high}
}
