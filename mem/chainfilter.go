package mem

import (
	"sort"

	"github.com/Androniki/bwa/interval"
)

// scoredChain pairs a chain with its filter-stage weight, the minimum of
// its query-axis and reference-axis interval-union coverage.
type scoredChain struct {
	chain  *Chain
	weight int
	beg    int // query-axis bounding interval, first seed's QBeg
	end    int // query-axis bounding interval end
}

// FilterChains scores each chain by covered query/reference span and drops
// chains dominated by a higher-weight overlapping chain, per C3. Chains are
// returned in descending-weight (accepted) order.
func FilterChains(chains []*Chain, opt *Options) []*Chain {
	scored := make([]scoredChain, len(chains))
	for i, c := range chains {
		wq := unionCoverage(c, axisQuery)
		wr := unionCoverage(c, axisRef)
		weight := wq
		if wr < weight {
			weight = wr
		}
		beg, end := c.QSpan()
		scored[i] = scoredChain{chain: c, weight: weight, beg: beg, end: end}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].weight > scored[j].weight
	})

	var accepted []scoredChain
	for _, cand := range scored {
		rejected := false
		for _, acc := range accepted {
			overlapLo := cand.beg
			if acc.beg > overlapLo {
				overlapLo = acc.beg
			}
			overlapHi := cand.end
			if acc.end < overlapHi {
				overlapHi = acc.end
			}
			if overlapHi <= overlapLo {
				continue // no overlap
			}
			ovl := overlapHi - overlapLo
			candLen := cand.end - cand.beg
			accLen := acc.end - acc.beg
			minLen := candLen
			if accLen < minLen {
				minLen = accLen
			}
			if float64(ovl) < float64(minLen)*opt.MaskLevel {
				continue // not a significant overlap
			}
			if float64(cand.weight) < float64(acc.weight)*opt.ChainDropRatio &&
				acc.weight-cand.weight >= 2*opt.MinSeedLen {
				rejected = true
				break
			}
		}
		if !rejected {
			accepted = append(accepted, cand)
		}
	}

	out := make([]*Chain, len(accepted))
	for i, a := range accepted {
		out[i] = a.chain
	}
	return out
}

type axis int

const (
	axisQuery axis = iota
	axisRef
)

// unionCoverage computes the total length of the interval union of a
// chain's seeds, projected onto the requested axis. Both axes are
// expressed relative to the chain's first seed, since reference positions
// are absolute packed-reference offsets while query positions are
// 0-based-from-read offsets, and the two are only comparable as deltas.
//
// Per the preserved reference-axis quirk (see DESIGN.md), the
// reference-axis loop's interval end is derived from each seed's
// query-axis delta (QBeg-firstQBeg+Len), not its reference-axis delta
// (RBeg-firstRBeg+Len). Because the chain invariant bounds the drift
// between those two deltas by the band width, this under- or
// over-counts w_r by a small amount rather than corrupting it outright;
// it is carried over unchanged from the upstream behavior and is covered
// by a regression test rather than fixed.
func unionCoverage(c *Chain, ax axis) int {
	if len(c.Seeds) == 0 {
		return 0
	}
	first := c.First()
	intervals := make([][2]interval.PosType, len(c.Seeds))
	for i, s := range c.Seeds {
		qDelta := s.QBeg - first.QBeg
		rDelta := int(s.RBeg - first.RBeg)
		var beg, end interval.PosType
		switch ax {
		case axisQuery:
			beg = interval.PosType(qDelta)
			end = interval.PosType(qDelta + s.Len)
		default: // axisRef
			beg = interval.PosType(rDelta)
			end = interval.PosType(qDelta + s.Len) // preserved quirk: qbeg-delta-derived end
		}
		if end < beg {
			end = beg
		}
		intervals[i] = [2]interval.PosType{beg, end}
	}
	endpoints := mergeToEndpoints(intervals)

	us := interval.NewUnionScanner(endpoints)
	var total interval.PosType
	var start, end interval.PosType
	for us.Scan(&start, &end, interval.PosTypeMax) {
		total += end - start
	}
	return int(total)
}

// mergeToEndpoints sorts and merges a set of (possibly overlapping, possibly
// unsorted) half-open intervals into the flat alternating
// start,end,start,end... representation interval.UnionScanner expects.
func mergeToEndpoints(ivs [][2]interval.PosType) []interval.PosType {
	sorted := append([][2]interval.PosType{}, ivs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })

	var endpoints []interval.PosType
	curBeg, curEnd := sorted[0][0], sorted[0][1]
	for _, iv := range sorted[1:] {
		if iv[0] > curEnd {
			endpoints = append(endpoints, curBeg, curEnd)
			curBeg, curEnd = iv[0], iv[1]
			continue
		}
		if iv[1] > curEnd {
			curEnd = iv[1]
		}
	}
	endpoints = append(endpoints, curBeg, curEnd)
	return endpoints
}
