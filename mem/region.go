package mem

import "sort"

// DedupRegions sorts a read's alignment regions by (-score, rb asc, qb
// asc), collapses consecutive duplicates sharing (score, rb, qb), and
// marks primary vs secondary by query-overlap domination, per C5.
func DedupRegions(regions []AlignRegion, opt *Options) []AlignRegion {
	if len(regions) == 0 {
		return regions
	}

	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i], regions[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.RB != b.RB {
			return a.RB < b.RB
		}
		return a.QB < b.QB
	})

	deduped := regions[:1]
	for _, r := range regions[1:] {
		last := &deduped[len(deduped)-1]
		if r.Score == last.Score && r.RB == last.RB && r.QB == last.QB {
			continue // exact duplicate, collapse
		}
		deduped = append(deduped, r)
	}

	markPrimary(deduped, opt)
	markCSub(deduped)
	return deduped
}

// markPrimary walks regions in their sorted (best-first) order and assigns
// each one either primary status (Secondary == -1) or a dominating
// primary's index, following the overlap rule in C5.
func markPrimary(regions []AlignRegion, opt *Options) {
	threshold := int(opt.A) + int(opt.B)
	if gapSum := opt.GapOpen + opt.GapExt; gapSum > threshold {
		threshold = gapSum
	}

	var primaries []int
	for i := range regions {
		regions[i].Secondary = -1
		dominated := false
		for _, j := range primaries {
			lo := maxInt(regions[i].QB, regions[j].QB)
			hi := minInt(regions[i].QE, regions[j].QE)
			minLen := minInt(regions[i].QE-regions[i].QB, regions[j].QE-regions[j].QB)
			if float64(hi-lo) >= opt.MaskLevel*float64(minLen) {
				regions[i].Secondary = j
				if regions[j].Sub == 0 {
					regions[j].Sub = regions[i].Score
				}
				if regions[j].Score-regions[i].Score <= threshold {
					regions[j].SubN++
				}
				dominated = true
				break
			}
		}
		if !dominated {
			primaries = append(primaries, i)
		}
	}
}

// markCSub fills each region's CSub with the best score among the read's
// other regions that came from a different chain, regardless of query
// overlap. This is independent evidence that the read may belong elsewhere
// on the reference, which Sub (overlap-only) cannot see: two regions can
// come from non-overlapping chains entirely (e.g. a repeat copy) and still
// compete for the read.
func markCSub(regions []AlignRegion) {
	for i := range regions {
		best := 0
		for j := range regions {
			if j == i || regions[j].Chain == regions[i].Chain {
				continue
			}
			if regions[j].Score > best {
				best = regions[j].Score
			}
		}
		regions[i].CSub = best
	}
}
