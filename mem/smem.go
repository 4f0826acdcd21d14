package mem

import "github.com/Androniki/bwa/fmindex"

// smemIterator groups the inputs of C1's init/set_query/next protocol. The
// pipeline does not drive it: collectSmems runs that protocol to completion
// in a single call, since the pipeline never needs to pause mid-query
// between workers.
type smemIterator struct {
	index fmindex.Index
	query []byte
	opt   *Options
}

// collectSmems runs the SMEM iterator to completion over query, returning
// every interval batch the underlying index produces. Ambiguous bases at
// the cursor are skipped here, since fmindex.Index leaves that to the
// caller. Batches with occurrence count above MaxOcc or a matched length
// below MinSeedLen are still returned here; filtering them is the chainer's
// job. C1 itself bounds match length to MaxSeedLen and calls Smem1 with a
// minimum interval size of 1, so a match keeps extending while it still
// occurs at least once; Options.MinIntv is not read here. The interval
// slice returned by one Smem1 call is handed back as dst for the next.
func collectSmems(index fmindex.Index, query []byte, opt *Options) []fmindex.Interval {
	var all []fmindex.Interval
	var dst []fmindex.Interval
	cursor := 0
	for cursor < len(query) {
		if query[cursor] > 3 {
			cursor++
			continue
		}
		var ivs []fmindex.Interval
		cursor, ivs = index.Smem1(query, cursor, opt.MaxSeedLen, 1, dst)
		all = append(all, ivs...)
		dst = ivs
	}
	return all
}
