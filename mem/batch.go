package mem

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/Androniki/bwa/fmindex"
	"github.com/Androniki/bwa/ksw"
	"github.com/Androniki/bwa/refseq"
)

// PEStats is the mem_sam_pe/mem_pestat external collaborator: paired-end
// insert-size estimation and mate rescue, kept as an interface so it can be
// swapped in without touching the core pipeline. AlignBatch uses it only
// when opt.Flag has FlagPE set and stats is non-nil: Estimate runs once
// between the passes, and Rescue runs once per mate pair in Pass 2, before
// that pair's records are formatted; Rescue's return value is not used.
type PEStats interface {
	Estimate(pacLen uint64, regions [][]AlignRegion) [4]InsertStat
	Rescue(stats [4]InsertStat, ref refseq.Reference, mate [2]*Read, regs [2][]AlignRegion) int
}

// InsertStat is one of the four FR/FF/RF/RR orientation insert-size
// estimates PEStats.Estimate produces.
type InsertStat struct {
	Mean, Std float64
	Low, High int
	Failed    bool
}

// Result is one read's final output: the formatted SAM line plus the
// region chosen for it (nil if unmapped), used by callers that want to
// inspect alignments rather than just the text.
type Result struct {
	SAMLine string
	Region  *AlignRegion
}

// AlignBatch runs the two-pass pipeline over reads: Pass 1 (C1-C5) builds
// per-read region vectors in parallel; an optional external paired-end
// estimation step runs between passes; Pass 2 (C6-C8) produces SAM text.
// Work is partitioned by static round-robin over opt.NThreads, and pairs
// (2i, 2i+1) are always processed together in Pass 2 when opt.Flag has
// FlagPE set.
func AlignBatch(reads []Read, index fmindex.Index, ref refseq.Reference, aligner ksw.Aligner, opt *Options, stats PEStats) ([]Result, error) {
	n := len(reads)
	regions := make([][]AlignRegion, n)

	parallelism := opt.NThreads
	if parallelism < 1 {
		parallelism = 1
	}

	if err := traverse.Each(parallelism, func(thread int) error {
		for i := thread; i < n; i += parallelism {
			regions[i] = pass1(reads[i], index, ref, aligner, opt)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	paired := opt.Flag&FlagPE != 0
	var insertStats [4]InsertStat
	if paired && stats != nil {
		insertStats = stats.Estimate(ref.PacLen(), regions)
	}

	// perRead holds every read's pass2 output (possibly more than one SAM
	// line for a chimeric/split read) before the final flatten, so the
	// parallel workers below never contend over a shared append target.
	perRead := make([][]Result, n)
	isHard := opt.Flag&FlagHardClip != 0

	if err := traverse.Each(parallelism, func(thread int) error {
		if paired {
			for pairIdx := thread; 2*pairIdx+1 < n; pairIdx += parallelism {
				i, j := 2*pairIdx, 2*pairIdx+1
				if stats != nil {
					stats.Rescue(insertStats, ref, [2]*Read{&reads[i], &reads[j]}, [2][]AlignRegion{regions[i], regions[j]})
				}
				perRead[i] = pass2(&reads[i], regions[i], &reads[j], regions[j], ref, aligner, opt, isHard, true)
				perRead[j] = pass2(&reads[j], regions[j], &reads[i], regions[i], ref, aligner, opt, isHard, true)
			}
			return nil
		}
		for i := thread; i < n; i += parallelism {
			perRead[i] = pass2(&reads[i], regions[i], nil, nil, ref, aligner, opt, isHard, false)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	total := 0
	for _, rs := range perRead {
		total += len(rs)
	}
	results := make([]Result, 0, total)
	for _, rs := range perRead {
		results = append(results, rs...)
	}
	return results, nil
}

// pass1 runs C1-C5 for a single read: seeding, chaining, chain filtering,
// extension, and region dedup/primary-marking.
func pass1(r Read, index fmindex.Index, ref refseq.Reference, aligner ksw.Aligner, opt *Options) []AlignRegion {
	if len(r.Seq) < opt.MinSeedLen {
		return nil
	}
	chains := BuildChains(index, r.Seq, opt)
	if len(chains) == 0 {
		return nil
	}
	chains = FilterChains(chains, opt)
	if Verbosity() >= VerboseDebug {
		log.Debug.Printf("mem: read %s: %d chains after filtering", r.Name, len(chains))
	}

	var regions []AlignRegion
	for ci, c := range chains {
		for _, reg := range ExtendChain(c, r.Seq, ref, aligner, opt) {
			reg.Chain = ci
			regions = append(regions, reg)
		}
	}
	if len(regions) == 0 {
		return nil
	}
	return DedupRegions(regions, opt)
}

// pass2 runs C6-C8 for a single read against its Pass-1 regions (and, in
// paired mode, the mate's). A read ordinarily produces one SAM line, but a
// chimeric read can carry more than one primary region (C5 marks distinct,
// non-overlapping loci all primary), so pass2 emits one line per primary;
// an unmapped read still produces exactly one unmapped record.
func pass2(r *Read, regions []AlignRegion, mate *Read, mateRegions []AlignRegion, ref refseq.Reference, aligner ksw.Aligner, opt *Options, isHard, paired bool) []Result {
	primaries := primaryRegions(regions)
	matePrimary := choosePrimary(mateRegions)

	if len(primaries) == 0 {
		in := RecordInput{Read: r, MateRegion: matePrimary, Paired: paired}
		return []Result{{SAMLine: WriteSAM(in, ref, ClippedCigar{}, 0), Region: nil}}
	}

	results := make([]Result, 0, len(primaries))
	for _, primary := range primaries {
		cigar := GenerateCigar(*primary, r.Seq, ref, aligner, opt, isHard)
		mapq := 0
		if cigar.Valid {
			mapq = EstimateMapq(*primary, opt)
		}
		in := RecordInput{
			Read:       r,
			Region:     primary,
			MateRegion: matePrimary,
			Paired:     paired,
		}
		results = append(results, Result{SAMLine: WriteSAM(in, ref, cigar, mapq), Region: primary})
	}
	return results
}

// choosePrimary returns the best-scoring primary region (Secondary == -1),
// or nil if regions is empty or every region is secondary. Regions are
// score-sorted by DedupRegions, so the first primary encountered is also
// the highest-scoring one; it is used as the single representative locus
// for mate-field (RNEXT/PNEXT) purposes even when the mate itself is
// chimeric and has more than one primary of its own.
func choosePrimary(regions []AlignRegion) *AlignRegion {
	for i := range regions {
		if regions[i].Secondary == -1 {
			return &regions[i]
		}
	}
	return nil
}

// primaryRegions returns every region marked primary (Secondary == -1), in
// the score-sorted order DedupRegions leaves them in.
func primaryRegions(regions []AlignRegion) []*AlignRegion {
	var primaries []*AlignRegion
	for i := range regions {
		if regions[i].Secondary == -1 {
			primaries = append(primaries, &regions[i])
		}
	}
	return primaries
}
