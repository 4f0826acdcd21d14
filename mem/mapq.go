package mem

import "math"

// mapqCoef is MEM_MAPQ_COEF, the tuned phred-scale coefficient.
const mapqCoef = 30.0

// EstimateMapq computes an approximate phred-scaled mapping quality from a
// region's score margin and seed coverage, per C7.
func EstimateMapq(a AlignRegion, opt *Options) int {
	subEff := int(opt.MinSeedLen) * int(opt.A)
	if a.Sub != 0 {
		subEff = a.Sub
	}
	if a.CSub > subEff {
		subEff = a.CSub
	}
	if subEff >= a.Score {
		return 0
	}
	if a.Seedcov <= 0 {
		return 0
	}

	l := a.Len()
	mapqF := mapqCoef * (1 - float64(subEff)/float64(a.Score)) * math.Log(float64(a.Seedcov))
	mapq := int(math.Round(mapqF))

	identity := 1 - float64(l*int(opt.A)-a.Score)/(float64(int(opt.A)+int(opt.B))*float64(l))
	if identity < 0.95 {
		mapq = int(math.Round(float64(mapq) * identity * identity))
	}
	if a.SubN > 0 {
		mapq -= int(math.Round(4.343 * math.Log(float64(a.SubN))))
	}

	if mapq < 0 {
		mapq = 0
	}
	if mapq > 60 {
		mapq = 60
	}
	return mapq
}
