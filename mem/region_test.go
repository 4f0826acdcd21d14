package mem

import "testing"

func TestDedupRegionsCollapsesExactDuplicates(t *testing.T) {
	opt := DefaultOptions()
	regions := []AlignRegion{
		{QB: 0, QE: 50, RB: 1000, RE: 1050, Score: 50},
		{QB: 0, QE: 50, RB: 1000, RE: 1050, Score: 50}, // exact duplicate
	}
	out := DedupRegions(regions, &opt)
	if len(out) != 1 {
		t.Fatalf("expected duplicates collapsed to 1 region, got %d", len(out))
	}
}

func TestDedupRegionsSortsByScoreDesc(t *testing.T) {
	opt := DefaultOptions()
	regions := []AlignRegion{
		{QB: 0, QE: 50, RB: 1000, RE: 1050, Score: 30},
		{QB: 0, QE: 50, RB: 2000, RE: 2050, Score: 50},
	}
	out := DedupRegions(regions, &opt)
	if out[0].Score != 50 {
		t.Fatalf("expected highest-score region first, got %+v", out[0])
	}
}

func TestMarkPrimaryDesignatesSecondary(t *testing.T) {
	opt := DefaultOptions()
	opt.MaskLevel = 0.5
	// Two regions with heavily overlapping query spans: the lower-score
	// one should be marked secondary, dominated by the higher-score one.
	regions := []AlignRegion{
		{QB: 0, QE: 50, RB: 1000, RE: 1050, Score: 50},
		{QB: 0, QE: 50, RB: 2000, RE: 2050, Score: 40},
	}
	out := DedupRegions(regions, &opt)
	if out[0].Secondary != -1 {
		t.Fatalf("expected best region to be primary, got Secondary=%d", out[0].Secondary)
	}
	if out[1].Secondary != 0 {
		t.Fatalf("expected second region to be secondary to index 0, got %d", out[1].Secondary)
	}
	if out[0].Sub != 40 {
		t.Fatalf("expected primary's Sub to be set to the secondary's score, got %d", out[0].Sub)
	}
}

func TestDedupRegionsSetsCSubFromDifferentChain(t *testing.T) {
	opt := DefaultOptions()
	// Two non-overlapping, non-dominating regions from distinct chains: each
	// is primary, but each should see the other's score as CSub since they
	// come from different chains, even though neither overlaps the other.
	regions := []AlignRegion{
		{QB: 0, QE: 50, RB: 1000, RE: 1050, Score: 50, Chain: 0},
		{QB: 200, QE: 250, RB: 9000, RE: 9050, Score: 45, Chain: 1},
	}
	out := DedupRegions(regions, &opt)
	if out[0].CSub != 45 {
		t.Fatalf("expected best region's CSub = 45 (other chain's score), got %d", out[0].CSub)
	}
	if out[1].CSub != 50 {
		t.Fatalf("expected second region's CSub = 50 (other chain's score), got %d", out[1].CSub)
	}
}

func TestDedupRegionsCSubIgnoresSameChain(t *testing.T) {
	opt := DefaultOptions()
	opt.MaskLevel = 0.5
	// Two regions sharing a chain index: neither should contribute to the
	// other's CSub, since CSub is specifically cross-chain evidence.
	regions := []AlignRegion{
		{QB: 0, QE: 50, RB: 1000, RE: 1050, Score: 50, Chain: 0},
		{QB: 200, QE: 250, RB: 9000, RE: 9050, Score: 45, Chain: 0},
	}
	out := DedupRegions(regions, &opt)
	if out[0].CSub != 0 || out[1].CSub != 0 {
		t.Fatalf("expected CSub = 0 for same-chain-only regions, got %d and %d", out[0].CSub, out[1].CSub)
	}
}

func TestMarkPrimaryChimericReadBothPrimary(t *testing.T) {
	opt := DefaultOptions()
	opt.MaskLevel = 0.5
	// Disjoint query spans (chimeric read): neither should dominate the
	// other.
	regions := []AlignRegion{
		{QB: 0, QE: 50, RB: 1000, RE: 1050, Score: 50},
		{QB: 50, QE: 100, RB: 5000, RE: 5050, Score: 50},
	}
	out := DedupRegions(regions, &opt)
	for i, r := range out {
		if r.Secondary != -1 {
			t.Fatalf("region %d: expected primary (disjoint chimeric spans), got Secondary=%d", i, r.Secondary)
		}
	}
}
