package strategy

import (
	"math/rand/v2"
	"slices"

	"github.com/rewired-gh/luckylogic/internal/analytics"
	"github.com/rewired-gh/luckylogic/internal/models"
)

// weighted samples by historical frequency. Hot draws only from values seen in
// the window, weighted by count, and tops up uniformly from unseen values when
// fewer than k were seen. With invert set, every value of the domain competes
// with weight (max - count + 1) over the pool that remains, so unseen values
// weigh the most.
type weighted struct {
	name   string
	invert bool
}

func (w weighted) Name() string { return w.name }

func (w weighted) Build(h History, rng *rand.Rand) models.Line {
	return models.NewLine(
		weightedUniquePick(h.MainCounts, models.MainPerLine, w.invert, rng),
		weightedUniquePick(h.StarCounts, models.StarsPerLine, w.invert, rng),
	)
}

type poolEntry struct {
	value  int
	weight int
}

func weightedUniquePick(t analytics.Table, k int, invert bool, rng *rand.Rand) []int {
	var pool, unseen []poolEntry
	for _, n := range t.Keys() {
		e := poolEntry{value: n, weight: t.Get(n)}
		if e.weight <= 0 && !invert {
			unseen = append(unseen, poolEntry{value: n, weight: 1})
			continue
		}
		pool = append(pool, e)
	}

	picked := make([]int, 0, k)
	for len(picked) < k {
		if len(pool) == 0 {
			if len(unseen) == 0 {
				break
			}
			pool, unseen = unseen, nil
		}
		weights := make([]int, len(pool))
		maxWeight := 0
		for i, e := range pool {
			weights[i] = e.weight
			maxWeight = max(maxWeight, e.weight)
		}
		if invert {
			for i := range weights {
				weights[i] = maxWeight - weights[i] + 1
			}
		}

		idx := weightedIndex(weights, rng)
		picked = append(picked, pool[idx].value)
		pool = slices.Delete(pool, idx, idx+1)
	}
	slices.Sort(picked)
	return picked
}

// weightedIndex picks i with probability weights[i]/sum. All weights are >= 1.
func weightedIndex(weights []int, rng *rand.Rand) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := rng.IntN(total)
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

type overdue struct{}

func (overdue) Name() string { return Overdue }

func (overdue) Build(h History, _ *rand.Rand) models.Line {
	return models.NewLine(
		analytics.TopN(h.MainGap, models.MainPerLine, true),
		analytics.TopN(h.StarGap, models.StarsPerLine, true),
	)
}

var (
	decades     = [][2]int{{1, 10}, {11, 20}, {21, 30}, {31, 40}, {41, 50}}
	starBuckets = [][2]int{{1, 6}, {7, 12}}
)

// balanced takes one uniform pick per decade and one star from each half.
type balanced struct{}

func (balanced) Name() string { return Balanced }

func (balanced) Build(_ History, rng *rand.Rand) models.Line {
	return models.NewLine(bucketPick(decades, rng), bucketPick(starBuckets, rng))
}

func bucketPick(buckets [][2]int, rng *rand.Rand) []int {
	out := make([]int, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b[0]+rng.IntN(b[1]-b[0]+1))
	}
	return out
}

// blend samples uniformly from hot and overdue leaders plus the whole domain.
type blend struct{}

func (blend) Name() string { return AIMode }

func (blend) Build(h History, rng *rand.Rand) models.Line {
	mainPool := candidatePool(
		head(analytics.TopN(h.MainCounts, 12, true), 6),
		head(analytics.TopN(h.MainGap, 12, true), 6),
		analytics.MainDomain,
	)
	starPool := candidatePool(
		head(analytics.TopN(h.StarCounts, 6, true), 3),
		head(analytics.TopN(h.StarGap, 6, true), 3),
		analytics.StarDomain,
	)
	return models.NewLine(
		uniformSample(mainPool, models.MainPerLine, rng),
		uniformSample(starPool, models.StarsPerLine, rng),
	)
}

func head(s []int, n int) []int {
	return s[:min(n, len(s))]
}

func candidatePool(hot, overdue []int, d analytics.Domain) []int {
	pool := slices.Concat(hot, overdue, d.Values())
	slices.Sort(pool)
	return slices.Compact(pool)
}

// uniformSample draws min(k, len(pool)) distinct items with a partial shuffle.
func uniformSample(pool []int, k int, rng *rand.Rand) []int {
	items := slices.Clone(pool)
	k = min(k, len(items))
	for i := range k {
		j := i + rng.IntN(len(items)-i)
		items[i], items[j] = items[j], items[i]
	}
	out := items[:k]
	slices.Sort(out)
	return out
}
