// Package explain scores a generated line against the history window and
// produces short human-readable reasons for it.
package explain

import (
	"fmt"
	"slices"

	"github.com/rewired-gh/luckylogic/internal/analytics"
	"github.com/rewired-gh/luckylogic/internal/strategy"
)

const (
	baseScore  = 55
	maxReasons = 4

	lowHighSplit = 25
	wideSpread   = 25
	hotSetSize   = 10
	coldSetSize  = 10
	dueSetSize   = 10
	hotStarsSize = 4

	NotEnoughNumbers = "Not enough valid numbers to explain this line."
)

// Signals are the line features the score is built from.
type Signals struct {
	HotHits         int `json:"hot_hits"`
	ColdHits        int `json:"cold_hits"`
	OverdueHits     int `json:"overdue_hits"`
	LowCount        int `json:"low_count"`
	HighCount       int `json:"high_count"`
	Spread          int `json:"spread"`
	SequentialPairs int `json:"sequential_pairs"`
}

// ExplainLine returns a 0-100 heuristic score and up to four reasons.
// Main numbers outside [1,50] and repeats are ignored; with fewer than two
// valid main numbers the score is 0.
func ExplainLine(main, stars []int, mainCounts, starCounts, mainGap analytics.Table, strategyName string) (int, []string) {
	nums := validSorted(main, analytics.MainDomain)
	if len(nums) < 2 {
		return 0, []string{NotEnoughNumbers}
	}

	sig := Measure(nums, mainCounts, mainGap)
	score := Score(sig)

	reasons := make([]string, 0, 5)
	if lead := strategyReason(strategyName); lead != "" {
		reasons = append(reasons, lead)
	}
	reasons = append(reasons,
		fmt.Sprintf("Includes %d hot and %d overdue main numbers.", sig.HotHits, sig.OverdueHits),
		fmt.Sprintf("Range spread is %d with low/high split %d/%d.", sig.Spread, sig.LowCount, sig.HighCount),
	)
	if sig.SequentialPairs == 0 {
		reasons = append(reasons, "Avoids sequential clusters, a common human pick pattern.")
	} else {
		reasons = append(reasons, fmt.Sprintf("Contains %d sequential pair(s), keeping some natural adjacency.", sig.SequentialPairs))
	}

	if safeStars := validSorted(stars, analytics.StarDomain); len(safeStars) > 0 {
		hotStars := analytics.TopN(starCounts, hotStarsSize, true)
		reasons = append(reasons, fmt.Sprintf("Lucky stars include %d from the recent high-frequency group.", countIn(safeStars, hotStars)))
	}

	return score, reasons[:min(len(reasons), maxReasons)]
}

// Measure computes Signals for sorted, unique main numbers.
func Measure(nums []int, mainCounts, mainGap analytics.Table) Signals {
	sig := Signals{
		HotHits:     countIn(nums, analytics.TopN(mainCounts, hotSetSize, true)),
		ColdHits:    countIn(nums, analytics.TopN(mainCounts, coldSetSize, false)),
		OverdueHits: countIn(nums, analytics.TopN(mainGap, dueSetSize, true)),
	}
	if len(nums) == 0 {
		return sig
	}
	for i, n := range nums {
		if n <= lowHighSplit {
			sig.LowCount++
		}
		if i > 0 && n-nums[i-1] == 1 {
			sig.SequentialPairs++
		}
	}
	sig.HighCount = len(nums) - sig.LowCount
	sig.Spread = nums[len(nums)-1] - nums[0]
	return sig
}

// Score applies the fixed bonuses to the base score, clamped to [0,100].
func Score(sig Signals) int {
	score := baseScore
	if sig.LowCount >= 2 && sig.LowCount <= 3 {
		score += 12
	}
	if sig.Spread >= wideSpread {
		score += 10
	}
	if sig.SequentialPairs == 0 {
		score += 8
	}
	if sig.HotHits >= 2 {
		score += 8
	}
	if sig.ColdHits >= 1 {
		score += 4
	}
	if sig.OverdueHits >= 1 {
		score += 6
	}
	return min(100, max(0, score))
}

func strategyReason(name string) string {
	switch name {
	case strategy.Balanced:
		return "Built to distribute picks across number decades."
	case strategy.Overdue:
		return "Prioritizes numbers with the longest gaps since last appearance."
	case strategy.Cold:
		return "Leans into less frequent historical outcomes."
	default:
		return ""
	}
}

func validSorted(values []int, d analytics.Domain) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if d.Contains(v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func countIn(values, set []int) int {
	n := 0
	for _, v := range values {
		if slices.Contains(set, v) {
			n++
		}
	}
	return n
}
