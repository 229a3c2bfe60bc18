package analytics

import (
	"slices"

	"github.com/rewired-gh/luckylogic/internal/models"
)

// FrequencyCounter tallies every main number and star across draws.
// Repeated values inside one draw are counted each time they appear.
func FrequencyCounter(draws []models.Draw) (main, star Table) {
	main = NewTable(MainDomain, 0)
	star = NewTable(StarDomain, 0)
	for _, d := range draws {
		for _, n := range d.Numbers {
			if MainDomain.Contains(n) {
				main.add(n)
			}
		}
		for _, s := range d.Stars {
			if StarDomain.Contains(s) {
				star.add(s)
			}
		}
	}
	return main, star
}

// OverdueGaps returns, per value, the index of the newest draw containing it.
// Values never seen get len(draws)+1.
//
// draws must already be ordered newest first (see draws.Prepare); the order is
// taken as given.
func OverdueGaps(draws []models.Draw) (main, star Table) {
	sentinel := len(draws) + 1
	main = NewTable(MainDomain, sentinel)
	star = NewTable(StarDomain, sentinel)
	for idx, d := range draws {
		for _, n := range d.Numbers {
			if MainDomain.Contains(n) && main.Get(n) == sentinel {
				main.set(n, idx)
			}
		}
		for _, s := range d.Stars {
			if StarDomain.Contains(s) && star.Get(s) == sentinel {
				star.set(s, idx)
			}
		}
	}
	return main, star
}

// RecentDraw summarises the newest draw of a window.
type RecentDraw struct {
	Date    string `json:"date"`
	Numbers []int  `json:"numbers"`
	Stars   []int  `json:"stars"`
}

// Recent returns the first draw of a newest-first window with sorted values.
func Recent(draws []models.Draw) RecentDraw {
	if len(draws) == 0 {
		return RecentDraw{Date: "unknown", Numbers: []int{}, Stars: []int{}}
	}
	latest := draws[0]
	nums := slices.Clone(latest.Numbers)
	stars := slices.Clone(latest.Stars)
	slices.Sort(nums)
	slices.Sort(stars)
	if nums == nil {
		nums = []int{}
	}
	if stars == nil {
		stars = []int{}
	}
	return RecentDraw{Date: latest.DateKey(), Numbers: nums, Stars: stars}
}

// Insights bundles the tables and top-N lists computed for one history window.
type Insights struct {
	Draws       int        `json:"draws"`
	MainCounts  Table      `json:"-"`
	StarCounts  Table      `json:"-"`
	MainGap     Table      `json:"-"`
	StarGap     Table      `json:"-"`
	HotMain     []int      `json:"hot_main"`
	HotStars    []int      `json:"hot_stars"`
	ColdMain    []int      `json:"cold_main"`
	ColdStars   []int      `json:"cold_stars"`
	OverdueMain []int      `json:"overdue_main"`
	OverdueStar []int      `json:"overdue_stars"`
	Recent      RecentDraw `json:"recent"`
}

// Compute builds Insights for a newest-first window. Star lists are capped at 3.
func Compute(draws []models.Draw, topN int) Insights {
	mainCounts, starCounts := FrequencyCounter(draws)
	mainGap, starGap := OverdueGaps(draws)
	starN := min(topN, 3)
	return Insights{
		Draws:       len(draws),
		MainCounts:  mainCounts,
		StarCounts:  starCounts,
		MainGap:     mainGap,
		StarGap:     starGap,
		HotMain:     TopN(mainCounts, topN, true),
		HotStars:    TopN(starCounts, starN, true),
		ColdMain:    TopN(mainCounts, topN, false),
		ColdStars:   TopN(starCounts, starN, false),
		OverdueMain: TopN(mainGap, topN, true),
		OverdueStar: TopN(starGap, starN, true),
		Recent:      Recent(draws),
	}
}
