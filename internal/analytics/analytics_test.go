package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/luckylogic/internal/models"
)

func draw(day int, numbers, stars []int) models.Draw {
	return models.Draw{
		Date:    time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		Numbers: numbers,
		Stars:   stars,
	}
}

func TestFrequencyCounter(t *testing.T) {
	main, star := FrequencyCounter([]models.Draw{
		{Numbers: []int{1, 2, 3, 4, 5}},
		{Numbers: []int{1, 2, 3, 4, 6}},
	})

	want := map[int]int{1: 2, 2: 2, 3: 2, 4: 2, 5: 1, 6: 1}
	for _, n := range main.Keys() {
		assert.Equal(t, want[n], main.Get(n), "count for %d", n)
	}
	assert.Len(t, main.Keys(), 50)
	assert.Len(t, star.Keys(), 12)
	assert.Equal(t, 0, star.Get(1))
}

func TestFrequencyCounter_CountsDuplicatesAndIgnoresOutOfRange(t *testing.T) {
	main, star := FrequencyCounter([]models.Draw{
		{Numbers: []int{7, 7, 51, 0, -3}, Stars: []int{13, 12, 12}},
	})
	assert.Equal(t, 2, main.Get(7))
	assert.Equal(t, 0, main.Get(51))
	assert.Equal(t, 2, star.Get(12))
	assert.Equal(t, 0, star.Get(13))
}

func TestOverdueGaps_SingleDraw(t *testing.T) {
	main, star := OverdueGaps([]models.Draw{draw(3, []int{1, 2, 3, 4, 5}, []int{1, 2})})

	for n := 1; n <= 50; n++ {
		want := 2
		if n <= 5 {
			want = 0
		}
		assert.Equal(t, want, main.Get(n), "main gap for %d", n)
	}
	for s := 1; s <= 12; s++ {
		want := 2
		if s <= 2 {
			want = 0
		}
		assert.Equal(t, want, star.Get(s), "star gap for %d", s)
	}
}

func TestOverdueGaps_FirstOccurrenceWins(t *testing.T) {
	history := []models.Draw{
		draw(10, []int{1, 2, 3, 4, 5}, []int{1, 2}),
		draw(7, []int{1, 10, 11, 12, 13}, []int{3, 2}),
		draw(3, []int{10, 20, 30, 40, 50}, []int{4, 5}),
	}
	main, star := OverdueGaps(history)

	assert.Equal(t, 0, main.Get(1))
	assert.Equal(t, 1, main.Get(10))
	assert.Equal(t, 2, main.Get(50))
	assert.Equal(t, 4, main.Get(49))
	assert.Equal(t, 0, star.Get(2))
	assert.Equal(t, 1, star.Get(3))
	assert.Equal(t, 2, star.Get(5))
	assert.Equal(t, 4, star.Get(12))
}

func TestOverdueGaps_Properties(t *testing.T) {
	histories := [][]models.Draw{
		nil,
		{draw(1, []int{9, 18, 27, 36, 45}, []int{6, 7})},
		{
			draw(9, []int{5, 15, 25, 35, 45}, []int{1, 12}),
			draw(6, []int{5, 6, 7, 8, 9}, []int{11, 12}),
			draw(2, []int{50, 49, 48, 47, 46}, []int{3, 4}),
		},
	}
	for _, h := range histories {
		main, star := OverdueGaps(h)
		seen := map[int]bool{}
		seenStar := map[int]bool{}
		for _, d := range h {
			for _, n := range d.Numbers {
				seen[n] = true
			}
			for _, s := range d.Stars {
				seenStar[s] = true
			}
		}
		if len(h) > 0 {
			for _, n := range h[0].Numbers {
				assert.Equal(t, 0, main.Get(n))
			}
			for _, s := range h[0].Stars {
				assert.Equal(t, 0, star.Get(s))
			}
		}
		for _, n := range main.Keys() {
			if !seen[n] {
				assert.Equal(t, len(h)+1, main.Get(n))
			}
		}
		for _, s := range star.Keys() {
			if !seenStar[s] {
				assert.Equal(t, len(h)+1, star.Get(s))
			}
		}
	}
}

func TestTopN(t *testing.T) {
	main, _ := FrequencyCounter([]models.Draw{
		{Numbers: []int{30, 30, 30, 4, 4, 17, 17}},
	})

	assert.Equal(t, []int{30, 4, 17}, TopN(main, 3, true))
	assert.Equal(t, []int{1, 2, 3}, TopN(main, 3, false))
	assert.Empty(t, TopN(main, 0, true))
	assert.Len(t, TopN(main, 100, true), 50)
}

func TestRecent(t *testing.T) {
	r := Recent([]models.Draw{draw(3, []int{9, 1, 5}, []int{2, 1})})
	assert.Equal(t, "2026-03-03", r.Date)
	assert.Equal(t, []int{1, 5, 9}, r.Numbers)
	assert.Equal(t, []int{1, 2}, r.Stars)

	empty := Recent(nil)
	assert.Equal(t, "unknown", empty.Date)
	assert.Empty(t, empty.Numbers)
}

func TestCompute(t *testing.T) {
	history := []models.Draw{
		draw(10, []int{1, 2, 3, 4, 5}, []int{1, 2}),
		draw(7, []int{1, 2, 3, 4, 6}, []int{1, 3}),
	}
	in := Compute(history, 5)

	require.Equal(t, 2, in.Draws)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, in.HotMain)
	assert.Len(t, in.HotStars, 3)
	assert.Equal(t, 1, in.HotStars[0])
	assert.Equal(t, []int{7, 8, 9, 10, 11}, in.ColdMain)
	assert.Equal(t, []int{7, 8, 9, 10, 11}, in.OverdueMain)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, in.Recent.Numbers)
}
