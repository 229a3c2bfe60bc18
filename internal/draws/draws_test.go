package draws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/luckylogic/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_CoercesStringsAndFloats(t *testing.T) {
	d, ok := Normalize([]byte(`{"date":"2026-03-03","numbers":["1","02",3.0],"stars":[1,"x",null,2.9]}`), "test")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, d.Numbers)
	assert.Equal(t, []int{1, 2}, d.Stars)
	assert.Equal(t, date(2026, 3, 3), d.Date)
	assert.Equal(t, "test", d.Source)
}

func TestNormalize_MissingFields(t *testing.T) {
	d, ok := Normalize([]byte(`{}`), "")
	require.True(t, ok)
	assert.Empty(t, d.Numbers)
	assert.Empty(t, d.Stars)
	assert.False(t, d.HasDate())
	assert.Nil(t, d.Jackpot)

	_, ok = Normalize([]byte(`[1,2,3]`), "")
	assert.False(t, ok)
}

func TestParseDate_MinutePrecision(t *testing.T) {
	for _, s := range []string{"2026-03-03T20:00", "2026-03-03 20:00", " 2026-03-03T20:00 "} {
		assert.Equal(t, date(2026, 3, 3), ParseDate(s), s)
	}
}

func TestNormalize_DuplicatesKept(t *testing.T) {
	d, _ := Normalize([]byte(`{"numbers":[7,7,8]}`), "")
	assert.Equal(t, []int{7, 7, 8}, d.Numbers)
}

func TestNormalize_DateKeyVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{`{"date":"2026-03-03"}`, date(2026, 3, 3)},
		{`{"drawDate":"01/03/2026"}`, date(2026, 3, 1)},
		{`{"draw_date":"2026-03-07T00:00:00Z"}`, date(2026, 3, 7)},
		{`{"date":"2026-03-07T21:00:00+01:00"}`, date(2026, 3, 7)},
		{`{"date":"2026-03-03T20:00"}`, date(2026, 3, 3)},
		{`{"drawDate":"2026-03-03 20:00"}`, date(2026, 3, 3)},
		{`{"date":"not a date","drawDate":"2026-01-02"}`, date(2026, 1, 2)},
		{`{"date":"garbage"}`, time.Time{}},
		{`{"date":20260303}`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, _ := Normalize([]byte(tt.raw), "")
			assert.Equal(t, tt.want, d.Date)
		})
	}
}

func TestNormalize_JackpotAndDrawID(t *testing.T) {
	d, _ := Normalize([]byte(`{"jackpotAmount":"£17,000,000","drawNo":1234}`), "")
	require.NotNil(t, d.Jackpot)
	assert.Equal(t, int64(17000000), *d.Jackpot)
	assert.Equal(t, "1234", d.DrawID)

	d, _ = Normalize([]byte(`{"estimatedJackpot":null,"jackpot":130000000}`), "")
	require.NotNil(t, d.Jackpot)
	assert.Equal(t, int64(130000000), *d.Jackpot)

	d, _ = Normalize([]byte(`{"jackpot":"n/a"}`), "")
	assert.Nil(t, d.Jackpot)
}

func TestNormalizeAll(t *testing.T) {
	ds := NormalizeAll([]byte(`[{"date":"2026-03-03","numbers":[1]}, 5, "x", {"numbers":[2]}]`), "api")
	require.Len(t, ds, 2)
	assert.Equal(t, []int{1}, ds[0].Numbers)
	assert.Equal(t, []int{2}, ds[1].Numbers)

	assert.Empty(t, NormalizeAll([]byte(`{"draws":[]}`), "api"))
	assert.Empty(t, NormalizeAll([]byte(`not json`), "api"))
}

func TestPrepare_SortsNewestFirstUnknownLast(t *testing.T) {
	raw := `[
		{"date":"2026-03-03","numbers":[1,"2",3],"stars":[1,"2"]},
		{"numbers":[40],"stars":[]},
		{"drawDate":"01/03/2026","numbers":[5,6,7],"stars":[3,4]},
		{"draw_date":"2026-03-07T00:00:00Z","numbers":[8,9,10],"stars":[5,6]}
	]`
	prepared := Prepare(NormalizeAll([]byte(raw), ""), 10)

	got := make([][]int, 0, len(prepared))
	for _, d := range prepared {
		got = append(got, d.Numbers)
	}
	assert.Equal(t, [][]int{{8, 9, 10}, {1, 2, 3}, {5, 6, 7}, {40}}, got)
}

func TestPrepare_TruncatesWithoutMutating(t *testing.T) {
	in := []models.Draw{
		{Date: date(2026, 1, 1)},
		{Date: date(2026, 1, 3)},
		{Date: date(2026, 1, 2)},
	}
	out := Prepare(in, 2)
	require.Len(t, out, 2)
	assert.Equal(t, date(2026, 1, 3), out[0].Date)
	assert.Equal(t, date(2026, 1, 2), out[1].Date)
	assert.Equal(t, date(2026, 1, 1), in[0].Date)

	assert.Len(t, Prepare(in, 0), 3)
}

func TestUpcomingDrawDates(t *testing.T) {
	ds := UpcomingDrawDates(date(2026, 3, 2), 2)
	require.Len(t, ds, 4)
	for _, d := range ds {
		assert.True(t, IsDrawDay(d), "%s is not a draw day", d)
	}
	assert.Equal(t, date(2026, 3, 3), ds[0])
	assert.Equal(t, date(2026, 3, 6), ds[1])

	assert.Len(t, UpcomingDrawDates(date(2026, 3, 2), 0), 2)
}

func TestNextDrawDate_SameDay(t *testing.T) {
	tue := time.Date(2026, 3, 3, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2026, 3, 3), NextDrawDate(tue))
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "Tue 03 Mar 2026", FormatLabel(date(2026, 3, 3)))
}
