package tickets

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/luckylogic/internal/models"
)

func TestCountMatches(t *testing.T) {
	line := models.Line{Main: []int{3, 11, 19, 27, 45}, Stars: []int{2, 9}}
	assert.Equal(t, 3, CountMatches(line, []int{11, 27, 42}, []int{9, 12}))
	assert.Equal(t, 0, CountMatches(line, nil, nil))
}

func TestNew(t *testing.T) {
	lines := []models.Line{
		{Main: []int{45, 3, 27, 11, 19}, Stars: []int{9, 2}},
		{Main: []int{1, 1, 2, 3, 4}, Stars: []int{1, 2}},
		{Main: []int{60, 1, 2, 3, 4}, Stars: []int{1, 2}},
	}
	tk := New(lines, "Hot Numbers", "03/03/2026", "")

	_, err := uuid.Parse(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketPending, tk.Status)
	assert.Equal(t, "2026-03-03", tk.DrawDate)
	assert.Equal(t, "Tue 03 Mar 2026", tk.DrawLabel)
	require.Len(t, tk.Lines, 1)
	assert.Equal(t, []int{3, 11, 19, 27, 45}, tk.Lines[0].Main)
	assert.Equal(t, []int{2, 9}, tk.Lines[0].Stars)
	assert.NoError(t, tk.Validate())
}

func TestNew_Defaults(t *testing.T) {
	tk := New(nil, "", "soon", "next draw")
	assert.Equal(t, "Unknown strategy", tk.Strategy)
	assert.Equal(t, "", tk.DrawDate)
	assert.Equal(t, "next draw", tk.DrawLabel)
	assert.Empty(t, tk.Lines)
}

func TestCheck(t *testing.T) {
	history := []models.Draw{
		{Date: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), Numbers: []int{5, 6, 7, 8, 9}, Stars: []int{5, 6}},
		{Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), Numbers: []int{11, 27, 42, 43, 44}, Stars: []int{9, 12}},
	}
	tk := models.Ticket{
		ID:       "t-1",
		DrawDate: "2026-03-03",
		Lines: []models.Line{
			{Main: []int{3, 11, 19, 27, 45}, Stars: []int{2, 9}},
			{Main: []int{1, 2, 3, 4, 5}, Stars: []int{1, 2}},
		},
	}

	res := Check(tk, history)
	require.True(t, res.Checked)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, []int{11, 27}, res.Lines[0].MatchedMains)
	assert.Equal(t, []int{9}, res.Lines[0].MatchedStars)
	assert.Equal(t, 3, res.Lines[0].Matches)
	assert.Equal(t, 0, res.Lines[1].Matches)
	assert.Equal(t, 3, res.BestMatch)
}

func TestCheck_Pending(t *testing.T) {
	tk := models.Ticket{
		ID:       "t-2",
		DrawDate: "2026-03-10",
		Lines:    []models.Line{{Main: []int{1, 2, 3, 4, 5}, Stars: []int{1, 2}}},
	}
	res := Check(tk, nil)
	assert.False(t, res.Checked)
	require.Len(t, res.Lines, 1)
	assert.False(t, res.Lines[0].Checked)
	assert.Equal(t, "Awaiting result for 2026-03-10", res.Lines[0].PendingReason)
}

func TestCheck_LimitsLines(t *testing.T) {
	tk := models.Ticket{ID: "t-3"}
	for range 8 {
		tk.Lines = append(tk.Lines, models.Line{Main: []int{1, 2, 3, 4, 5}, Stars: []int{1, 2}})
	}
	res := Check(tk, nil)
	assert.Len(t, res.Lines, MaxCheckedLines)
	assert.Equal(t, "No draw date set", res.Lines[0].PendingReason)
}
