package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/luckylogic/internal/models"
	"github.com/rewired-gh/luckylogic/internal/tickets"
)

type fakeRefresher struct {
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(context.Context) ([]models.Draw, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.Draw{{
		Date:    time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Numbers: []int{1, 2, 3, 4, 5},
		Stars:   []int{1, 2},
	}}, nil
}

type fakeChecker struct {
	results []tickets.Result
	err     error
	calls   int
}

func (f *fakeChecker) CheckTickets(context.Context) ([]tickets.Result, error) {
	f.calls++
	return f.results, f.err
}

type fakeNotifier struct {
	errors     []error
	recoveries []int
	checked    [][]tickets.Result
}

func (f *fakeNotifier) SendError(err error) error {
	f.errors = append(f.errors, err)
	return nil
}

func (f *fakeNotifier) SendRecovery(n int) error {
	f.recoveries = append(f.recoveries, n)
	return nil
}

func (f *fakeNotifier) SendCheckResults(r []tickets.Result) error {
	f.checked = append(f.checked, r)
	return nil
}

type fakeRecorder struct {
	runs map[bool]int
}

func (f *fakeRecorder) JobRun(job string, success bool) {
	if f.runs == nil {
		f.runs = map[bool]int{}
	}
	f.runs[success]++
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Cron: "not a cron"}, &fakeRefresher{}, &fakeChecker{}, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{Timezone: "Nowhere/Special"}, &fakeRefresher{}, &fakeChecker{}, nil, nil)
	assert.Error(t, err)

	s, err := New(Config{}, &fakeRefresher{}, &fakeChecker{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Cron, s.schedule)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestNextRunIsDrawNight(t *testing.T) {
	s, err := New(DefaultConfig(), &fakeRefresher{}, &fakeChecker{}, nil, nil)
	require.NoError(t, err)

	sched, err := cron.ParseStandard(s.schedule)
	require.NoError(t, err)
	loc, _ := time.LoadLocation("Europe/London")
	next := sched.Next(time.Date(2026, 3, 2, 12, 0, 0, 0, loc))
	assert.Equal(t, time.Tuesday, next.Weekday())
	assert.Equal(t, 22, next.Hour())
	assert.Equal(t, 30, next.Minute())

	next = sched.Next(next)
	assert.Equal(t, time.Friday, next.Weekday())
}

func TestRunOnce_Success(t *testing.T) {
	results := []tickets.Result{{TicketID: "t-1", Checked: true, BestMatch: 2}}
	ref := &fakeRefresher{}
	chk := &fakeChecker{results: results}
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	s, err := New(Config{}, ref, chk, n, rec)
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, 1, chk.calls)
	require.Len(t, n.checked, 1)
	assert.Equal(t, results, n.checked[0])
	assert.Empty(t, n.errors)
	assert.Equal(t, 1, rec.runs[true])
}

func TestRunOnce_FailureStreak(t *testing.T) {
	ref := &fakeRefresher{err: errors.New("upstream down")}
	chk := &fakeChecker{}
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	s, err := New(Config{}, ref, chk, n, rec)
	require.NoError(t, err)

	for range 3 {
		assert.Error(t, s.RunOnce(context.Background()))
	}
	assert.Equal(t, 3, s.ConsecutiveFailures())
	assert.Len(t, n.errors, 1, "only the first failure of a streak notifies")
	assert.Equal(t, 0, chk.calls)
	assert.Equal(t, 3, rec.runs[false])

	ref.err = nil
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 0, s.ConsecutiveFailures())
	assert.Equal(t, []int{3}, n.recoveries)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Len(t, n.recoveries, 1)
}

func TestRunOnce_CheckError(t *testing.T) {
	n := &fakeNotifier{}
	s, err := New(Config{}, &fakeRefresher{}, &fakeChecker{err: errors.New("db locked")}, n, nil)
	require.NoError(t, err)

	err = s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check tickets")
	assert.Len(t, n.errors, 1)
}

func TestRunOnce_NoNotifier(t *testing.T) {
	s, err := New(Config{}, &fakeRefresher{err: errors.New("boom")}, &fakeChecker{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, s.ConsecutiveFailures())
}

func TestStartStop(t *testing.T) {
	s, err := New(Config{}, &fakeRefresher{}, &fakeChecker{}, nil, nil)
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
