// Package engine ties draw loading, analytics, line generation and ticket
// checking together for the service.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rewired-gh/luckylogic/internal/analytics"
	"github.com/rewired-gh/luckylogic/internal/draws"
	"github.com/rewired-gh/luckylogic/internal/explain"
	"github.com/rewired-gh/luckylogic/internal/logger"
	"github.com/rewired-gh/luckylogic/internal/models"
	"github.com/rewired-gh/luckylogic/internal/storage"
	"github.com/rewired-gh/luckylogic/internal/strategy"
	"github.com/rewired-gh/luckylogic/internal/tickets"
)

// ErrNoDraws is returned when no draw history is available to work from.
var ErrNoDraws = errors.New("no draw data available")

// Request bounds.
const (
	MinLines = 1
	MaxLines = 10
	MinTopN  = 3
	MaxTopN  = 10
)

type Config struct {
	HistoryDraws int
	Lines        int
	TopN         int
	AvoidLatest  bool
}

func DefaultConfig() Config {
	return Config{
		HistoryDraws: 250,
		Lines:        4,
		TopN:         5,
		AvoidLatest:  false,
	}
}

// Recorder receives counters from the engine. metrics.Metrics implements it.
type Recorder interface {
	DrawFetch(outcome string)
	LinesGenerated(strategy string, n int)
	TicketsChecked(n int)
}

type nopRecorder struct{}

func (nopRecorder) DrawFetch(string)           {}
func (nopRecorder) LinesGenerated(string, int) {}
func (nopRecorder) TicketsChecked(int)         {}

// Request describes one generation run. Zero fields take the configured defaults.
type Request struct {
	Strategy    string `json:"strategy"`
	Lines       int    `json:"lines"`
	History     int    `json:"history"`
	TopN        int    `json:"top_n"`
	AvoidLatest *bool  `json:"avoid_latest,omitempty"`
}

// GeneratedLine is a line with its score and reasons.
type GeneratedLine struct {
	Main     []int    `json:"main"`
	Stars    []int    `json:"stars"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons"`
	Attempts int      `json:"attempts"`
}

// Result is the output of Generate.
type Result struct {
	Strategy    string             `json:"strategy"`
	Lines       []GeneratedLine    `json:"lines"`
	Insights    analytics.Insights `json:"insights"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type Engine struct {
	repo   *DrawRepository
	store  tickets.Store
	config Config
	rec    Recorder

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an engine. A nil rng is seeded from the runtime source.
func New(repo *DrawRepository, store tickets.Store, config Config, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return &Engine{
		repo:   repo,
		store:  store,
		config: config,
		rec:    nopRecorder{},
		rng:    rng,
	}
}

// SetRecorder installs rec on the engine and its repository.
func (e *Engine) SetRecorder(rec Recorder) {
	if rec == nil {
		rec = nopRecorder{}
	}
	e.rec = rec
	e.repo.SetRecorder(rec)
}

// Config returns the engine defaults.
func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) normalize(req Request) Request {
	if req.Lines <= 0 {
		req.Lines = e.config.Lines
	}
	req.Lines = min(max(req.Lines, MinLines), MaxLines)
	if req.TopN <= 0 {
		req.TopN = e.config.TopN
	}
	req.TopN = min(max(req.TopN, MinTopN), MaxTopN)
	if req.History <= 0 {
		req.History = e.config.HistoryDraws
	}
	if req.AvoidLatest == nil {
		avoid := e.config.AvoidLatest
		req.AvoidLatest = &avoid
	}
	return req
}

// Draws returns the newest history draws, newest first. history <= 0 uses the default window.
func (e *Engine) Draws(ctx context.Context, history int) ([]models.Draw, error) {
	if history <= 0 {
		history = e.config.HistoryDraws
	}
	all, err := e.repo.Draws(ctx)
	if err != nil {
		return nil, err
	}
	return draws.Prepare(all, history), nil
}

// Insights computes analytics for a history window.
func (e *Engine) Insights(ctx context.Context, history, topN int) (analytics.Insights, error) {
	req := e.normalize(Request{History: history, TopN: topN})
	window, err := e.Draws(ctx, req.History)
	if err != nil {
		return analytics.Insights{}, err
	}
	if len(window) == 0 {
		return analytics.Insights{}, ErrNoDraws
	}
	return analytics.Compute(window, req.TopN), nil
}

// Generate builds and explains req.Lines lines with the requested strategy.
// Unknown strategy names use the default strategy.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	req = e.normalize(req)

	window, err := e.Draws(ctx, req.History)
	if err != nil {
		return nil, err
	}
	if len(window) == 0 {
		return nil, ErrNoDraws
	}

	insights := analytics.Compute(window, req.TopN)
	h := strategy.HistoryFromInsights(insights, window)
	s, ok := strategy.Lookup(req.Strategy)
	if !ok && req.Strategy != "" {
		logger.Debug("Unknown strategy %q, using %s", req.Strategy, s.Name())
	}
	var avoid []int
	if *req.AvoidLatest {
		avoid = insights.Recent.Numbers
	}

	built := make([]models.Line, req.Lines)
	attempts := make([]int, req.Lines)
	e.mu.Lock()
	for i := range built {
		built[i], attempts[i] = strategy.BuildAvoiding(s, h, avoid, e.rng)
	}
	e.mu.Unlock()

	res := &Result{
		Strategy:    s.Name(),
		Lines:       make([]GeneratedLine, 0, req.Lines),
		Insights:    insights,
		GeneratedAt: time.Now().UTC(),
	}
	for i, line := range built {
		score, reasons := explain.ExplainLine(line.Main, line.Stars, insights.MainCounts, insights.StarCounts, insights.MainGap, s.Name())
		res.Lines = append(res.Lines, GeneratedLine{
			Main:     line.Main,
			Stars:    line.Stars,
			Score:    score,
			Reasons:  reasons,
			Attempts: attempts[i],
		})
	}

	e.rec.LinesGenerated(s.Name(), len(res.Lines))
	logger.Debug("Generated %d lines with %s from %d draws", len(res.Lines), s.Name(), len(window))
	return res, nil
}

// CheckTicket checks one ticket against the full draw history without saving.
func (e *Engine) CheckTicket(ctx context.Context, t models.Ticket) (tickets.Result, error) {
	all, err := e.repo.Draws(ctx)
	if err != nil {
		return tickets.Result{}, err
	}
	return tickets.Check(t, all), nil
}

// CheckTickets checks every pending ticket whose draw has a result, marks it
// Checked and updates it in place. Tickets added or deleted meanwhile are left
// alone. It returns the newly checked results.
func (e *Engine) CheckTickets(ctx context.Context) ([]tickets.Result, error) {
	saved, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}
	pending := 0
	for _, t := range saved {
		if t.Status == models.TicketPending {
			pending++
		}
	}
	if pending == 0 {
		return nil, nil
	}

	all, err := e.repo.Draws(ctx)
	if err != nil {
		return nil, err
	}

	var checked []tickets.Result
	for i := range saved {
		t := &saved[i]
		if t.Status != models.TicketPending {
			continue
		}
		res := tickets.Check(*t, all)
		if !res.Checked {
			continue
		}
		t.Status = models.TicketChecked
		t.Notes = fmt.Sprintf("Best match: %d", res.BestMatch)
		if err := e.store.UpdateTicket(ctx, t); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				logger.Debug("Ticket %s was deleted while checking", t.ID)
				continue
			}
			return nil, fmt.Errorf("failed to update ticket %s: %w", t.ID, err)
		}
		checked = append(checked, res)
	}
	if len(checked) == 0 {
		return nil, nil
	}

	e.rec.TicketsChecked(len(checked))
	logger.Info("Checked %d of %d pending tickets", len(checked), pending)
	return checked, nil
}
