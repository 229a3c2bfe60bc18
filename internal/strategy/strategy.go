// Package strategy selects candidate lines from historical analytics.
//
// Each named strategy is a Strategy value; BuildLine dispatches by name and
// falls back to AI Mode for unknown names. Every line returned holds sorted,
// unique, in-range values.
package strategy

import (
	"math/rand/v2"
	"slices"

	"github.com/rewired-gh/luckylogic/internal/analytics"
	"github.com/rewired-gh/luckylogic/internal/models"
)

const (
	AIMode   = "AI Mode (Blend)"
	Hot      = "Hot Numbers"
	Cold     = "Cold Numbers"
	Overdue  = "Overdue (Longest gap)"
	Balanced = "Balanced Picks"

	Default = AIMode

	// MaxAvoidRetries bounds the rebuilds done by BuildAvoiding after the first attempt.
	MaxAvoidRetries = 10
)

// History is everything a strategy may look at.
type History struct {
	MainCounts analytics.Table
	StarCounts analytics.Table
	MainGap    analytics.Table
	StarGap    analytics.Table
	Draws      []models.Draw
}

// NewHistory derives gap tables from draws, which must be newest first.
func NewHistory(mainCounts, starCounts analytics.Table, draws []models.Draw) History {
	mainGap, starGap := analytics.OverdueGaps(draws)
	return History{
		MainCounts: mainCounts,
		StarCounts: starCounts,
		MainGap:    mainGap,
		StarGap:    starGap,
		Draws:      draws,
	}
}

// HistoryFromInsights reuses tables already computed for a window.
func HistoryFromInsights(in analytics.Insights, draws []models.Draw) History {
	return History{
		MainCounts: in.MainCounts,
		StarCounts: in.StarCounts,
		MainGap:    in.MainGap,
		StarGap:    in.StarGap,
		Draws:      draws,
	}
}

// Strategy builds one line from a history window.
type Strategy interface {
	Name() string
	Build(h History, rng *rand.Rand) models.Line
}

var registry = map[string]Strategy{
	AIMode:   blend{},
	Hot:      weighted{name: Hot},
	Cold:     weighted{name: Cold, invert: true},
	Overdue:  overdue{},
	Balanced: balanced{},
}

// Names lists strategies in display order, default first.
func Names() []string {
	return []string{AIMode, Hot, Cold, Overdue, Balanced}
}

// Lookup returns the named strategy. ok is false for unknown names, in which
// case the default strategy is returned.
func Lookup(name string) (s Strategy, ok bool) {
	s, ok = registry[name]
	if !ok {
		return registry[Default], false
	}
	return s, true
}

// BuildLine builds one line with the named strategy.
func BuildLine(name string, mainCounts, starCounts analytics.Table, draws []models.Draw, rng *rand.Rand) models.Line {
	s, _ := Lookup(name)
	return s.Build(NewHistory(mainCounts, starCounts, draws), ensureRand(rng))
}

// BuildAvoiding rebuilds up to MaxAvoidRetries times while the line's main
// numbers intersect avoid. The last line is returned even when it still
// intersects; attempts counts the builds performed.
func BuildAvoiding(s Strategy, h History, avoid []int, rng *rand.Rand) (line models.Line, attempts int) {
	rng = ensureRand(rng)
	line = s.Build(h, rng)
	attempts = 1
	for intersects(line.Main, avoid) && attempts <= MaxAvoidRetries {
		line = s.Build(h, rng)
		attempts++
	}
	return line, attempts
}

func intersects(a, b []int) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}

func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
