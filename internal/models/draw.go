// Package models defines the core domain entities: draws, lines, and tickets.
package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	MainMin = 1
	MainMax = 50
	StarMin = 1
	StarMax = 12

	MainPerLine  = 5
	StarsPerLine = 2
)

// Draw is one historical EuroMillions result.
// A zero Date means the source date could not be parsed.
type Draw struct {
	Date    time.Time `json:"date"`
	Numbers []int     `json:"numbers"`
	Stars   []int     `json:"stars"`
	Jackpot *int64    `json:"jackpot,omitempty"`
	Source  string    `json:"source,omitempty"`
	DrawID  string    `json:"draw_id,omitempty"`
}

// HasDate reports whether the draw carries a parsed date.
func (d Draw) HasDate() bool {
	return !d.Date.IsZero()
}

// DateKey returns the draw date as YYYY-MM-DD, or "unknown".
func (d Draw) DateKey() string {
	if !d.HasDate() {
		return "unknown"
	}
	return d.Date.Format("2006-01-02")
}

// Line is one candidate play: main numbers plus lucky stars, both sorted ascending.
type Line struct {
	Main  []int `json:"main"`
	Stars []int `json:"stars"`
}

// NewLine returns a Line holding sorted copies of main and stars.
func NewLine(main, stars []int) Line {
	m := slices.Clone(main)
	s := slices.Clone(stars)
	slices.Sort(m)
	slices.Sort(s)
	if m == nil {
		m = []int{}
	}
	if s == nil {
		s = []int{}
	}
	return Line{Main: m, Stars: s}
}

// Validate checks range, uniqueness and ordering of the line's values.
func (l Line) Validate() error {
	if err := checkValues(l.Main, MainMin, MainMax); err != nil {
		return fmt.Errorf("main numbers: %w", err)
	}
	if err := checkValues(l.Stars, StarMin, StarMax); err != nil {
		return fmt.Errorf("stars: %w", err)
	}
	if len(l.Main) > MainPerLine {
		return fmt.Errorf("main numbers: at most %d allowed, got %d", MainPerLine, len(l.Main))
	}
	if len(l.Stars) > StarsPerLine {
		return fmt.Errorf("stars: at most %d allowed, got %d", StarsPerLine, len(l.Stars))
	}
	return nil
}

func checkValues(values []int, lo, hi int) error {
	for i, v := range values {
		if v < lo || v > hi {
			return fmt.Errorf("value %d out of range [%d,%d]", v, lo, hi)
		}
		if i > 0 {
			if values[i-1] == v {
				return fmt.Errorf("duplicate value %d", v)
			}
			if values[i-1] > v {
				return errors.New("values must be sorted ascending")
			}
		}
	}
	return nil
}
