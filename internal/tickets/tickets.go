// Package tickets creates saved tickets and checks them against draw results.
package tickets

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/luckylogic/internal/draws"
	"github.com/rewired-gh/luckylogic/internal/models"
)

// MaxCheckedLines is how many lines of a ticket are checked and displayed.
const MaxCheckedLines = 5

// Store persists tickets. Save replaces the whole collection; UpdateTicket
// rewrites one ticket and fails when it no longer exists.
type Store interface {
	Load(ctx context.Context) ([]models.Ticket, error)
	Save(ctx context.Context, tickets []models.Ticket) error
	UpdateTicket(ctx context.Context, t *models.Ticket) error
}

// New creates a pending ticket. drawDate is normalized to YYYY-MM-DD when it
// parses; invalid lines are dropped.
func New(lines []models.Line, strategyName, drawDate, label string) models.Ticket {
	if strategyName == "" {
		strategyName = "Unknown strategy"
	}
	iso := ""
	if d := draws.ParseDate(drawDate); !d.IsZero() {
		iso = d.Format("2006-01-02")
		if label == "" {
			label = draws.FormatLabel(d)
		}
	}
	return models.Ticket{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		DrawDate:  iso,
		DrawLabel: label,
		Strategy:  strategyName,
		Lines:     SafeLines(lines),
		Status:    models.TicketPending,
	}
}

// SafeLines sorts each line and drops the ones that fail validation.
func SafeLines(lines []models.Line) []models.Line {
	out := make([]models.Line, 0, len(lines))
	for _, l := range lines {
		line := models.NewLine(l.Main, l.Stars)
		if line.Validate() != nil {
			continue
		}
		out = append(out, line)
	}
	return out
}

// CountMatches counts main numbers and stars of line found in the winning sets.
func CountMatches(line models.Line, winningMains, winningStars []int) int {
	return len(intersect(line.Main, winningMains)) + len(intersect(line.Stars, winningStars))
}

// LineResult is one checked (or pending) line.
type LineResult struct {
	Main          []int  `json:"main"`
	Stars         []int  `json:"stars"`
	MatchedMains  []int  `json:"matched_mains"`
	MatchedStars  []int  `json:"matched_stars"`
	Matches       int    `json:"matches"`
	Checked       bool   `json:"checked"`
	PendingReason string `json:"pending_reason,omitempty"`
}

// Result is the outcome of checking a ticket.
type Result struct {
	TicketID  string       `json:"ticket_id"`
	DrawDate  string       `json:"draw_date"`
	Checked   bool         `json:"checked"`
	BestMatch int          `json:"best_match"`
	Lines     []LineResult `json:"lines"`
}

// Check matches a ticket against the draw held for its draw date in history.
// When that draw is not available the result is pending. At most
// MaxCheckedLines lines are reported.
func Check(t models.Ticket, history []models.Draw) Result {
	res := Result{TicketID: t.ID, DrawDate: t.DrawDate}

	var winning *models.Draw
	if t.DrawDate != "" {
		for i := range history {
			if history[i].HasDate() && history[i].DateKey() == t.DrawDate {
				winning = &history[i]
				break
			}
		}
	}

	pending := ""
	switch {
	case winning != nil:
		res.Checked = true
	case t.DrawDate == "":
		pending = "No draw date set"
	default:
		pending = "Awaiting result for " + t.DrawDate
	}

	lines := t.Lines[:min(len(t.Lines), MaxCheckedLines)]
	res.Lines = make([]LineResult, 0, len(lines))
	for _, l := range lines {
		lr := LineResult{
			Main:          l.Main,
			Stars:         l.Stars,
			MatchedMains:  []int{},
			MatchedStars:  []int{},
			PendingReason: pending,
		}
		if winning != nil {
			lr.Checked = true
			lr.MatchedMains = intersect(l.Main, winning.Numbers)
			lr.MatchedStars = intersect(l.Stars, winning.Stars)
			lr.Matches = len(lr.MatchedMains) + len(lr.MatchedStars)
			res.BestMatch = max(res.BestMatch, lr.Matches)
		}
		res.Lines = append(res.Lines, lr)
	}
	return res
}

func intersect(values, winning []int) []int {
	out := []int{}
	for _, v := range values {
		if slices.Contains(winning, v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
