package models

import (
	"errors"
	"fmt"
	"time"
)

const (
	TicketPending = "Pending"
	TicketChecked = "Checked"
)

// Ticket is a saved set of generated lines aimed at one draw date.
type Ticket struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	DrawDate  string    `json:"draw_date"`
	DrawLabel string    `json:"draw_label"`
	Strategy  string    `json:"strategy"`
	Lines     []Line    `json:"lines"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
}

// Validate checks ticket field constraints.
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return errors.New("ticket ID must not be empty")
	}
	if t.DrawDate != "" {
		if _, err := time.Parse("2006-01-02", t.DrawDate); err != nil {
			return fmt.Errorf("draw date must be YYYY-MM-DD: %w", err)
		}
	}
	if t.Status != TicketPending && t.Status != TicketChecked {
		return fmt.Errorf("unknown ticket status %q", t.Status)
	}
	for i, line := range t.Lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}
