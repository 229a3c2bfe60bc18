package models

import (
	"testing"
	"time"
)

func TestLineValidate(t *testing.T) {
	tests := []struct {
		name    string
		line    Line
		wantErr bool
	}{
		{
			name: "valid line",
			line: Line{Main: []int{3, 11, 19, 27, 45}, Stars: []int{2, 9}},
		},
		{
			name: "empty line",
			line: Line{},
		},
		{
			name:    "main out of range",
			line:    Line{Main: []int{0, 11, 19, 27, 45}, Stars: []int{2, 9}},
			wantErr: true,
		},
		{
			name:    "star out of range",
			line:    Line{Main: []int{3, 11, 19, 27, 45}, Stars: []int{2, 13}},
			wantErr: true,
		},
		{
			name:    "duplicate main",
			line:    Line{Main: []int{3, 11, 11, 27, 45}, Stars: []int{2, 9}},
			wantErr: true,
		},
		{
			name:    "unsorted stars",
			line:    Line{Main: []int{3, 11, 19, 27, 45}, Stars: []int{9, 2}},
			wantErr: true,
		},
		{
			name:    "too many mains",
			line:    Line{Main: []int{1, 2, 3, 4, 5, 6}, Stars: []int{2, 9}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Line.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLine_SortsCopies(t *testing.T) {
	main := []int{45, 3, 27}
	line := NewLine(main, nil)
	if line.Main[0] != 3 || line.Main[2] != 45 {
		t.Errorf("main not sorted: %v", line.Main)
	}
	if main[0] != 45 {
		t.Error("NewLine mutated its input")
	}
	if line.Stars == nil {
		t.Error("stars should be an empty slice, not nil")
	}
}

func TestDrawDateKey(t *testing.T) {
	d := Draw{Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)}
	if got := d.DateKey(); got != "2026-03-03" {
		t.Errorf("DateKey() = %q", got)
	}
	if got := (Draw{}).DateKey(); got != "unknown" {
		t.Errorf("DateKey() of undated draw = %q", got)
	}
}

func TestTicketValidate(t *testing.T) {
	tests := []struct {
		name    string
		ticket  Ticket
		wantErr bool
	}{
		{
			name: "valid ticket",
			ticket: Ticket{
				ID:       "t-1",
				DrawDate: "2026-03-03",
				Status:   TicketPending,
				Lines:    []Line{{Main: []int{1, 2, 3, 4, 5}, Stars: []int{1, 2}}},
			},
		},
		{
			name:    "empty ID",
			ticket:  Ticket{Status: TicketPending},
			wantErr: true,
		},
		{
			name:    "bad draw date",
			ticket:  Ticket{ID: "t-1", DrawDate: "03/03/2026", Status: TicketPending},
			wantErr: true,
		},
		{
			name:    "unknown status",
			ticket:  Ticket{ID: "t-1", Status: "Won"},
			wantErr: true,
		},
		{
			name: "invalid line",
			ticket: Ticket{
				ID:     "t-1",
				Status: TicketPending,
				Lines:  []Line{{Main: []int{1, 1}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ticket.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Ticket.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
