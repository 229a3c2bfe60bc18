package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rewired-gh/luckylogic/internal/models"
)

const ticketCols = `id, created_at, draw_date, draw_label, strategy, status, notes`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Load returns every saved ticket, oldest first.
func (s *Storage) Load(ctx context.Context) ([]models.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ticketCols+` FROM tickets ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		out = append(out, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		lines, err := loadLines(ctx, s.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

// Save replaces the whole ticket collection with tickets.
func (s *Storage) Save(ctx context.Context, tickets []models.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
		return fmt.Errorf("failed to clear tickets: %w", err)
	}
	for i := range tickets {
		if err := insertTicket(ctx, tx, &tickets[i]); err != nil {
			return err
		}
	}
	if err := s.rotateTickets(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// AddTicket inserts one ticket and rotates out the oldest beyond the cap.
func (s *Storage) AddTicket(ctx context.Context, t *models.Ticket) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid ticket: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertTicket(ctx, tx, t); err != nil {
		return err
	}
	if err := s.rotateTickets(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// GetTicket returns the ticket with id, or ErrNotFound.
func (s *Storage) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ticketCols+` FROM tickets WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket: %w", err)
	}
	var t *models.Ticket
	if rows.Next() {
		t, err = scanTicket(rows.Scan)
	}
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	if t.Lines, err = loadLines(ctx, s.db, id); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTicket overwrites the stored status, notes and lines of t.
func (s *Storage) UpdateTicket(ctx context.Context, t *models.Ticket) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid ticket: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE tickets SET draw_date=?, draw_label=?, strategy=?, status=?, notes=?
		WHERE id=?`,
		t.DrawDate, t.DrawLabel, t.Strategy, t.Status, t.Notes, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ticket %s: %w", t.ID, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ticket_lines WHERE ticket_id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to clear ticket lines: %w", err)
	}
	if err := insertLines(ctx, tx, t.ID, t.Lines); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteTicket removes the ticket with id. Lines go with it via cascade.
func (s *Storage) DeleteTicket(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	return nil
}

// rotateTickets keeps at most maxTickets newest tickets by created_at.
func (s *Storage) rotateTickets(ctx context.Context, q queryer) error {
	if s.maxTickets <= 0 {
		return nil
	}
	_, err := q.ExecContext(ctx, `
		DELETE FROM tickets WHERE id NOT IN (
			SELECT id FROM tickets ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, s.maxTickets)
	if err != nil {
		return fmt.Errorf("failed to rotate tickets: %w", err)
	}
	return nil
}

func insertTicket(ctx context.Context, q queryer, t *models.Ticket) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = models.TicketPending
	}
	_, err := q.ExecContext(ctx, `INSERT INTO tickets (`+ticketCols+`) VALUES (?,?,?,?,?,?,?)`,
		t.ID, t.CreatedAt.UnixNano(), t.DrawDate, t.DrawLabel, t.Strategy, t.Status, t.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return insertLines(ctx, q, t.ID, t.Lines)
}

func insertLines(ctx context.Context, q queryer, ticketID string, lines []models.Line) error {
	for i, l := range lines {
		main, err := json.Marshal(nonNil(l.Main))
		if err != nil {
			return fmt.Errorf("failed to marshal line: %w", err)
		}
		stars, err := json.Marshal(nonNil(l.Stars))
		if err != nil {
			return fmt.Errorf("failed to marshal line: %w", err)
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO ticket_lines (ticket_id, position, main, stars) VALUES (?,?,?,?)`,
			ticketID, i, string(main), string(stars),
		); err != nil {
			return fmt.Errorf("failed to insert ticket line: %w", err)
		}
	}
	return nil
}

func loadLines(ctx context.Context, q queryer, ticketID string) ([]models.Line, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT main, stars FROM ticket_lines WHERE ticket_id = ? ORDER BY position ASC`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket lines: %w", err)
	}
	defer rows.Close()

	lines := []models.Line{}
	for rows.Next() {
		var main, stars string
		if err := rows.Scan(&main, &stars); err != nil {
			return nil, fmt.Errorf("failed to scan ticket line: %w", err)
		}
		var l models.Line
		if err := json.Unmarshal([]byte(main), &l.Main); err != nil {
			return nil, fmt.Errorf("failed to unmarshal line: %w", err)
		}
		if err := json.Unmarshal([]byte(stars), &l.Stars); err != nil {
			return nil, fmt.Errorf("failed to unmarshal line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanTicket(scan func(...any) error) (*models.Ticket, error) {
	var t models.Ticket
	var createdAtNano int64
	if err := scan(&t.ID, &createdAtNano, &t.DrawDate, &t.DrawLabel, &t.Strategy, &t.Status, &t.Notes); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(0, createdAtNano).UTC()
	return &t, nil
}
