package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rewired-gh/luckylogic/internal/api/response"
	"github.com/rewired-gh/luckylogic/internal/draws"
	"github.com/rewired-gh/luckylogic/internal/engine"
	"github.com/rewired-gh/luckylogic/internal/logger"
	"github.com/rewired-gh/luckylogic/internal/models"
	"github.com/rewired-gh/luckylogic/internal/storage"
	"github.com/rewired-gh/luckylogic/internal/strategy"
	"github.com/rewired-gh/luckylogic/internal/tickets"
)

const defaultDrawDateWeeks = 12

// DrawView is a draw as returned by the API.
type DrawView struct {
	Date    string `json:"date"`
	Label   string `json:"label,omitempty"`
	Numbers []int  `json:"numbers"`
	Stars   []int  `json:"stars"`
	Jackpot *int64 `json:"jackpot,omitempty"`
	DrawID  string `json:"draw_id,omitempty"`
}

func toDrawView(d models.Draw) DrawView {
	v := DrawView{
		Date:    d.DateKey(),
		Numbers: d.Numbers,
		Stars:   d.Stars,
		Jackpot: d.Jackpot,
		DrawID:  d.DrawID,
	}
	if d.HasDate() {
		v.Label = draws.FormatLabel(d.Date)
	}
	if v.Numbers == nil {
		v.Numbers = []int{}
	}
	if v.Stars == nil {
		v.Stars = []int{}
	}
	return v
}

// StrategyView describes one strategy.
type StrategyView struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// DrawDateView is one upcoming draw date.
type DrawDateView struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// CreateTicketRequest represents a request to save a ticket.
type CreateTicketRequest struct {
	Lines     []models.Line `json:"lines"`
	Strategy  string        `json:"strategy"`
	DrawDate  string        `json:"draw_date"`
	DrawLabel string        `json:"draw_label"`
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// engineError maps generator failures to responses.
func engineError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrNoDraws) {
		response.ServiceUnavailable(w, err)
		return
	}
	logger.Warn("Draw history unavailable: %v", err)
	response.ServiceUnavailable(w, errors.New("draw history is unavailable right now"))
}

func (s *Server) getDraws(w http.ResponseWriter, r *http.Request) {
	history, err := queryInt(r, "history")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	ds, err := s.engine.Draws(r.Context(), history)
	if err != nil {
		engineError(w, err)
		return
	}
	out := make([]DrawView, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDrawView(d))
	}
	response.Success(w, out)
}

func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	history, err := queryInt(r, "history")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	top, err := queryInt(r, "top")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	in, err := s.engine.Insights(r.Context(), history, top)
	if err != nil {
		engineError(w, err)
		return
	}
	response.Success(w, in)
}

func (s *Server) generateLines(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Lines < 0 || req.History < 0 || req.TopN < 0 {
		response.BadRequest(w, errors.New("lines, history and top_n must not be negative"))
		return
	}
	res, err := s.engine.Generate(r.Context(), req)
	if err != nil {
		engineError(w, err)
		return
	}
	response.Success(w, res)
}

func (s *Server) getStrategies(w http.ResponseWriter, r *http.Request) {
	names := strategy.Names()
	out := make([]StrategyView, 0, len(names))
	for _, name := range names {
		out = append(out, StrategyView{Name: name, Default: name == strategy.Default})
	}
	response.Success(w, out)
}

func (s *Server) getDrawDates(w http.ResponseWriter, r *http.Request) {
	weeks, err := queryInt(r, "weeks")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	if weeks == 0 {
		weeks = defaultDrawDateWeeks
	}
	dates := draws.UpcomingDrawDates(s.now(), weeks)
	out := make([]DrawDateView, 0, len(dates))
	for _, d := range dates {
		out = append(out, DrawDateView{Date: d.Format("2006-01-02"), Label: draws.FormatLabel(d)})
	}
	response.Success(w, out)
}

func (s *Server) getJackpot(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.jackpot.Live(r.Context()))
}

func (s *Server) listTickets(w http.ResponseWriter, r *http.Request) {
	ts, err := s.tickets.Load(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, ts)
}

func (s *Server) createTicket(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.DrawDate == "" {
		req.DrawDate = draws.NextDrawDate(s.now()).Format("2006-01-02")
	}
	t := tickets.New(req.Lines, req.Strategy, req.DrawDate, req.DrawLabel)
	if len(t.Lines) == 0 {
		response.BadRequest(w, errors.New("ticket needs at least one valid line"))
		return
	}
	if t.DrawDate == "" {
		response.BadRequest(w, fmt.Errorf("unrecognized draw date %q", req.DrawDate))
		return
	}
	if err := s.tickets.AddTicket(r.Context(), &t); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Created(w, t)
}

func (s *Server) loadTicket(w http.ResponseWriter, r *http.Request) (*models.Ticket, bool) {
	id := chi.URLParam(r, "ticketID")
	t, err := s.tickets.GetTicket(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, fmt.Errorf("ticket %s not found", id))
		return nil, false
	}
	if err != nil {
		response.InternalError(w, err)
		return nil, false
	}
	return t, true
}

func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	if t, ok := s.loadTicket(w, r); ok {
		response.Success(w, t)
	}
}

func (s *Server) deleteTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketID")
	err := s.tickets.DeleteTicket(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, fmt.Errorf("ticket %s not found", id))
		return
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

func (s *Server) checkTicket(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadTicket(w, r)
	if !ok {
		return
	}
	res, err := s.engine.CheckTicket(r.Context(), *t)
	if err != nil {
		engineError(w, err)
		return
	}
	response.Success(w, res)
}
