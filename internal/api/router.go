package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rewired-gh/luckylogic/internal/api/response"
)

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/draws", s.getDraws)
		r.Get("/insights", s.getInsights)
		r.Post("/lines", s.generateLines)
		r.Get("/strategies", s.getStrategies)
		r.Get("/draw-dates", s.getDrawDates)
		r.Get("/jackpot", s.getJackpot)

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", s.listTickets)
			r.Post("/", s.createTicket)
			r.Get("/{ticketID}", s.getTicket)
			r.Delete("/{ticketID}", s.deleteTicket)
			r.Get("/{ticketID}/check", s.checkTicket)
		})
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
