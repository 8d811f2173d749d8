// Package server exposes the query endpoint and the websocket
// subscription gateway. It is thin wiring over the resolver and hub.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stockfeed/hub"
	"github.com/rustyeddy/stockfeed/market"
	"github.com/rustyeddy/stockfeed/resolver"
)

type Server struct {
	resolver *resolver.Resolver
	hub      *hub.Hub
	log      *logrus.Logger
	mux      *http.ServeMux
}

func New(r *resolver.Resolver, h *hub.Hub, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		resolver: r,
		hub:      h,
		log:      log,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/v1/quote/{ticker}", s.handleQuote)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type quoteResponse struct {
	Ticker string `json:"ticker"`
	Price  string `json:"price"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleQuote serves the synchronous "latest price" query. Absence of
// data is a 404; infrastructure failures are a 500 so callers can tell
// "never existed" from "temporarily unavailable".
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if ticker == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing ticker"})
		return
	}

	quote, err := s.resolver.Resolve(r.Context(), ticker)
	if errors.Is(err, market.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "ticker not found"})
		return
	}
	if err != nil {
		s.log.WithField("ticker", ticker).WithError(err).Error("resolve failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Ticker: quote.Ticker,
		Price:  quote.Price.StringFixed(2),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
