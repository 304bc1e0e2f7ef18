package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tippliga/tippliga/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

func (h *StandingsHandler) GroupStandingsHandler(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	standings, err := h.standingsService.GroupStandings(r.Context(), group)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"group": group, "standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) AllGroupStandingsHandler(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standingsService.AllGroupStandings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
