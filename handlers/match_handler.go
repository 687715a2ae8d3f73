package handlers

import (
	"net/http"
	"strconv"

	"github.com/arman-dev/playoff-system/middleware"
	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
	"github.com/arman-dev/playoff-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// ReportResult godoc
// @Summary Report the result of a match
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /tournaments/{id}/matches/{matchID}/result [post]
func (h *MatchHandler) ReportResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	tournamentID, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// winner_id is optional: a scores-only body records the scores without
	// deciding the match.
	var body struct {
		WinnerID     *int `json:"winner_id"`
		Player1Score *int `json:"player1_score"`
		Player2Score *int `json:"player2_score"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.ReportResult(r.Context(), userID, services.ReportResultInput{
		TournamentID: tournamentID,
		MatchID:      matchID,
		WinnerID:     body.WinnerID,
		Player1Score: body.Player1Score,
		Player2Score: body.Player2Score,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": result.Match, "advanced": result.Advanced}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := repositories.MatchFilter{}
	if sectionStr := r.URL.Query().Get("section"); sectionStr != "" {
		section := models.BracketSection(sectionStr)
		filter.Section = &section
	}
	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		if round, convErr := strconv.Atoi(roundStr); convErr == nil {
			filter.Round = &round
		}
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.MatchStatus(statusStr)
		filter.Status = &status
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
