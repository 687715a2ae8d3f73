package handlers

import (
	"net/http"

	"github.com/arman-dev/playoff-system/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetTournamentLeaderboard godoc
// @Summary Tournament standings ordered by points
// @Tags leaderboard
// @Produce json
// @Router /tournaments/{id}/leaderboard [get]
func (h *LeaderboardHandler) GetTournamentLeaderboard(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.leaderboardService.GetTournamentLeaderboard(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
