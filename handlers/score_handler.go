package handlers

import (
	"net/http"

	"github.com/Dosada05/lobby-royale/middleware"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/services"
)

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(ss services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: ss}
}

type placementsRequest struct {
	Entries []models.Placement `json:"entries"`
}

// SubmitReportHandler godoc
// @Summary      Submit a score report for a lobby
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        lobbyID path int true "Lobby ID"
// @Param        input body placementsRequest true "Placements"
// @Success      200 {object} map[string]string
// @Router       /lobbies/{lobbyID}/reports [post]
func (h *ScoreHandler) SubmitReportHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to submit a score report")
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input placementsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teamID, err := h.scoreService.ResolveReportingTeam(r.Context(), lobbyID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := h.scoreService.SubmitScoreReport(r.Context(), services.SubmitScoreReportInput{
		LobbyID:         lobbyID,
		ReporterID:      userID,
		ReportingTeamID: teamID,
		Entries:         input.Entries,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmResultsHandler godoc
// @Summary      Confirm lobby results directly (admin)
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        lobbyID path int true "Lobby ID"
// @Param        input body placementsRequest true "Placements"
// @Success      200 {object} map[string]string
// @Router       /lobbies/{lobbyID}/results [post]
func (h *ScoreHandler) ConfirmResultsHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to confirm results")
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input placementsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.scoreService.AdminConfirmResults(r.Context(), lobbyID, adminID, input.Entries); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": models.SubmitResultConfirmed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
