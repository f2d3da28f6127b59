package handlers

import (
	"net/http"

	"github.com/Dosada05/lobby-royale/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// GetBracketHandler godoc
// @Summary      Bracket read model
// @Tags         brackets
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} models.BracketView
// @Router       /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracketHandler godoc
// @Summary      Generate (or regenerate) the lobby bracket
// @Tags         brackets
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID path int true "Tournament ID"
// @Success      201 {object} brackets.Plan
// @Router       /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) GenerateBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	plan, err := h.bracketService.GenerateBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"plan": plan}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportBracketHandler godoc
// @Summary      Upload a JSON snapshot of the bracket to object storage
// @Tags         brackets
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID path int true "Tournament ID"
// @Success      201 {object} storage.UploadResult
// @Router       /tournaments/{tournamentID}/bracket/export [post]
func (h *BracketHandler) ExportBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.bracketService.ExportBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetLobbyHandler godoc
// @Summary      Lobby with seats, score reports and disputes
// @Tags         lobbies
// @Produce      json
// @Param        lobbyID path int true "Lobby ID"
// @Success      200 {object} models.LobbyDetail
// @Router       /lobbies/{lobbyID} [get]
func (h *BracketHandler) GetLobbyHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	detail, err := h.bracketService.GetLobbyDetail(r.Context(), lobbyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lobby": detail}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
