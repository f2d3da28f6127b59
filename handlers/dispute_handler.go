package handlers

import (
	"net/http"

	"github.com/Dosada05/lobby-royale/middleware"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/services"
)

type DisputeHandler struct {
	disputeService services.DisputeService
}

func NewDisputeHandler(ds services.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: ds}
}

type resolveDisputeRequest struct {
	Resolution string             `json:"resolution"`
	Entries    []models.Placement `json:"entries"`
}

type dismissDisputeRequest struct {
	Reason string `json:"reason"`
}

// GetDisputeHandler godoc
// @Summary      Get a score dispute
// @Tags         disputes
// @Produce      json
// @Security     BearerAuth
// @Param        disputeID path int true "Dispute ID"
// @Success      200 {object} models.ScoreDispute
// @Router       /disputes/{disputeID} [get]
func (h *DisputeHandler) GetDisputeHandler(w http.ResponseWriter, r *http.Request) {
	disputeID, err := getIDFromURL(r, "disputeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	dispute, err := h.disputeService.GetDispute(r.Context(), disputeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"dispute": dispute}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveDisputeHandler godoc
// @Summary      Resolve a dispute with authoritative placements
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        disputeID path int true "Dispute ID"
// @Param        input body resolveDisputeRequest true "Resolution"
// @Success      200 {object} map[string]string
// @Router       /disputes/{disputeID}/resolve [post]
func (h *DisputeHandler) ResolveDisputeHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to resolve a dispute")
		return
	}

	disputeID, err := getIDFromURL(r, "disputeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resolveDisputeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err = h.disputeService.ResolveDispute(r.Context(), services.ResolveDisputeInput{
		DisputeID:  disputeID,
		AdminID:    adminID,
		Resolution: input.Resolution,
		Entries:    input.Entries,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": models.DisputeStatusResolved}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DismissDisputeHandler godoc
// @Summary      Dismiss a dispute without confirming the lobby
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        disputeID path int true "Dispute ID"
// @Param        input body dismissDisputeRequest true "Reason"
// @Success      200 {object} map[string]string
// @Router       /disputes/{disputeID}/dismiss [post]
func (h *DisputeHandler) DismissDisputeHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to dismiss a dispute")
		return
	}

	disputeID, err := getIDFromURL(r, "disputeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input dismissDisputeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.disputeService.DismissDispute(r.Context(), disputeID, adminID, input.Reason); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": models.DisputeStatusDismissed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
