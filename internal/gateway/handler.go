package gateway

import (
	"net/http"

	"github.com/stackvest/stackvest-backend/pkg/utils"
)

type Handler struct {
	Repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{Repo: repo}
}

// GET /api/gateways
func (h *Handler) ListGateways(w http.ResponseWriter, r *http.Request) {
	gateways, err := h.Repo.List()
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}
	utils.BuildSuccessResponse(w, http.StatusOK, "Payment Gateways", gateways)
}
