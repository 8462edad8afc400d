package adjustment

import (
	"math"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/internal/user"
	"github.com/stackvest/stackvest-backend/pkg/utils"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

type CreateRequest struct {
	InvestmentID string          `json:"investment_id"`
	Amount       decimal.Decimal `json:"amount"`
	Type         Type            `json:"type"`
	Reason       string          `json:"reason"`
}

// POST /api/admin/adjustments
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	admin, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req CreateRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	adj, err := h.Service.Create(r.Context(), req.InvestmentID, req.Amount, req.Type, req.Reason, admin.ID)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "Adjustment applied", adj)
}

// GET /api/admin/adjustments?investment_id=&page=&limit=
func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	investmentID := r.URL.Query().Get("investment_id")
	if investmentID == "" {
		utils.BuildErrorResponse(w, http.StatusBadRequest, "investment_id is required", nil)
		return
	}

	limit, offset, page := utils.GetPaginationDetails(r)
	adjs, count, err := h.Service.Repo.ListByInvestment(investmentID, limit, offset)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	totalPages := int(math.Ceil(float64(count) / float64(limit)))
	utils.BuildSuccessResponse(w, http.StatusOK, "Adjustments", map[string]interface{}{
		"adjustments": adjs,
		"meta": map[string]interface{}{
			"total_items":  count,
			"total_pages":  totalPages,
			"current_page": page,
			"limit":        limit,
		},
	})
}
