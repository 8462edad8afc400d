package investment

import (
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
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
	PlanID string          `json:"plan_id"`
	Amount decimal.Decimal `json:"amount"`
}

// POST /api/investments
func (h *Handler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req CreateRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	inv, err := h.Service.Create(r.Context(), usr.ID, req.PlanID, req.Amount)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "Investment created", inv)
}

// GET /api/investments?status=&page=&limit=
func (h *Handler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	limit, offset, page := utils.GetPaginationDetails(r)
	status := Status(r.URL.Query().Get("status"))

	invs, count, err := h.Service.Repo.ListByUser(usr.ID.String(), status, limit, offset)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	totalPages := int(math.Ceil(float64(count) / float64(limit)))
	utils.BuildSuccessResponse(w, http.StatusOK, "Investments", map[string]interface{}{
		"investments": invs,
		"meta": map[string]interface{}{
			"total_items":  count,
			"total_pages":  totalPages,
			"current_page": page,
			"limit":        limit,
		},
	})
}

// GET /api/investments/{id}
func (h *Handler) GetInvestment(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	inv, err := h.Service.Repo.GetByID(mux.Vars(r)["id"])
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	if inv.UserID != usr.ID && usr.Role != user.RoleAdmin {
		utils.BuildErrorResponse(w, http.StatusNotFound, "Investment not found", nil)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Investment Details", inv)
}

// POST /api/admin/investments/{id}/pause
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.Pause(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}
	utils.BuildSuccessResponse(w, http.StatusOK, "Investment paused", inv)
}

// POST /api/admin/investments/{id}/resume
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.Resume(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}
	utils.BuildSuccessResponse(w, http.StatusOK, "Investment resumed", inv)
}

// POST /api/admin/scheduler/run
//
// Manual trigger for the distribution pass, used by ops and by the external
// cron through a service key.
func (h *Handler) RunDistributions(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.RunDistributions(r.Context(), time.Now())
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}
	utils.BuildSuccessResponse(w, http.StatusOK, "Distribution run finished", summary)
}
