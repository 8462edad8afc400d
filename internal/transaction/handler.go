package transaction

import (
	"math"
	"net/http"

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

type DepositRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	GatewayID string          `json:"gateway_id"`
	ProofRef  string          `json:"proof_ref"`
}

// POST /api/transactions/deposit
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req DepositRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	txn, err := h.Service.CreateDeposit(r.Context(), usr.ID, req.Amount, req.GatewayID, req.ProofRef)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "Deposit request created", txn)
}

type WithdrawRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	GatewayID     string          `json:"gateway_id"`
	PayoutDetails string          `json:"payout_details"`
}

// POST /api/transactions/withdraw
func (h *Handler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req WithdrawRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	txn, err := h.Service.CreateWithdrawal(r.Context(), usr.ID, req.Amount, req.GatewayID, req.PayoutDetails)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "Withdrawal request created", txn)
}

// POST /api/transactions/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	txn, err := h.Service.Cancel(r.Context(), mux.Vars(r)["id"], usr.ID)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Transaction cancelled", txn)
}

// GET /api/transactions?status=&type=&page=&limit=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	limit, offset, page := utils.GetPaginationDetails(r)
	status := Status(r.URL.Query().Get("status"))
	txType := Type(r.URL.Query().Get("type"))

	txns, count, err := h.Service.Repo.List(usr.ID.String(), status, txType, limit, offset)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	totalPages := int(math.Ceil(float64(count) / float64(limit)))
	utils.BuildSuccessResponse(w, http.StatusOK, "Transaction History", map[string]interface{}{
		"transactions": txns,
		"meta": map[string]interface{}{
			"total_items":  count,
			"total_pages":  totalPages,
			"current_page": page,
			"limit":        limit,
		},
	})
}

// GET /api/transactions/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	txn, err := h.Service.Repo.GetByID(mux.Vars(r)["id"])
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	if txn.UserID != usr.ID && usr.Role != user.RoleAdmin {
		utils.BuildErrorResponse(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Transaction Details", txn)
}

type ReviewRequest struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

// POST /api/admin/transactions/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	admin, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req ReviewRequest
	if r.ContentLength > 0 {
		if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
			utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
			return
		}
	}

	txn, err := h.Service.Approve(r.Context(), mux.Vars(r)["id"], admin.ID, req.Note)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Transaction approved", txn)
}

// POST /api/admin/transactions/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	admin, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req ReviewRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	txn, err := h.Service.Reject(r.Context(), mux.Vars(r)["id"], admin.ID, req.Reason)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Transaction rejected", txn)
}

// GET /api/admin/transactions?user_id=&status=&type=
func (h *Handler) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset, page := utils.GetPaginationDetails(r)
	status := Status(r.URL.Query().Get("status"))
	txType := Type(r.URL.Query().Get("type"))
	userID := r.URL.Query().Get("user_id")

	txns, count, err := h.Service.Repo.List(userID, status, txType, limit, offset)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	totalPages := int(math.Ceil(float64(count) / float64(limit)))
	utils.BuildSuccessResponse(w, http.StatusOK, "Transactions", map[string]interface{}{
		"transactions": txns,
		"meta": map[string]interface{}{
			"total_items":  count,
			"total_pages":  totalPages,
			"current_page": page,
			"limit":        limit,
		},
	})
}
