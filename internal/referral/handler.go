package referral

import (
	"math"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/internal/user"
	"github.com/stackvest/stackvest-backend/pkg/utils"
)

type Handler struct {
	Repo  Repository
	Rates []decimal.Decimal
}

func NewHandler(repo Repository, rates []decimal.Decimal) *Handler {
	return &Handler{Repo: repo, Rates: rates}
}

// GET /api/referrals?level=&page=&limit=
func (h *Handler) GetReferrals(w http.ResponseWriter, r *http.Request) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	level := 0
	if v := r.URL.Query().Get("level"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > len(h.Rates) {
			utils.BuildErrorResponse(w, http.StatusBadRequest, "Invalid level filter", nil)
			return
		}
		level = parsed
	}

	limit, offset, page := utils.GetPaginationDetails(r)

	edges, count, err := h.Repo.ListByReferrer(usr.ID.String(), level, limit, offset)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	breakdown, err := h.Repo.BreakdownByReferrer(usr.ID.String(), h.Rates)
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	totalPages := int(math.Ceil(float64(count) / float64(limit)))
	utils.BuildSuccessResponse(w, http.StatusOK, "Referral Breakdown", map[string]interface{}{
		"levels":    breakdown,
		"referrals": edges,
		"meta": map[string]interface{}{
			"total_items":  count,
			"total_pages":  totalPages,
			"current_page": page,
			"limit":        limit,
		},
	})
}
