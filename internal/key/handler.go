package key

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stackvest/stackvest-backend/internal/user"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"github.com/stackvest/stackvest-backend/pkg/utils"
)

type Handler struct {
	Repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{Repo: repo}
}

type CreateRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// POST /api/admin/keys
//
// The raw key appears only in this response; from then on the server knows
// just its hash.
func (h *Handler) CreateKey(w http.ResponseWriter, r *http.Request) {
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

	if strings.TrimSpace(req.Name) == "" {
		utils.BuildAppErrorResponse(w, apperrors.Validation("Name is required"))
		return
	}
	for _, p := range req.Permissions {
		if p != PermissionRead && p != PermissionScheduler {
			utils.BuildAppErrorResponse(w, apperrors.Validation("Unknown permission: "+p))
			return
		}
	}
	if len(req.Permissions) == 0 {
		req.Permissions = []string{PermissionRead}
	}

	rawKey := "svk_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	record := &APIKey{
		Name:        req.Name,
		KeyHash:     Hash(rawKey),
		Permissions: pq.StringArray(req.Permissions),
		CreatedBy:   admin.ID,
	}
	if err := h.Repo.Create(record); err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "API key created", map[string]interface{}{
		"key":    rawKey,
		"record": record,
	})
}

// GET /api/admin/keys
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Repo.List()
	if err != nil {
		utils.BuildAppErrorResponse(w, err)
		return
	}
	utils.BuildSuccessResponse(w, http.StatusOK, "API Keys", keys)
}
