package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/internal/referral"
	"github.com/stackvest/stackvest-backend/internal/user"
	"github.com/stackvest/stackvest-backend/internal/wallet"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"github.com/stackvest/stackvest-backend/pkg/config"
	"github.com/stackvest/stackvest-backend/pkg/logger"
	"github.com/stackvest/stackvest-backend/pkg/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 72 * time.Hour

type Handler struct {
	DB    *gorm.DB
	Users user.Repository
	Cfg   config.Config
}

func NewHandler(db *gorm.DB, users user.Repository, cfg config.Config) *Handler {
	return &Handler{DB: db, Users: users, Cfg: cfg}
}

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
}

// POST /api/auth/register
//
// Creates the user, their wallet and, when a referral code was supplied, the
// pending level-1 edge — all in one transaction. The edge stays pending until
// the user's first completed deposit.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		utils.BuildAppErrorResponse(w, apperrors.Validation("Name and email are required"))
		return
	}
	if len(req.Password) < 8 {
		utils.BuildAppErrorResponse(w, apperrors.Validation("Password must be at least 8 characters"))
		return
	}

	if _, err := h.Users.FindByEmail(req.Email); err == nil {
		utils.BuildAppErrorResponse(w, apperrors.ErrDuplicateEntry)
		return
	}

	var referrer *user.User
	if req.ReferralCode != "" {
		found, err := h.Users.FindByReferralCode(strings.ToUpper(strings.TrimSpace(req.ReferralCode)))
		if err != nil {
			utils.BuildAppErrorResponse(w, apperrors.Validation("Unknown referral code"))
			return
		}
		referrer = found
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	newUser := user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         user.RoleUser,
		ReferralCode: newReferralCode(),
	}
	if referrer != nil {
		newUser.ReferredBy = &referrer.ID
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		if err := tx.Create(&wallet.Wallet{UserID: newUser.ID}).Error; err != nil {
			return err
		}
		if referrer != nil {
			edge := referral.Referral{
				ReferrerID:     referrer.ID,
				ReferredUserID: newUser.ID,
				Level:          1,
				CommissionRate: h.Cfg.CommissionRates[0],
				TotalEarnings:  decimal.Zero,
				Status:         referral.StatusPending,
			}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Registration failed", logger.WithError(err))
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	logger.Info("User registered", logger.Fields{logger.UserIdKey: newUser.ID.String()})
	utils.BuildSuccessResponse(w, http.StatusCreated, "Registration successful", newUser)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	usr, err := h.Users.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(req.Password)); err != nil {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		utils.UserIDKey: usr.ID.String(),
		utils.RoleKey:   string(usr.Role),
		utils.ExpKey:    time.Now().Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(h.Cfg.JWTSecret))
	if err != nil {
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token": signed,
		"user":  usr,
	})
}

// newReferralCode derives a short shareable code. The column's unique index
// is the real collision guard.
func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
