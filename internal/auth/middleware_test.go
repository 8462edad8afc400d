package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stackvest/stackvest-backend/internal/user"
	"github.com/stackvest/stackvest-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		role           user.Role
		withUser       bool
		expectedStatus int
	}{
		{
			name:           "Admin - Access Granted",
			role:           user.RoleAdmin,
			withUser:       true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Regular User - Access Denied",
			role:           user.RoleUser,
			withUser:       true,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "No User In Context - Access Denied",
			withUser:       false,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			middleware := RequireAdmin(nextHandler)

			req := httptest.NewRequest("GET", "/", nil)
			if tt.withUser {
				ctx := context.WithValue(req.Context(), utils.UserKey, user.User{Role: tt.role})
				req = req.WithContext(ctx)
			}

			rr := httptest.NewRecorder()
			middleware.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
