package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/admission/internal/app/controllers"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/middleware"
	"github.com/yigit/admission/internal/pkg/auth"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "admission-test"})

	r := gin.New()
	SetupRouter(r, Controllers{
		Auth:      controllers.NewAuthController(nil, controllers.CookieConfig{Name: "token"}, zerolog.Nop()),
		Admission: controllers.NewAdmissionController(nil, zerolog.Nop()),
		Admin:     controllers.NewAdminController(nil, nil, nil, zerolog.Nop()),
		Payment:   controllers.NewPaymentController(nil, zerolog.Nop()),
		Health:    controllers.NewHealthController(nil),
	}, middleware.NewAuthMiddleware(jwt, "token"))
	return r, jwt
}

func bearer(t *testing.T, jwt *auth.JWTService, role models.RoleType) string {
	t.Helper()
	token, _, err := jwt.GenerateToken(&models.User{ID: 3, Email: "x@college.edu", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestSetupRouter_Guards(t *testing.T) {
	r, jwt := newTestRouter(t)

	cases := []struct {
		method, path string
		role         models.RoleType
		want         int
	}{
		{http.MethodGet, "/ping", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/auth/check-session", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/admission/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/admission/me", models.RoleAdmin, http.StatusForbidden},
		{http.MethodGet, "/api/admin/applications", models.RoleStudent, http.StatusForbidden},
		{http.MethodPut, "/api/admin/applications/1", models.RoleStudent, http.StatusForbidden},
		{http.MethodGet, "/api/admin/applications/1/documents/view-proxy", models.RoleStudent, http.StatusForbidden},
		{http.MethodGet, "/api/payment/admin/payments", models.RoleStudent, http.StatusForbidden},
		{http.MethodPost, "/api/payment/admin/payment/approve/1", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path+" "+string(tc.role), func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.role != "" {
				req.Header.Set("Authorization", bearer(t, jwt, tc.role))
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
