package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func rbacRouter(role string, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded",
		func(c *gin.Context) {
			if role != "" {
				c.Set("user_role", role)
			}
		},
		RequireRole(allowed...),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"matching role", "student", []string{"student"}, http.StatusOK},
		{"one of several", "lecturer", []string{"student", "lecturer"}, http.StatusOK},
		{"admin passes every gate", "admin", []string{"lecturer"}, http.StatusOK},
		{"wrong role", "student", []string{"lecturer"}, http.StatusForbidden},
		{"missing role context", "", []string{"student"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/guarded", nil)
			rbacRouter(tc.role, tc.allowed...).ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
