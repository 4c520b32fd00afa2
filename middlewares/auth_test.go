package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"volunteen/utils"
)

func authTestServer() *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := gin.New()
	s.GET("/private", Authenticate, func(c *gin.Context) {
		c.String(200, c.GetString("userId"))
	})
	s.GET("/maybe", MaybeAuthenticate, func(c *gin.Context) {
		c.String(200, c.GetString("userId"))
	})
	return s
}

func TestAuthenticate(t *testing.T) {
	s := authTestServer()
	token, err := utils.GenerateToken("a@b.com", "u-42")
	if err != nil {
		t.Fatalf("gen token: %v", err)
	}

	// valid token passes and exposes the user id
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	s.ServeHTTP(w, req)
	if w.Code != 200 || w.Body.String() != "u-42" {
		t.Fatalf("code=%d body=%q", w.Code, w.Body.String())
	}

	// missing and garbage tokens are both 401
	for _, header := range []string{"", "Bearer garbage"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		s.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header=%q code=%d want 401", header, w.Code)
		}
	}
}

func TestMaybeAuthenticate(t *testing.T) {
	s := authTestServer()
	token, _ := utils.GenerateToken("a@b.com", "u-42")

	// with a token: id present
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	s.ServeHTTP(w, req)
	if w.Code != 200 || w.Body.String() != "u-42" {
		t.Fatalf("code=%d body=%q", w.Code, w.Body.String())
	}

	// without: still 200, empty id
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	s.ServeHTTP(w, req)
	if w.Code != 200 || w.Body.String() != "" {
		t.Fatalf("anonymous: code=%d body=%q", w.Code, w.Body.String())
	}
}
