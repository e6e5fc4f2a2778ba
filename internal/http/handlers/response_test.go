package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFail_EnvelopeAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-1")
		fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}

	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.RequestID != "rid-1" || er.Code != ErrCodeNotFound || er.Message != "order not found" {
		t.Fatalf("envelope: %#v", er)
	}
}

func TestFail_ServerErrorLogsAndAborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ran := false
	r.GET("/boom", func(c *gin.Context) {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "db down")
	}, func(c *gin.Context) {
		ran = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if ran {
		t.Fatalf("abort did not stop the chain")
	}
}

func TestOk_and_NoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { ok(c, http.StatusOK, gin.H{"a": 1}) })
	r.GET("/none", func(c *gin.Context) { noContent(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("ok -> %d body=%q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/none", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent -> %d body=%q", w.Code, w.Body.String())
	}
}
