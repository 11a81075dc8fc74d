package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-collab/internal/repository"
)

func TestRespondWithMappedErrorMatchesWrappedSentinel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := fmt.Errorf("get share: %w", repository.ErrNotFound)
	RespondWithMappedError(c, wrapped, []ErrorCase{
		{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "share not found"},
	}, http.StatusInternalServerError, "failed")

	if w.Code != http.StatusNotFound {
		t.Fatalf("wrapped sentinel must map to 404, got %d", w.Code)
	}
}

func TestRespondWithMappedErrorFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithMappedError(c, errors.New("unmapped"), nil, 0, "internal error")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("zero fallback status must degrade to 500, got %d", w.Code)
	}
}
