package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/healthtwin-backend/internal/platform/apierr"
)

func init() { gin.SetMode(gin.TestMode) }

func run(h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)
	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := run(func(c *gin.Context) { Success(c, gin.H{"ok": true}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "success", body.Message)
}

func TestFromAPIError(t *testing.T) {
	w, body := run(func(c *gin.Context) {
		FromError(c, fmt.Errorf("wrapped: %w", apierr.Conflict("tasks_pending", errors.New("pending"))))
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, body.Code)
	assert.Equal(t, "tasks_pending", body.Error)
	assert.Equal(t, "pending", body.Message)
}

func TestFromPlainErrorHidesDetail(t *testing.T) {
	w, body := run(func(c *gin.Context) { FromError(c, errors.New("disk on fire")) })
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}
