package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestGSTINValidation(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	type testRequest struct {
		GSTIN string `json:"gstin" binding:"omitempty,gstin"`
	}

	engine := gin.New()
	engine.POST("/test", func(c *gin.Context) {
		var req testRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{"valid gstin", `{"gstin":"29ABCDE1234F1Z5"}`, http.StatusOK},
		{"empty gstin allowed", `{"gstin":""}`, http.StatusOK},
		{"too short", `{"gstin":"29ABC"}`, http.StatusBadRequest},
		{"missing Z marker", `{"gstin":"29ABCDE1234F1X5"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
