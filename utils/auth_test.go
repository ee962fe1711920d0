package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	r := gin.New()
	r.GET("/me", AuthMiddleware("secret"), func(c *gin.Context) {
		storeID, _ := c.Get("storeId")
		c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c), "store": storeID})
	})

	valid, err := GenerateToken("secret", userID.String(), 3, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("secret", userID.String(), 3, -time.Hour)
	require.NoError(t, err)
	foreign, err := GenerateToken("other", userID.String(), 3, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
				assert.Contains(t, w.Body.String(), `"store":3`)
			}
		})
	}
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	_, err := GenerateToken("", "user", 1, time.Hour)
	assert.Error(t, err)
}
