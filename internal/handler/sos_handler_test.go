package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aa-ray-man/safehaven/internal/database"
	"github.com/aa-ray-man/safehaven/internal/middleware"
	"github.com/aa-ray-man/safehaven/internal/repository"
	"github.com/aa-ray-man/safehaven/internal/service"
)

const testJWTSecret = "test-secret"

func testSOSRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sosService := service.NewSOSService(repository.NewSOSRepository(db), service.LogSMSSender{})
	h := NewSOSHandler(sosService)

	r := gin.New()
	r.POST("/api/v1/sos", middleware.Auth(testJWTSecret), h.SendSOS)
	return r
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func doSOSRequest(r *gin.Engine, body map[string]interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos", &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sosBody() map[string]interface{} {
	return map[string]interface{}{
		"latitude":  37.7749,
		"longitude": -122.4194,
		"message":   "I need help, this is my location",
		"contacts":  []string{"+15551230001", "+15551230002"},
	}
}

func TestSendSOSRequiresAuth(t *testing.T) {
	r := testSOSRouter(t)

	w := doSOSRequest(r, sosBody(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSendSOSRejectsBadToken(t *testing.T) {
	r := testSOSRouter(t)

	w := doSOSRequest(r, sosBody(), signedToken(t, "wrong-secret"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSendSOSDispatchesWithValidToken(t *testing.T) {
	r := testSOSRouter(t)

	w := doSOSRequest(r, sosBody(), signedToken(t, testJWTSecret))
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	event := env.Data["event"].(map[string]interface{})
	assert.Equal(t, "sent", event["status"])
	assert.Equal(t, "user-1", event["userId"])
	assert.Equal(t, float64(2), event["contactsSent"])

	sent := env.Data["sent"].([]interface{})
	assert.Len(t, sent, 2)
}

func TestSendSOSValidation(t *testing.T) {
	r := testSOSRouter(t)

	body := sosBody()
	delete(body, "contacts")

	w := doSOSRequest(r, body, signedToken(t, testJWTSecret))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
