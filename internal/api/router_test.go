package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aa-ray-man/safehaven/internal/config"
	"github.com/aa-ray-man/safehaven/internal/database"
	"github.com/aa-ray-man/safehaven/internal/handler"
	"github.com/aa-ray-man/safehaven/internal/ml"
	"github.com/aa-ray-man/safehaven/internal/repository"
	"github.com/aa-ray-man/safehaven/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		PredictionRadiusKm: 0.5,
		IncidentRadiusKm:   0.2,
		ReportsRadiusKm:    1.0,
		CacheTTL:           5 * time.Minute,
		RouteCount:         8,
		RouteDistanceKm:    1.0,
		MidpointCount:      3,
		RateLimit:          1000,
		RateLimitWindow:    time.Minute,
	}

	db, err := database.Open(database.Config{Path: filepath.Join(dir, "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reportRepo := repository.NewReportRepository(db)
	engine := ml.NewEngine(reportRepo, ml.NewFileModelStore(filepath.Join(dir, "model")), ml.Config{
		PredictionRadiusKm: cfg.PredictionRadiusKm,
		CacheTTL:           cfg.CacheTTL,
	})

	routeService := service.NewRouteService(engine, reportRepo,
		cfg.RouteCount, cfg.RouteDistanceKm, cfg.MidpointCount, cfg.IncidentRadiusKm)
	reportService := service.NewReportService(reportRepo, engine, cfg.ReportsRadiusKm)
	sosService := service.NewSOSService(repository.NewSOSRepository(db), service.LogSMSSender{})

	return SetupRouter(cfg,
		handler.NewSafetyHandler(routeService, reportService, engine),
		handler.NewSOSHandler(sosService),
	)
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestCORSPreflight(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/safety/routes", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSOSRouteIsProtected(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sos", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSafetyRoutesEndToEnd(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/safety/routes?lat=37.7749&lng=-122.4194", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "safetyScore")
}
