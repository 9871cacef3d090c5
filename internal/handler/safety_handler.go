package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aa-ray-man/safehaven/internal/ml"
	"github.com/aa-ray-man/safehaven/internal/models"
	"github.com/aa-ray-man/safehaven/internal/service"
	"github.com/aa-ray-man/safehaven/pkg/response"
)

// EngineStatus exposes the scoring engine's operational snapshot.
type EngineStatus interface {
	Status() ml.Status
}

// SafetyHandler handles HTTP requests for safety scoring and reports.
type SafetyHandler struct {
	routes  *service.RouteService
	reports *service.ReportService
	engine  EngineStatus
}

// NewSafetyHandler creates a new safety handler.
func NewSafetyHandler(routes *service.RouteService, reports *service.ReportService, engine EngineStatus) *SafetyHandler {
	return &SafetyHandler{routes: routes, reports: reports, engine: engine}
}

type locationQuery struct {
	Lat float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng float64 `form:"lng" binding:"required,min=-180,max=180"`
}

type routesQuery struct {
	locationQuery
	Top int `form:"top" binding:"omitempty,min=1,max=8"`
}

type reportsQuery struct {
	locationQuery
	Radius float64 `form:"radius" binding:"omitempty,gt=0,max=50"`
}

// GetSafeRoutes handles GET /api/v1/safety/routes.
func (h *SafetyHandler) GetSafeRoutes(c *gin.Context) {
	var q routesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid location data", err)
		return
	}

	routes := h.routes.SafeRoutes(models.Point{Lat: q.Lat, Lng: q.Lng})
	if q.Top > 0 {
		routes = service.TopRoutes(routes, q.Top)
	}

	response.Success(c, gin.H{
		"routes": routes,
		"count":  len(routes),
	})
}

// GetReports handles GET /api/v1/safety/reports.
func (h *SafetyHandler) GetReports(c *gin.Context) {
	var q reportsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid location data", err)
		return
	}

	reports := h.reports.Nearby(q.Lat, q.Lng, q.Radius)
	response.Success(c, gin.H{
		"reports": reports,
		"count":   len(reports),
	})
}

// SubmitReport handles POST /api/v1/safety/report.
func (h *SafetyHandler) SubmitReport(c *gin.Context) {
	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid report fields", err)
		return
	}

	report, err := h.reports.Submit(req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to submit report", err)
		return
	}

	response.Created(c, report)
}

// GetModelStatus handles GET /api/v1/safety/model-status.
func (h *SafetyHandler) GetModelStatus(c *gin.Context) {
	response.Success(c, h.engine.Status())
}
