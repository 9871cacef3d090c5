package service

import (
	"fmt"

	"github.com/aa-ray-man/safehaven/internal/models"
	"github.com/aa-ray-man/safehaven/internal/repository"
)

// TrainingTrigger is the retraining hook invoked after each submission.
type TrainingTrigger interface {
	ScheduleTraining()
}

// ReportService handles safety report business logic.
type ReportService struct {
	repo    *repository.ReportRepository
	trainer TrainingTrigger

	defaultRadiusKm float64
}

// NewReportService creates a report service.
func NewReportService(repo *repository.ReportRepository, trainer TrainingTrigger, defaultRadiusKm float64) *ReportService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 1.0
	}
	return &ReportService{repo: repo, trainer: trainer, defaultRadiusKm: defaultRadiusKm}
}

// Submit validates defaults, persists the report and schedules a
// retrain. The schedule call never blocks.
func (s *ReportService) Submit(req models.CreateReportRequest) (*models.SafetyReport, error) {
	if req.Type == "" {
		req.Type = models.ReportTypeUnsafe
	}
	if !models.ValidReportType(req.Type) {
		return nil, fmt.Errorf("invalid report type: %s", req.Type)
	}
	if req.Severity == 0 {
		req.Severity = models.SeverityDefault
	}
	if req.Severity < models.SeverityMin || req.Severity > models.SeverityMax {
		return nil, fmt.Errorf("severity out of range: %d", req.Severity)
	}

	report := &models.SafetyReport{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Description: req.Description,
		Type:        req.Type,
		Severity:    req.Severity,
	}
	if err := s.repo.Create(report); err != nil {
		return nil, err
	}

	s.trainer.ScheduleTraining()
	return report, nil
}

// Nearby returns reports around a point. Radius zero falls back to the
// configured default.
func (s *ReportService) Nearby(lat, lng, radiusKm float64) []models.SafetyReport {
	if radiusKm <= 0 {
		radiusKm = s.defaultRadiusKm
	}
	return s.repo.FindNearby(lat, lng, radiusKm)
}
