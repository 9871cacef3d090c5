package models

import "time"

// Report types. Unsafe is the default when a submission omits the type.
const (
	ReportTypeUnsafe     = "unsafe"
	ReportTypeSuspicious = "suspicious"
	ReportTypeIncident   = "incident"
	ReportTypeSafe       = "safe"
)

// Severity bounds for a report, 1 (minor) through 5 (critical).
const (
	SeverityMin     = 1
	SeverityMax     = 5
	SeverityDefault = 3
)

// SafetyReport is a crowd-sourced observation tied to a location.
type SafetyReport struct {
	ID          int64     `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Geohash     string    `json:"-"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Severity    int       `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
}

// IsHazard reports whether the report describes something negative:
// unsafe, incident or suspicious. Safe reports are not hazards.
func (r SafetyReport) IsHazard() bool {
	return r.Type == ReportTypeUnsafe || r.Type == ReportTypeIncident || r.Type == ReportTypeSuspicious
}

// IsDanger reports whether the report is in the strongest category,
// the one that drives the recent-incident prediction penalty.
func (r SafetyReport) IsDanger() bool {
	return r.Type == ReportTypeUnsafe || r.Type == ReportTypeIncident
}

// ValidReportType reports whether t is one of the known report types.
func ValidReportType(t string) bool {
	switch t {
	case ReportTypeUnsafe, ReportTypeSuspicious, ReportTypeIncident, ReportTypeSafe:
		return true
	}
	return false
}

// CreateReportRequest is the submission payload.
type CreateReportRequest struct {
	Latitude    float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude   float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Description string  `json:"description" binding:"required,min=5,max=500"`
	Type        string  `json:"type" binding:"omitempty,oneof=unsafe suspicious incident safe"`
	Severity    int     `json:"severity" binding:"omitempty,min=1,max=5"`
}
