package models

// Point is a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CandidateRoute is one scored walking option radiating from an origin.
type CandidateRoute struct {
	Start         Point   `json:"start"`
	End           Point   `json:"end"`
	SafetyScore   float64 `json:"safetyScore"`
	IncidentCount int     `json:"incidents"`
}
