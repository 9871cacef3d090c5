package models

import "time"

// SOS dispatch outcomes.
const (
	SOSStatusSent   = "sent"
	SOSStatusFailed = "failed"
)

// SOSEvent records one emergency fan-out.
type SOSEvent struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ContactsSent int       `json:"contactsSent"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

// SendSOSRequest is the emergency dispatch payload.
type SendSOSRequest struct {
	Latitude  float64  `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude float64  `json:"longitude" binding:"required,min=-180,max=180"`
	Message   string   `json:"message" binding:"required,min=1,max=500"`
	Contacts  []string `json:"contacts" binding:"required,min=1,max=10,dive,required"`
}
