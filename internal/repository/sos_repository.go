package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aa-ray-man/safehaven/internal/models"
)

// SOSRepository handles database operations for SOS events.
type SOSRepository struct {
	db *sql.DB
}

// NewSOSRepository creates a new SOS repository.
func NewSOSRepository(db *sql.DB) *SOSRepository {
	return &SOSRepository{db: db}
}

// Create inserts an SOS event.
func (r *SOSRepository) Create(event *models.SOSEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO sos_events (id, user_id, latitude, longitude, contacts_sent, status, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.Latitude, event.Longitude,
		event.ContactsSent, event.Status, event.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sos event: %w", err)
	}
	return nil
}

// List returns recent SOS events, newest first.
func (r *SOSRepository) List(limit int) ([]models.SOSEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, user_id, latitude, longitude, contacts_sent, status, timestamp
		 FROM sos_events ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sos events: %w", err)
	}
	defer rows.Close()

	var events []models.SOSEvent
	for rows.Next() {
		var event models.SOSEvent
		var userID sql.NullString
		var ts int64
		if err := rows.Scan(
			&event.ID, &userID, &event.Latitude, &event.Longitude,
			&event.ContactsSent, &event.Status, &ts,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sos event: %w", err)
		}
		event.UserID = userID.String
		event.Timestamp = time.Unix(ts, 0)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sos rows: %w", err)
	}
	return events, nil
}
