package repository

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aa-ray-man/safehaven/internal/models"
	"github.com/aa-ray-man/safehaven/internal/spatial"
)

const (
	// nearbyLimit caps every spatial query result set.
	nearbyLimit = 100

	// geohashPrecision of the indexed column. Precision 6 cells are
	// ~1.2 km wide, so a cell plus its neighbors covers every radius
	// the engine uses (0.2–1 km).
	geohashPrecision = 6

	// lastResortDelta is the fixed coordinate window used when both
	// spatial query paths fail.
	lastResortDelta = 0.05
)

// ReportRepository handles database operations for safety reports.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a report, populating its geohash column. The caller
// is expected to have validated coordinates and fields at the boundary.
func (r *ReportRepository) Create(report *models.SafetyReport) error {
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}
	report.Geohash = spatial.EncodeGeohash(report.Latitude, report.Longitude, geohashPrecision)

	res, err := r.db.Exec(
		`INSERT INTO safety_reports (latitude, longitude, geohash, description, type, severity, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Latitude, report.Longitude, report.Geohash,
		report.Description, report.Type, report.Severity, report.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read report id: %w", err)
	}
	report.ID = id
	return nil
}

// FindNearby returns reports within radiusKm of a point, newest first,
// capped at 100. It degrades from the geohash neighborhood query to a
// bounding box and finally to a fixed coordinate window, and never
// returns an error: total failure yields an empty slice so scoring can
// proceed against zero reports.
func (r *ReportRepository) FindNearby(lat, lng, radiusKm float64) []models.SafetyReport {
	reports, err := r.findByGeohash(lat, lng, radiusKm)
	if err == nil {
		return reports
	}
	log.Printf("Geohash query failed, falling back to bounding box: %v", err)

	reports, err = r.findByBoundingBox(lat, lng, radiusKm)
	if err == nil {
		return reports
	}
	log.Printf("Bounding box query failed, falling back to coordinate window: %v", err)

	reports, err = r.findByCoordinateWindow(lat, lng)
	if err != nil {
		log.Printf("Coordinate window query failed, returning no reports: %v", err)
		return nil
	}
	return reports
}

// All returns up to limit reports, newest first, for training corpus
// construction.
func (r *ReportRepository) All(limit int) ([]models.SafetyReport, error) {
	if limit <= 0 {
		limit = 10000
	}
	rows, err := r.db.Query(
		`SELECT id, latitude, longitude, geohash, description, type, severity, timestamp
		 FROM safety_reports ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// Count returns the number of stored reports.
func (r *ReportRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM safety_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

// findByGeohash is the primary indexed path: match the covering cell
// and its neighbors by prefix, then trim to the exact radius.
func (r *ReportRepository) findByGeohash(lat, lng, radiusKm float64) ([]models.SafetyReport, error) {
	precision := spatial.GeohashPrecisionForRadius(radiusKm)
	if precision > geohashPrecision {
		precision = geohashPrecision
	}
	cells := spatial.GeohashNeighborhood(lat, lng, precision)

	conds := make([]string, len(cells))
	args := make([]interface{}, 0, len(cells)+1)
	for i, cell := range cells {
		conds[i] = "geohash LIKE ?"
		args = append(args, cell+"%")
	}
	args = append(args, nearbyLimit)

	query := `SELECT id, latitude, longitude, geohash, description, type, severity, timestamp
		FROM safety_reports WHERE ` + strings.Join(conds, " OR ") +
		` ORDER BY timestamp DESC LIMIT ?`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("geohash query: %w", err)
	}
	defer rows.Close()

	candidates, err := scanReports(rows)
	if err != nil {
		return nil, err
	}

	reports := candidates[:0]
	for _, report := range candidates {
		if spatial.DistanceKm(lat, lng, report.Latitude, report.Longitude) <= radiusKm {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

// findByBoundingBox covers the radius with a degree box. Slightly over-
// inclusive at the corners.
func (r *ReportRepository) findByBoundingBox(lat, lng, radiusKm float64) ([]models.SafetyReport, error) {
	latDelta, lngDelta := spatial.BoundingDeltas(lat, radiusKm)
	rows, err := r.db.Query(
		`SELECT id, latitude, longitude, geohash, description, type, severity, timestamp
		 FROM safety_reports
		 WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?
		 ORDER BY timestamp DESC LIMIT ?`,
		lat-latDelta, lat+latDelta, lng-lngDelta, lng+lngDelta, nearbyLimit)
	if err != nil {
		return nil, fmt.Errorf("bounding box query: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// findByCoordinateWindow is the last resort: a fixed ±0.05° window
// regardless of the requested radius.
func (r *ReportRepository) findByCoordinateWindow(lat, lng float64) ([]models.SafetyReport, error) {
	rows, err := r.db.Query(
		`SELECT id, latitude, longitude, geohash, description, type, severity, timestamp
		 FROM safety_reports
		 WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?
		 ORDER BY timestamp DESC LIMIT ?`,
		lat-lastResortDelta, lat+lastResortDelta, lng-lastResortDelta, lng+lastResortDelta, nearbyLimit)
	if err != nil {
		return nil, fmt.Errorf("coordinate window query: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

func scanReports(rows *sql.Rows) ([]models.SafetyReport, error) {
	var reports []models.SafetyReport
	for rows.Next() {
		var report models.SafetyReport
		var ts int64
		if err := rows.Scan(
			&report.ID, &report.Latitude, &report.Longitude, &report.Geohash,
			&report.Description, &report.Type, &report.Severity, &ts,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report.Timestamp = time.Unix(ts, 0)
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report rows: %w", err)
	}
	return reports, nil
}
