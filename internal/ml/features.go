package ml

import (
	"math"
	"time"

	"github.com/aa-ray-man/safehaven/internal/models"
)

// FeatureDim is the model input width.
const FeatureDim = 8

// Normalization and neighborhood constants shared between serving and
// training feature construction.
const (
	incidentCountCap = 10
	severityScale    = 5
	recencyDays      = 30

	// trainingNeighborhoodDeg bounds the per-report neighborhood used
	// for label construction: a tight box of ±0.005° in both axes.
	// Deliberately narrower than the prediction-time radius.
	trainingNeighborhoodDeg = 0.005
)

// FeatureVector is the ordered model input:
// lat, lng, hourOfDay/24, dayOfWeek/7, normalized incident count,
// normalized average severity, normalized recency, unsafe ratio.
// Derived and ephemeral, never persisted.
type FeatureVector [FeatureDim]float64

// ExtractFeatures builds the serving-time feature vector for a point
// given the reports found within the prediction radius. An empty report
// set is not an error: the derived quantities all default to neutral
// zero values.
func ExtractFeatures(lat, lng float64, now time.Time, nearby []models.SafetyReport) FeatureVector {
	count, avgSeverity, avgDays, unsafeRatio := summarize(nearby, now)

	return FeatureVector{
		lat,
		lng,
		float64(now.Hour()) / 24,
		float64(now.Weekday()) / 7,
		math.Min(1, count/incidentCountCap),
		avgSeverity / severityScale,
		math.Min(1, avgDays/recencyDays),
		unsafeRatio,
	}
}

// Example is one supervised training pair.
type Example struct {
	Features FeatureVector
	Label    float64
}

// BuildTrainingSet converts the historical report corpus into training
// examples. Each report contributes one example: its features reuse the
// serving-time extraction with the report's own clock position, and its
// label comes from a weak-supervision blend of the report's type and
// severity with its neighborhood composition. The label formula is the
// de facto contract; see TrainingLabel.
func BuildTrainingSet(reports []models.SafetyReport, now time.Time) []Example {
	examples := make([]Example, 0, len(reports))
	for _, report := range reports {
		neighborhood := neighborhoodOf(report, reports)
		nbCount := float64(len(neighborhood))
		if nbCount > incidentCountCap {
			nbCount = incidentCountCap
		}

		var severitySum float64
		var unsafeCount int
		for _, nb := range neighborhood {
			severitySum += float64(nb.Severity)
			if nb.IsHazard() {
				unsafeCount++
			}
		}
		denom := math.Max(1, float64(len(neighborhood)))
		avgSeverity := severitySum / denom
		unsafeRatio := float64(unsafeCount) / denom

		daysSince := now.Sub(report.Timestamp).Hours() / 24

		examples = append(examples, Example{
			Features: FeatureVector{
				report.Latitude,
				report.Longitude,
				float64(report.Timestamp.Hour()) / 24,
				float64(report.Timestamp.Weekday()) / 7,
				nbCount / incidentCountCap,
				avgSeverity / severityScale,
				math.Min(1, daysSince/recencyDays),
				unsafeRatio,
			},
			Label: TrainingLabel(report, unsafeRatio, daysSince),
		})
	}
	return examples
}

// TrainingLabel computes the continuous safety label for one report.
// unsafeRatio is the hazard fraction of the report's neighborhood and
// daysSince its age in days. Hand-tuned weak supervision, preserved
// exactly: severity and neighborhood composition pull the label away
// from neutral 0.5, recency decays it toward half, and night reports
// take a flat penalty.
func TrainingLabel(report models.SafetyReport, unsafeRatio, daysSince float64) float64 {
	label := 0.5
	severity := float64(report.Severity)

	switch report.Type {
	case models.ReportTypeUnsafe, models.ReportTypeIncident:
		label = math.Max(0.1, 0.5-severity/10-unsafeRatio/5)
	case models.ReportTypeSafe:
		label = math.Min(0.9, 0.5+severity/10-unsafeRatio/5)
	case models.ReportTypeSuspicious:
		label = math.Max(0.2, 0.5-severity/20-unsafeRatio/10)
	}

	recencyFactor := math.Max(0.5, 1-daysSince/recencyDays)
	label *= recencyFactor

	hour := report.Timestamp.Hour()
	if hour >= 22 || hour <= 5 {
		label = math.Max(0.1, label-0.1)
	}

	return label
}

// neighborhoodOf returns the reports within the training bounding box
// around r, including r itself.
func neighborhoodOf(r models.SafetyReport, reports []models.SafetyReport) []models.SafetyReport {
	var neighborhood []models.SafetyReport
	for _, other := range reports {
		latDiff := math.Abs(other.Latitude - r.Latitude)
		lngDiff := math.Abs(other.Longitude - r.Longitude)
		if latDiff < trainingNeighborhoodDeg && lngDiff < trainingNeighborhoodDeg {
			neighborhood = append(neighborhood, other)
		}
	}
	return neighborhood
}

// summarize reduces a nearby-report set to the aggregate quantities the
// feature vector needs. Zero reports yield all zeros.
func summarize(reports []models.SafetyReport, now time.Time) (count, avgSeverity, avgDays, unsafeRatio float64) {
	if len(reports) == 0 {
		return 0, 0, 0, 0
	}

	var severitySum, daysSum float64
	var unsafeCount int
	for _, r := range reports {
		severitySum += float64(r.Severity)
		daysSum += now.Sub(r.Timestamp).Hours() / 24
		if r.IsHazard() {
			unsafeCount++
		}
	}

	n := float64(len(reports))
	return n, severitySum / n, daysSum / n, float64(unsafeCount) / n
}
