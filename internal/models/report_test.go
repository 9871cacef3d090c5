package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHazard(t *testing.T) {
	assert.True(t, SafetyReport{Type: ReportTypeUnsafe}.IsHazard())
	assert.True(t, SafetyReport{Type: ReportTypeIncident}.IsHazard())
	assert.True(t, SafetyReport{Type: ReportTypeSuspicious}.IsHazard())
	assert.False(t, SafetyReport{Type: ReportTypeSafe}.IsHazard())
}

func TestIsDanger(t *testing.T) {
	assert.True(t, SafetyReport{Type: ReportTypeUnsafe}.IsDanger())
	assert.True(t, SafetyReport{Type: ReportTypeIncident}.IsDanger())
	assert.False(t, SafetyReport{Type: ReportTypeSuspicious}.IsDanger())
	assert.False(t, SafetyReport{Type: ReportTypeSafe}.IsDanger())
}

func TestValidReportType(t *testing.T) {
	for _, typ := range []string{ReportTypeUnsafe, ReportTypeSuspicious, ReportTypeIncident, ReportTypeSafe} {
		assert.True(t, ValidReportType(typ))
	}
	assert.False(t, ValidReportType(""))
	assert.False(t, ValidReportType("dangerous"))
}
