package disparity

import (
	"math"

	"github.com/gyeh/msarisk/internal/model"
)

// Severity thresholds. Comparisons are strict.
const (
	HighPercent   = 30.0
	HighPValue    = 0.01
	MediumPercent = 15.0
	MediumPValue  = 0.05

	// CriticalPValue is the significance cut applied when selecting
	// critical disparities.
	CriticalPValue = 0.05
)

// ClassifySeverity grades a percent difference and p-value. NaN in either
// argument yields Low.
func ClassifySeverity(percentDiff, pValue float64) model.Severity {
	abs := math.Abs(percentDiff)
	switch {
	case abs > HighPercent && pValue < HighPValue:
		return model.SeverityHigh
	case abs > MediumPercent && pValue < MediumPValue:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// PercentDifference is (value - comparison) / comparison * 100. A zero or
// undefined comparison yields NaN.
func PercentDifference(value, comparison float64) float64 {
	d := (value - comparison) / comparison * 100
	if math.IsInf(d, 0) {
		return math.NaN()
	}
	return d
}
