package model

import "encoding/json"

// Severity grades a disparity by practical and statistical significance.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// DisparityMetric compares one demographic group against all other rows.
// Float fields may be NaN when a partition is empty or degenerate.
type DisparityMetric struct {
	MetricName        string
	DemographicGroup  string
	Value             float64
	ComparisonValue   float64
	PercentDifference float64
	PValue            float64
	Severity          Severity
}

// MarshalJSON encodes NaN fields as null.
func (m DisparityMetric) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MetricName        string   `json:"metric_name"`
		DemographicGroup  string   `json:"demographic_group"`
		Value             *float64 `json:"value"`
		ComparisonValue   *float64 `json:"comparison_value"`
		PercentDifference *float64 `json:"percent_difference"`
		PValue            *float64 `json:"statistical_significance"`
		Severity          Severity `json:"severity"`
	}{
		MetricName:        m.MetricName,
		DemographicGroup:  m.DemographicGroup,
		Value:             NullFloat(m.Value),
		ComparisonValue:   NullFloat(m.ComparisonValue),
		PercentDifference: NullFloat(m.PercentDifference),
		PValue:            NullFloat(m.PValue),
		Severity:          m.Severity,
	})
}

// CriticalDisparity is a high-severity, significant disparity.
type CriticalDisparity struct {
	Metric       string   `json:"metric"`
	Group        string   `json:"group"`
	Difference   float64  `json:"difference"`
	Significance float64  `json:"significance"`
	Severity     Severity `json:"severity"`
}

// Recommendation pairs a critical disparity with suggested interventions.
type Recommendation struct {
	TargetGroup            string   `json:"target_group"`
	Metric                 string   `json:"metric"`
	Severity               Severity `json:"severity"`
	SuggestedInterventions []string `json:"suggested_interventions"`
}

// TreatmentPattern summarizes one (race, diagnosis) group.
type TreatmentPattern struct {
	Race           string   `json:"race"`
	Diagnosis      string   `json:"diagnosis"`
	UniquePatients int      `json:"unique_patients"`
	AvgAmountPaid  *float64 `json:"avg_amount_paid"`
}
