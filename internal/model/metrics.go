package model

import "math"

// DiseasePrevalenceRow is one (region, diagnosis) group.
type DiseasePrevalenceRow struct {
	Region              string   `json:"msa_name"`
	Diagnosis           string   `json:"diagnosis"`
	UniquePatients      int      `json:"unique_patients"`
	ClaimCount          int      `json:"claim_count"`
	RegionTotalPatients int      `json:"region_total_patients"`
	PrevalenceRate      *float64 `json:"prevalence_rate"`
}

// CostBarrierRow is one (region, service setting) group.
type CostBarrierRow struct {
	Region              string   `json:"msa_name"`
	Setting             string   `json:"service_setting"`
	AvgCopay            *float64 `json:"avg_copay"`
	AvgDeductible       *float64 `json:"avg_deductible"`
	AvgCoinsurance      *float64 `json:"avg_coinsurance"`
	AvgAmountPaid       *float64 `json:"avg_amount_paid"`
	UniquePatients      int      `json:"unique_patients"`
	AvgTotalPatientCost *float64 `json:"avg_total_patient_cost"`
}

// UtilizationRow is one (region, race, ethnicity, gender, setting) group.
type UtilizationRow struct {
	Region           string   `json:"msa_name"`
	Race             string   `json:"race"`
	Ethnicity        string   `json:"ethnicity"`
	Gender           string   `json:"gender"`
	Setting          string   `json:"service_setting"`
	UniquePatients   int      `json:"unique_patients"`
	ClaimCount       int      `json:"claim_count"`
	TotalAmountPaid  float64  `json:"total_amount_paid"`
	ClaimsPerPatient *float64 `json:"claims_per_patient"`
}

// NullFloat returns nil for NaN and ±Inf, otherwise a pointer to v.
func NullFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FloatOrNaN dereferences v, mapping nil to NaN.
func FloatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
