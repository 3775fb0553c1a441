package model

// RiskProfile is the composed per-region output.
type RiskProfile struct {
	Summary          ProfileSummary   `json:"summary"`
	DetailedAnalysis DetailedAnalysis `json:"detailed_analysis"`
}

// ProfileSummary is the condensed view used for narrative prompts.
type ProfileSummary struct {
	MSAName            string             `json:"msa_name"`
	HighRiskConditions HighRiskConditions `json:"high_risk_conditions"`
	CostAnalysis       CostOverall        `json:"cost_analysis"`
	Disparities        AccessDisparities  `json:"disparities"`
}

// HighRiskConditions counts the detailed conditions and lists the top five.
type HighRiskConditions struct {
	Count         int            `json:"count"`
	TopConditions []TopCondition `json:"top_conditions"`
}

type TopCondition struct {
	Condition          string  `json:"condition"`
	Prevalence         float64 `json:"prevalence"`
	AffectedPopulation int     `json:"affected_population"`
}

// DetailedAnalysis carries the full breakdowns.
type DetailedAnalysis struct {
	DiseaseRisks      []DiseaseRisk       `json:"disease_risks"`
	CostBarriers      CostBarrierAnalysis `json:"cost_barriers"`
	AccessDisparities AccessDisparities   `json:"access_disparities"`
}

type DiseaseRisk struct {
	Condition          string  `json:"condition"`
	PrevalenceRate     float64 `json:"prevalence_rate"`
	AffectedPopulation int     `json:"affected_population"`
	TotalClaims        int     `json:"total_claims"`
}

// CostOverall aggregates cost rows across every setting in a region.
type CostOverall struct {
	AvgOutOfPocket *float64 `json:"avg_out_of_pocket"`
	TotalPatients  int      `json:"total_patients"`
}

type CostBarrierAnalysis struct {
	OverallMetrics         CostOverall   `json:"overall_metrics"`
	ServiceSettingAnalysis []SettingCost `json:"service_setting_analysis"`
}

type SettingCost struct {
	Setting             string   `json:"setting"`
	AvgCost             *float64 `json:"avg_cost"`
	PatientCount        int      `json:"patient_count"`
	AvgCopay            *float64 `json:"avg_copay"`
	AvgDeductible       *float64 `json:"avg_deductible"`
	AvgCoinsurance      *float64 `json:"avg_coinsurance"`
	AvgTotalPatientCost *float64 `json:"avg_total_patient_cost"`
}

// AccessDisparities groups utilization by each demographic column.
type AccessDisparities struct {
	Racial []GroupStat `json:"racial_disparities"`
	Ethnic []GroupStat `json:"ethnic_disparities"`
	Gender []GroupStat `json:"gender_disparities"`
}

type GroupStat struct {
	Group      string   `json:"group"`
	AvgClaims  *float64 `json:"avg_claims"`
	Population int      `json:"population"`
	AvgCost    *float64 `json:"avg_cost"`
}
