package model

// ServiceRow mirrors the Parquet schema of a Claims_Services shard: one
// service line item. Dates stay as raw strings until the store cleans them.
type ServiceRow struct {
	PersonKey      string   `parquet:"PRIMARY_PERSON_KEY"`
	ClaimKey       string   `parquet:"CLAIM_ID_KEY"`
	FromDate       *string  `parquet:"FROM_DATE,optional"`
	ToDate         *string  `parquet:"TO_DATE,optional"`
	PaidDate       *string  `parquet:"PAID_DATE,optional"`
	AdmissionDate  *string  `parquet:"ADM_DATE,optional"`
	DischargeDate  *string  `parquet:"DIS_DATE,optional"`
	DiagnosisLabel *string  `parquet:"DIAG_CCS_1_LABEL,optional"`
	ServiceSetting *string  `parquet:"SERVICE_SETTING,optional"`
	Copay          *float64 `parquet:"AMT_COPAY,optional"`
	Deductible     *float64 `parquet:"AMT_DEDUCT,optional"`
	Coinsurance    *float64 `parquet:"AMT_COINS,optional"`
	AmountPaid     *float64 `parquet:"AMT_PAID,optional"`
}

// MemberRow mirrors a Claims_Member shard. Race and ethnicity are the raw
// integer codes as strings.
type MemberRow struct {
	PersonKey string  `parquet:"PRIMARY_PERSON_KEY"`
	MSAName   *string `parquet:"MEM_MSA_NAME,optional"`
	State     *string `parquet:"MEM_STATE,optional"`
	Race      *string `parquet:"MEM_RACE,optional"`
	Ethnicity *string `parquet:"MEM_ETHNICITY,optional"`
	Gender    *string `parquet:"MEM_GENDER,optional"`
}

// EnrollmentRow mirrors a Claims_Enrollment shard.
type EnrollmentRow struct {
	PersonKey     string  `parquet:"PRIMARY_PERSON_KEY"`
	CoverageStart *string `parquet:"COVERAGE_START_DATE,optional"`
	CoverageEnd   *string `parquet:"COVERAGE_END_DATE,optional"`
	ProductLine   *string `parquet:"PRODUCT_LINE,optional"`
}

// ProviderRow mirrors a Claims_Provider shard.
type ProviderRow struct {
	ProviderKey string  `parquet:"PROV_KEY"`
	NPI         *string `parquet:"PROV_NPI,optional"`
	Specialty   *string `parquet:"PROV_SPECIALTY,optional"`
	State       *string `parquet:"PROV_STATE,optional"`
	MSAName     *string `parquet:"PROV_MSA_NAME,optional"`
}
