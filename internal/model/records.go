package model

import "time"

// ClaimRecord is a cleaned service line. Missing text keys are "".
type ClaimRecord struct {
	PersonID      string
	ClaimID       string
	FromDate      *time.Time
	ToDate        *time.Time
	PaidDate      *time.Time
	AdmissionDate *time.Time
	DischargeDate *time.Time
	Diagnosis     string
	Setting       string
	Copay         *float64
	Deductible    *float64
	Coinsurance   *float64
	AmountPaid    *float64
}

// TotalPatientCost is copay + deductible + coinsurance with missing
// components counted as zero.
func (c *ClaimRecord) TotalPatientCost() float64 {
	return deref(c.Copay) + deref(c.Deductible) + deref(c.Coinsurance)
}

// OutOfPocket is like TotalPatientCost but reports ok=false when all three
// components are missing.
func (c *ClaimRecord) OutOfPocket() (float64, bool) {
	if c.Copay == nil && c.Deductible == nil && c.Coinsurance == nil {
		return 0, false
	}
	return c.TotalPatientCost(), true
}

// MemberRecord is a cleaned member with decoded race and ethnicity.
type MemberRecord struct {
	PersonID  string
	Region    string
	State     string
	Race      string
	Ethnicity string
	Gender    string
}

// EnrollmentRecord is a cleaned coverage span.
type EnrollmentRecord struct {
	PersonID      string
	CoverageStart *time.Time
	CoverageEnd   *time.Time
	ProductLine   string
}

// ProviderRecord is a cleaned provider.
type ProviderRecord struct {
	ProviderID string
	NPI        string
	Specialty  string
	State      string
	Region     string
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
