package model

// Column lists and value accessors for COPY into the claims schema. The
// column order matches the parquet tags so staged tables read back through
// the same row types.

// ServiceColumns returns the ordered column names for claims.services.
func ServiceColumns() []string {
	return []string{
		"primary_person_key", "claim_id_key",
		"from_date", "to_date", "paid_date", "adm_date", "dis_date",
		"diag_ccs_1_label", "service_setting",
		"amt_copay", "amt_deduct", "amt_coins", "amt_paid",
	}
}

// CopyValues returns the row values in ServiceColumns order.
func (r *ServiceRow) CopyValues() []any {
	return []any{
		r.PersonKey, r.ClaimKey,
		r.FromDate, r.ToDate, r.PaidDate, r.AdmissionDate, r.DischargeDate,
		r.DiagnosisLabel, r.ServiceSetting,
		r.Copay, r.Deductible, r.Coinsurance, r.AmountPaid,
	}
}

// MemberColumns returns the ordered column names for claims.members.
func MemberColumns() []string {
	return []string{
		"primary_person_key", "mem_msa_name", "mem_state",
		"mem_race", "mem_ethnicity", "mem_gender",
	}
}

// CopyValues returns the row values in MemberColumns order.
func (r *MemberRow) CopyValues() []any {
	return []any{r.PersonKey, r.MSAName, r.State, r.Race, r.Ethnicity, r.Gender}
}

// EnrollmentColumns returns the ordered column names for claims.enrollment.
func EnrollmentColumns() []string {
	return []string{"primary_person_key", "coverage_start_date", "coverage_end_date", "product_line"}
}

// CopyValues returns the row values in EnrollmentColumns order.
func (r *EnrollmentRow) CopyValues() []any {
	return []any{r.PersonKey, r.CoverageStart, r.CoverageEnd, r.ProductLine}
}

// ProviderColumns returns the ordered column names for claims.providers.
func ProviderColumns() []string {
	return []string{"prov_key", "prov_npi", "prov_specialty", "prov_state", "prov_msa_name"}
}

// CopyValues returns the row values in ProviderColumns order.
func (r *ProviderRow) CopyValues() []any {
	return []any{r.ProviderKey, r.NPI, r.Specialty, r.State, r.MSAName}
}

// CopyRow is implemented by every raw row type that can be staged.
type CopyRow interface {
	CopyValues() []any
}

// Columns returns the staging column list for a dataset.
func (d Dataset) Columns() []string {
	switch d.Name {
	case Services.Name:
		return ServiceColumns()
	case Members.Name:
		return MemberColumns()
	case Enrollment.Name:
		return EnrollmentColumns()
	case Providers.Name:
		return ProviderColumns()
	}
	return nil
}
