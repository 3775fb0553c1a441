package normalize

import (
	"github.com/gyeh/msarisk/internal/model"
)

// ToClaim converts a raw ServiceRow into a cleaned ClaimRecord.
func ToClaim(row *model.ServiceRow) model.ClaimRecord {
	return model.ClaimRecord{
		PersonID:      KeyString(row.PersonKey),
		ClaimID:       KeyString(row.ClaimKey),
		FromDate:      ParseDate(row.FromDate),
		ToDate:        ParseDate(row.ToDate),
		PaidDate:      ParseDate(row.PaidDate),
		AdmissionDate: ParseDate(row.AdmissionDate),
		DischargeDate: ParseDate(row.DischargeDate),
		Diagnosis:     Key(row.DiagnosisLabel),
		Setting:       Key(row.ServiceSetting),
		Copay:         finite(row.Copay),
		Deductible:    finite(row.Deductible),
		Coinsurance:   finite(row.Coinsurance),
		AmountPaid:    finite(row.AmountPaid),
	}
}

// ToMember converts a raw MemberRow into a MemberRecord, decoding race and
// ethnicity. This is the only place the code tables are applied.
func ToMember(row *model.MemberRow) model.MemberRecord {
	return model.MemberRecord{
		PersonID:  KeyString(row.PersonKey),
		Region:    Key(row.MSAName),
		State:     Key(row.State),
		Race:      DecodeRace(row.Race),
		Ethnicity: DecodeEthnicity(row.Ethnicity),
		Gender:    Key(row.Gender),
	}
}

// ToEnrollment converts a raw EnrollmentRow.
func ToEnrollment(row *model.EnrollmentRow) model.EnrollmentRecord {
	return model.EnrollmentRecord{
		PersonID:      KeyString(row.PersonKey),
		CoverageStart: ParseDate(row.CoverageStart),
		CoverageEnd:   ParseDate(row.CoverageEnd),
		ProductLine:   Key(row.ProductLine),
	}
}

// ToProvider converts a raw ProviderRow.
func ToProvider(row *model.ProviderRow) model.ProviderRecord {
	return model.ProviderRecord{
		ProviderID: KeyString(row.ProviderKey),
		NPI:        Key(row.NPI),
		Specialty:  Key(row.Specialty),
		State:      Key(row.State),
		Region:     Key(row.MSAName),
	}
}

// finite drops NaN and infinite money values, which some extracts use for
// missing amounts.
func finite(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return model.NullFloat(*v)
}
