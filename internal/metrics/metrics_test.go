package metrics

import (
	"testing"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/store"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func member(id, region, race, eth, gender string) model.MemberRow {
	return model.MemberRow{
		PersonKey: id,
		MSAName:   strPtr(region),
		State:     strPtr("TX"),
		Race:      strPtr(race),
		Ethnicity: strPtr(eth),
		Gender:    strPtr(gender),
	}
}

func claim(person, id, diag, setting string, copay, deduct, coins, paid *float64) model.ServiceRow {
	return model.ServiceRow{
		PersonKey:      person,
		ClaimKey:       id,
		DiagnosisLabel: strPtr(diag),
		ServiceSetting: strPtr(setting),
		Copay:          copay,
		Deductible:     deduct,
		Coinsurance:    coins,
		AmountPaid:     paid,
	}
}

func newStore(t *testing.T, members []model.MemberRow, services []model.ServiceRow) *store.Store {
	t.Helper()
	s := store.New(store.RawTables{Members: members, Services: services})
	s.Clean()
	return s
}

func fixture(t *testing.T) *store.Store {
	t.Helper()
	return newStore(t,
		[]model.MemberRow{
			member("P1", "Austin", "1", "1", "F"),
			member("P2", "Austin", "2", "2", "M"),
			member("P3", "Austin", "2", "2", "M"),
			member("P4", "Dallas", "1", "2", "F"),
		},
		[]model.ServiceRow{
			claim("P1", "C1", "Diabetes", "Outpatient", f64Ptr(10), f64Ptr(0), f64Ptr(5), f64Ptr(100)),
			claim("P1", "C2", "Diabetes", "Outpatient", f64Ptr(20), nil, nil, f64Ptr(200)),
			claim("P2", "C3", "Asthma", "Inpatient", nil, f64Ptr(500), nil, f64Ptr(1000)),
			claim("P3", "C4", "", "Outpatient", f64Ptr(30), nil, nil, nil),
			claim("P4", "C5", "Diabetes", "Outpatient", f64Ptr(15), nil, nil, f64Ptr(50)),
			// No matching member: lands in the missing-region group.
			claim("P9", "C6", "Diabetes", "Outpatient", nil, nil, nil, f64Ptr(75)),
		},
	)
}

func findPrevalence(rows []model.DiseasePrevalenceRow, region, diag string) *model.DiseasePrevalenceRow {
	for i := range rows {
		if rows[i].Region == region && rows[i].Diagnosis == diag {
			return &rows[i]
		}
	}
	return nil
}

func TestDiseasePrevalence(t *testing.T) {
	rows := DiseasePrevalence(fixture(t))

	tests := []struct {
		region, diag     string
		patients, claims int
		regionTotal      int
		rate             float64
	}{
		// Austin has three distinct patients; P3's claim has no diagnosis
		// but still counts toward the region total.
		{"Austin", "Diabetes", 1, 2, 3, 100.0 / 3},
		{"Austin", "Asthma", 1, 1, 3, 100.0 / 3},
		{"Dallas", "Diabetes", 1, 1, 1, 100},
		{"", "Diabetes", 1, 1, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.region+"/"+tt.diag, func(t *testing.T) {
			r := findPrevalence(rows, tt.region, tt.diag)
			if r == nil {
				t.Fatal("row missing")
			}
			if r.UniquePatients != tt.patients || r.ClaimCount != tt.claims || r.RegionTotalPatients != tt.regionTotal {
				t.Errorf("got patients=%d claims=%d total=%d", r.UniquePatients, r.ClaimCount, r.RegionTotalPatients)
			}
			if r.PrevalenceRate == nil || !approx(*r.PrevalenceRate, tt.rate) {
				t.Errorf("rate = %v, want %v", r.PrevalenceRate, tt.rate)
			}
		})
	}

	if findPrevalence(rows, "Austin", "") != nil {
		t.Error("empty diagnosis must not form a group")
	}
}

func TestDiseasePrevalence_Invariants(t *testing.T) {
	for _, r := range DiseasePrevalence(fixture(t)) {
		if r.UniquePatients > r.ClaimCount {
			t.Errorf("%s/%s: patients %d > claims %d", r.Region, r.Diagnosis, r.UniquePatients, r.ClaimCount)
		}
		if r.UniquePatients > r.RegionTotalPatients {
			t.Errorf("%s/%s: patients %d > region total %d", r.Region, r.Diagnosis, r.UniquePatients, r.RegionTotalPatients)
		}
		if r.PrevalenceRate != nil && (*r.PrevalenceRate < 0 || *r.PrevalenceRate > 100) {
			t.Errorf("%s/%s: rate %v out of range", r.Region, r.Diagnosis, *r.PrevalenceRate)
		}
	}
}

func TestDiseasePrevalence_SortedByKey(t *testing.T) {
	rows := DiseasePrevalence(fixture(t))
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		if a.Region > b.Region || (a.Region == b.Region && a.Diagnosis > b.Diagnosis) {
			t.Fatalf("rows out of order at %d: %+v then %+v", i, a, b)
		}
	}
}

func TestCostBarriers(t *testing.T) {
	rows := CostBarriers(fixture(t))

	var austinOut *model.CostBarrierRow
	for i := range rows {
		if rows[i].Region == "Austin" && rows[i].Setting == "Outpatient" {
			austinOut = &rows[i]
		}
	}
	if austinOut == nil {
		t.Fatal("Austin/Outpatient missing")
	}
	// Copay over C1, C2, C4: (10+20+30)/3.
	if austinOut.AvgCopay == nil || !approx(*austinOut.AvgCopay, 20) {
		t.Errorf("avg copay = %v, want 20", austinOut.AvgCopay)
	}
	// Only C1 carries a deductible.
	if austinOut.AvgDeductible == nil || *austinOut.AvgDeductible != 0 {
		t.Errorf("avg deductible = %v, want 0", austinOut.AvgDeductible)
	}
	// Paid skips C4's missing amount: (100+200)/2.
	if austinOut.AvgAmountPaid == nil || !approx(*austinOut.AvgAmountPaid, 150) {
		t.Errorf("avg paid = %v, want 150", austinOut.AvgAmountPaid)
	}
	// Totals per claim: 15, 20, 30.
	if austinOut.AvgTotalPatientCost == nil || !approx(*austinOut.AvgTotalPatientCost, 65.0/3) {
		t.Errorf("avg total = %v, want %v", austinOut.AvgTotalPatientCost, 65.0/3)
	}
	if austinOut.UniquePatients != 2 {
		t.Errorf("patients = %d, want 2", austinOut.UniquePatients)
	}

	for _, r := range rows {
		if r.Region == "Austin" && r.Setting == "Inpatient" {
			if r.AvgCopay != nil {
				t.Errorf("inpatient avg copay = %v, want nil", *r.AvgCopay)
			}
			if r.AvgTotalPatientCost == nil || *r.AvgTotalPatientCost != 500 {
				t.Errorf("inpatient avg total = %v, want 500", r.AvgTotalPatientCost)
			}
		}
	}
}

func TestServiceUtilization(t *testing.T) {
	rows := ServiceUtilization(fixture(t))

	var found bool
	for _, r := range rows {
		if r.Region == "Austin" && r.Race == "Asian" && r.Setting == "Outpatient" {
			found = true
			if r.ClaimCount != 2 || r.UniquePatients != 1 {
				t.Errorf("claims=%d patients=%d", r.ClaimCount, r.UniquePatients)
			}
			if r.TotalAmountPaid != 300 {
				t.Errorf("paid = %v, want 300", r.TotalAmountPaid)
			}
			if r.ClaimsPerPatient == nil || *r.ClaimsPerPatient != 2 {
				t.Errorf("claims per patient = %v, want 2", r.ClaimsPerPatient)
			}
		}
		if r.ClaimsPerPatient != nil && r.UniquePatients == 0 {
			t.Errorf("%+v: ratio defined without patients", r)
		}
	}
	if !found {
		t.Fatal("Austin/Asian/Outpatient missing")
	}
}

func TestServiceUtilization_IncompleteKeys(t *testing.T) {
	s := newStore(t,
		[]model.MemberRow{
			member("P1", "Austin", "1", "1", "F"),
			member("P2", "Austin", "1", "1", ""),
			member("P3", "", "1", "1", "F"),
		},
		[]model.ServiceRow{
			claim("P1", "C1", "Flu", "ER", nil, nil, nil, f64Ptr(10)),
			claim("P2", "C2", "Flu", "ER", nil, nil, nil, f64Ptr(20)),
			claim("P3", "C3", "Flu", "ER", nil, nil, nil, f64Ptr(30)),
			claim("P1", "C4", "Flu", "", nil, nil, nil, f64Ptr(40)),
			claim("", "C5", "Flu", "ER", nil, nil, nil, f64Ptr(50)),
		})
	rows := ServiceUtilization(s)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
	}
	r := rows[0]
	if r.Gender != "F" || r.Race != "Asian" || r.Setting != "ER" {
		t.Errorf("row = %+v", r)
	}
	if r.ClaimCount != 1 || r.UniquePatients != 1 || r.TotalAmountPaid != 10 {
		t.Errorf("claims=%d patients=%d paid=%v", r.ClaimCount, r.UniquePatients, r.TotalAmountPaid)
	}
	if r.ClaimsPerPatient == nil || *r.ClaimsPerPatient != 1 {
		t.Errorf("claims per patient = %v, want 1", r.ClaimsPerPatient)
	}
}

func TestDiseasePrevalence_NoPatients(t *testing.T) {
	s := newStore(t, nil, []model.ServiceRow{
		claim("", "C1", "Flu", "ER", nil, nil, nil, f64Ptr(10)),
	})
	if rows := ServiceUtilization(s); len(rows) != 0 {
		t.Errorf("unmatched claim grouped: %+v", rows)
	}
	prev := DiseasePrevalence(s)
	if len(prev) != 1 || prev[0].PrevalenceRate != nil {
		t.Errorf("prevalence over zero patients should be nil, got %+v", prev)
	}
}

func TestCompute_EmptyStore(t *testing.T) {
	tables := Compute(newStore(t, nil, nil))
	if len(tables.DiseasePrevalence) != 0 || len(tables.CostBarriers) != 0 || len(tables.ServiceUtilization) != 0 {
		t.Errorf("expected empty tables, got %+v", tables)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
