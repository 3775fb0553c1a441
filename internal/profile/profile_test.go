package profile

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/metrics"
	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/store"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

// syntheticTables builds 10 members across two regions with three
// diagnoses. Region A holds races 1, 2 and 3; region B only race 4.
func syntheticTables(t *testing.T) *metrics.Tables {
	t.Helper()
	type person struct {
		id, region, race, gender string
		diags                    []string
	}
	people := []person{
		{"P01", "A", "1", "F", []string{"Diabetes", "Asthma"}},
		{"P02", "A", "1", "M", []string{"Diabetes"}},
		{"P03", "A", "2", "F", []string{"Diabetes", "Hypertension"}},
		{"P04", "A", "2", "M", []string{"Asthma"}},
		{"P05", "A", "3", "F", []string{"Diabetes"}},
		{"P06", "A", "3", "F", []string{"Hypertension"}},
		{"P07", "B", "4", "M", []string{"Asthma"}},
		{"P08", "B", "4", "F", []string{"Asthma", "Diabetes"}},
		{"P09", "B", "4", "M", []string{"Hypertension"}},
		{"P10", "B", "4", "F", []string{"Asthma"}},
	}

	var members []model.MemberRow
	var services []model.ServiceRow
	for _, p := range people {
		members = append(members, model.MemberRow{
			PersonKey: p.id,
			MSAName:   strPtr(p.region),
			State:     strPtr("TX"),
			Race:      strPtr(p.race),
			Ethnicity: strPtr("2"),
			Gender:    strPtr(p.gender),
		})
		for i, d := range p.diags {
			setting := "Outpatient"
			if i%2 == 1 {
				setting = "Inpatient"
			}
			services = append(services, model.ServiceRow{
				PersonKey:      p.id,
				ClaimKey:       fmt.Sprintf("%s-%d", p.id, i),
				DiagnosisLabel: strPtr(d),
				ServiceSetting: strPtr(setting),
				Copay:          f64Ptr(25),
				Deductible:     f64Ptr(float64(10 * i)),
				AmountPaid:     f64Ptr(200),
			})
		}
	}

	s := store.New(store.RawTables{Members: members, Services: services})
	s.Clean()
	return metrics.Compute(s)
}

func TestGenerate_UnknownRegion(t *testing.T) {
	syn := New(syntheticTables(t), zerolog.Nop())
	for _, region := range []string{"Unknown Region", ""} {
		p, err := syn.Generate(region)
		if !errors.Is(err, ErrNoData) {
			t.Errorf("Generate(%q) err = %v, want ErrNoData", region, err)
		}
		if p != nil {
			t.Errorf("Generate(%q) returned a profile", region)
		}
	}
}

func TestGenerate_RegionA(t *testing.T) {
	tables := syntheticTables(t)
	p, err := New(tables, zerolog.Nop()).Generate("A")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	top := p.Summary.HighRiskConditions.TopConditions
	if len(top) > SummaryConditions {
		t.Errorf("top conditions = %d, want <= %d", len(top), SummaryConditions)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Prevalence > top[i-1].Prevalence {
			t.Errorf("top conditions not sorted: %+v", top)
		}
	}
	// Diabetes: 4 of 6 patients in A.
	if top[0].Condition != "Diabetes" || top[0].AffectedPopulation != 4 {
		t.Errorf("top condition = %+v", top[0])
	}
	if p.Summary.HighRiskConditions.Count != 3 {
		t.Errorf("count = %d, want 3", p.Summary.HighRiskConditions.Count)
	}

	races := make(map[string]bool)
	for _, r := range tables.ServiceUtilization {
		if r.Region == "A" {
			races[r.Race] = true
		}
	}
	if got := len(p.Summary.Disparities.Racial); got != len(races) {
		t.Errorf("racial disparities = %d, want %d", got, len(races))
	}
	if got := len(p.DetailedAnalysis.AccessDisparities.Gender); got != 2 {
		t.Errorf("gender disparities = %d, want 2", got)
	}

	overall := p.Summary.CostAnalysis
	if overall.AvgOutOfPocket == nil {
		t.Fatal("avg out of pocket is nil")
	}
	if overall != p.DetailedAnalysis.CostBarriers.OverallMetrics {
		t.Error("summary and detailed cost metrics differ")
	}
	if n := len(p.DetailedAnalysis.CostBarriers.ServiceSettingAnalysis); n != 2 {
		t.Errorf("settings = %d, want 2", n)
	}
}

func TestGenerate_TiesKeepTableOrder(t *testing.T) {
	tables := &metrics.Tables{DiseasePrevalence: []model.DiseasePrevalenceRow{
		{Region: "A", Diagnosis: "Alpha", UniquePatients: 1, PrevalenceRate: f64Ptr(50)},
		{Region: "A", Diagnosis: "Beta", UniquePatients: 1, PrevalenceRate: f64Ptr(50)},
		{Region: "A", Diagnosis: "Gamma", UniquePatients: 2, PrevalenceRate: f64Ptr(100)},
		{Region: "A", Diagnosis: "Null"},
	}}
	p, err := New(tables, zerolog.Nop()).Generate("A")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var got []string
	for _, r := range p.DetailedAnalysis.DiseaseRisks {
		got = append(got, r.Condition)
	}
	if fmt.Sprint(got) != "[Gamma Alpha Beta]" {
		t.Errorf("order = %v", got)
	}
}

func TestGenerate_CapsConditions(t *testing.T) {
	tables := &metrics.Tables{}
	for i := range 14 {
		tables.DiseasePrevalence = append(tables.DiseasePrevalence, model.DiseasePrevalenceRow{
			Region:         "A",
			Diagnosis:      fmt.Sprintf("D%02d", i),
			UniquePatients: i,
			PrevalenceRate: f64Ptr(float64(i)),
		})
	}
	p, err := New(tables, zerolog.Nop()).Generate("A")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n := len(p.DetailedAnalysis.DiseaseRisks); n != DetailedConditions {
		t.Errorf("disease risks = %d, want %d", n, DetailedConditions)
	}
	if n := len(p.Summary.HighRiskConditions.TopConditions); n != SummaryConditions {
		t.Errorf("top conditions = %d, want %d", n, SummaryConditions)
	}
	if p.DetailedAnalysis.DiseaseRisks[0].Condition != "D13" {
		t.Errorf("first = %s, want D13", p.DetailedAnalysis.DiseaseRisks[0].Condition)
	}
}

func TestGenerate_RecoversPanic(t *testing.T) {
	p, err := New(nil, zerolog.Nop()).Generate("A")
	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *AssemblyError", err)
	}
	if ae.Region != "A" || p != nil {
		t.Errorf("region=%q profile=%v", ae.Region, p)
	}
}

func TestCompare_SkipsEmptyRegion(t *testing.T) {
	syn := New(syntheticTables(t), zerolog.Nop())
	got, err := syn.Compare("A", []string{"Nowhere"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(got) != 1 || got[0].Region != "A" {
		t.Errorf("got %+v, want only A", got)
	}
}

func TestCompare_OrderAndDuplicates(t *testing.T) {
	syn := New(syntheticTables(t), zerolog.Nop())
	got, err := syn.Compare("B", []string{"A", "B"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(got) != 2 || got[0].Region != "B" || got[1].Region != "A" {
		t.Errorf("got %+v", got)
	}
}

func TestCompare_AllEmpty(t *testing.T) {
	syn := New(syntheticTables(t), zerolog.Nop())
	if _, err := syn.Compare("X", []string{"Y"}); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}
