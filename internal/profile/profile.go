// Package profile composes the metric tables into per-region risk profiles.
package profile

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/metrics"
	"github.com/gyeh/msarisk/internal/model"
)

const (
	// DetailedConditions caps disease_risks.
	DetailedConditions = 10
	// SummaryConditions caps summary.top_conditions.
	SummaryConditions = 5
)

// Synthesizer builds profiles from a fixed set of metric tables.
type Synthesizer struct {
	tables *metrics.Tables
	log    zerolog.Logger
}

// New returns a Synthesizer over tables.
func New(tables *metrics.Tables, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{tables: tables, log: log}
}

// Generate composes the risk profile for region. It returns ErrNoData when
// the region is empty or unknown, and an *AssemblyError if composition
// panics.
func (s *Synthesizer) Generate(region string) (p *model.RiskProfile, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = &AssemblyError{Region: region, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if region == "" {
		return nil, ErrNoData
	}
	prevalence := filterRegion(s.tables.DiseasePrevalence, region, func(r model.DiseasePrevalenceRow) string { return r.Region })
	costs := filterRegion(s.tables.CostBarriers, region, func(r model.CostBarrierRow) string { return r.Region })
	utilization := filterRegion(s.tables.ServiceUtilization, region, func(r model.UtilizationRow) string { return r.Region })
	if len(prevalence) == 0 && len(costs) == 0 && len(utilization) == 0 {
		return nil, ErrNoData
	}

	risks := diseaseRisks(prevalence)
	costAnalysis := costBarriers(costs)
	access := accessDisparities(utilization)

	top := risks[:min(len(risks), SummaryConditions)]
	summaryTop := make([]model.TopCondition, 0, len(top))
	for _, r := range top {
		summaryTop = append(summaryTop, model.TopCondition{
			Condition:          r.Condition,
			Prevalence:         r.PrevalenceRate,
			AffectedPopulation: r.AffectedPopulation,
		})
	}

	return &model.RiskProfile{
		Summary: model.ProfileSummary{
			MSAName: region,
			HighRiskConditions: model.HighRiskConditions{
				Count:         len(risks),
				TopConditions: summaryTop,
			},
			CostAnalysis: costAnalysis.OverallMetrics,
			Disparities:  access,
		},
		DetailedAnalysis: model.DetailedAnalysis{
			DiseaseRisks:      risks,
			CostBarriers:      costAnalysis,
			AccessDisparities: access,
		},
	}, nil
}

// RegionProfile pairs a region with its profile.
type RegionProfile struct {
	Region  string
	Profile *model.RiskProfile
}

// Compare generates profiles for base followed by others. Regions without
// data or whose assembly fails are logged and skipped; duplicates are
// generated once. ErrNoData is returned only when no region produced a
// profile.
func (s *Synthesizer) Compare(base string, others []string) ([]RegionProfile, error) {
	seen := make(map[string]bool)
	var out []RegionProfile
	for _, region := range append([]string{base}, others...) {
		if seen[region] {
			continue
		}
		seen[region] = true

		p, err := s.Generate(region)
		if err != nil {
			ev := s.log.Warn().Str("region", region)
			if !errors.Is(err, ErrNoData) {
				ev = s.log.Error().Err(err).Str("region", region)
			}
			ev.Msg("skipping region in comparison")
			continue
		}
		out = append(out, RegionProfile{Region: region, Profile: p})
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

func filterRegion[T any](rows []T, region string, key func(T) string) []T {
	var out []T
	for _, r := range rows {
		if key(r) == region {
			out = append(out, r)
		}
	}
	return out
}

// diseaseRisks returns up to DetailedConditions rows by prevalence, highest
// first. Ties keep table order; rows with undefined prevalence are skipped.
func diseaseRisks(rows []model.DiseasePrevalenceRow) []model.DiseaseRisk {
	ranked := make([]model.DiseasePrevalenceRow, 0, len(rows))
	for _, r := range rows {
		if r.PrevalenceRate != nil {
			ranked = append(ranked, r)
		}
	}
	slices.SortStableFunc(ranked, func(a, b model.DiseasePrevalenceRow) int {
		return cmp.Compare(*b.PrevalenceRate, *a.PrevalenceRate)
	})
	ranked = ranked[:min(len(ranked), DetailedConditions)]

	out := make([]model.DiseaseRisk, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, model.DiseaseRisk{
			Condition:          r.Diagnosis,
			PrevalenceRate:     *r.PrevalenceRate,
			AffectedPopulation: r.UniquePatients,
			TotalClaims:        r.ClaimCount,
		})
	}
	return out
}

// costBarriers averages total patient cost across the region's settings and
// lists each setting in table order.
func costBarriers(rows []model.CostBarrierRow) model.CostBarrierAnalysis {
	var totalCost floatMean
	var patients int
	settings := make([]model.SettingCost, 0, len(rows))
	for _, r := range rows {
		totalCost.add(r.AvgTotalPatientCost)
		patients += r.UniquePatients
		settings = append(settings, model.SettingCost{
			Setting:             r.Setting,
			AvgCost:             r.AvgAmountPaid,
			PatientCount:        r.UniquePatients,
			AvgCopay:            r.AvgCopay,
			AvgDeductible:       r.AvgDeductible,
			AvgCoinsurance:      r.AvgCoinsurance,
			AvgTotalPatientCost: r.AvgTotalPatientCost,
		})
	}
	return model.CostBarrierAnalysis{
		OverallMetrics: model.CostOverall{
			AvgOutOfPocket: totalCost.value(),
			TotalPatients:  patients,
		},
		ServiceSettingAnalysis: settings,
	}
}

func accessDisparities(rows []model.UtilizationRow) model.AccessDisparities {
	return model.AccessDisparities{
		Racial: groupBy(rows, func(r model.UtilizationRow) string { return r.Race }),
		Ethnic: groupBy(rows, func(r model.UtilizationRow) string { return r.Ethnicity }),
		Gender: groupBy(rows, func(r model.UtilizationRow) string { return r.Gender }),
	}
}

// groupBy collapses utilization rows by one demographic column, sorted by
// group. Rows with a missing value for the column are left out.
func groupBy(rows []model.UtilizationRow, key func(model.UtilizationRow) string) []model.GroupStat {
	type agg struct {
		claims     floatMean
		cost       floatMean
		population int
	}
	groups := make(map[string]*agg)
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		g, ok := groups[k]
		if !ok {
			g = &agg{}
			groups[k] = g
		}
		g.claims.add(r.ClaimsPerPatient)
		g.cost.add(&r.TotalAmountPaid)
		g.population += r.UniquePatients
	}

	out := make([]model.GroupStat, 0, len(groups))
	for k, g := range groups {
		out = append(out, model.GroupStat{
			Group:      k,
			AvgClaims:  g.claims.value(),
			Population: g.population,
			AvgCost:    g.cost.value(),
		})
	}
	slices.SortFunc(out, func(a, b model.GroupStat) int { return cmp.Compare(a.Group, b.Group) })
	return out
}

type floatMean struct {
	sum float64
	n   int
}

func (m *floatMean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m *floatMean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	return model.NullFloat(m.sum / float64(m.n))
}
