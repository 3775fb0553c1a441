// Package disparity compares demographic groups across the loaded claims and
// turns significant gaps into intervention recommendations.
package disparity

import (
	"cmp"
	"math"
	"slices"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/store"
)

// Analyzer computes disparity metrics over a cleaned store. Results are
// computed fresh on every call.
type Analyzer struct {
	st *store.Store
}

// New returns an Analyzer over st.
func New(st *store.Store) *Analyzer {
	return &Analyzer{st: st}
}

type raceCost struct {
	race string
	cost float64
	ok   bool
}

// joinedCosts left-joins claims to members and returns each claim's race and
// out-of-pocket cost, plus the distinct non-empty races in order of first
// appearance.
func (a *Analyzer) joinedCosts() ([]raceCost, []string) {
	claims := a.st.Claims()
	rows := make([]raceCost, len(claims))
	seen := make(map[string]bool)
	var races []string
	for i := range claims {
		c := &claims[i]
		m, _ := a.st.Member(c.PersonID)
		cost, ok := c.OutOfPocket()
		rows[i] = raceCost{race: m.Race, cost: cost, ok: ok}
		if m.Race != "" && !seen[m.Race] {
			seen[m.Race] = true
			races = append(races, m.Race)
		}
	}
	return rows, races
}

// AnalyzeCostDisparities compares mean out-of-pocket cost for each race
// against all other claims, including claims with no race.
func (a *Analyzer) AnalyzeCostDisparities() []model.DisparityMetric {
	rows, races := a.joinedCosts()

	metrics := make([]model.DisparityMetric, 0, len(races))
	for _, race := range races {
		var group, others []float64
		for _, r := range rows {
			if !r.ok {
				continue
			}
			if r.race == race {
				group = append(group, r.cost)
			} else {
				others = append(others, r.cost)
			}
		}

		value, comparison := meanOf(group), meanOf(others)
		_, p := WelchTTest(group, others)
		pct := PercentDifference(value, comparison)

		metrics = append(metrics, model.DisparityMetric{
			MetricName:        MetricOutOfPocket,
			DemographicGroup:  race,
			Value:             value,
			ComparisonValue:   comparison,
			PercentDifference: pct,
			PValue:            p,
			Severity:          ClassifySeverity(pct, p),
		})
	}
	return metrics
}

// AnalyzeAccessPatterns unions the access-related producers.
func (a *Analyzer) AnalyzeAccessPatterns() []model.DisparityMetric {
	var out []model.DisparityMetric
	out = append(out, a.NetworkUtilization()...)
	out = append(out, a.ServiceDelays()...)
	out = append(out, a.ProviderAvailability()...)
	return out
}

// NetworkUtilization compares in-network versus out-of-network use across
// groups. The claims extract carries no network indicator, so it produces no
// metrics.
func (a *Analyzer) NetworkUtilization() []model.DisparityMetric { return nil }

// ServiceDelays compares request-to-service delays across groups. The extract
// has no request timestamps, so it produces no metrics.
func (a *Analyzer) ServiceDelays() []model.DisparityMetric { return nil }

// ProviderAvailability compares provider supply across groups. Produces no
// metrics until a supply measure is defined for the provider table.
func (a *Analyzer) ProviderAvailability() []model.DisparityMetric { return nil }

type patternKey struct {
	race      string
	diagnosis string
}

// AnalyzeTreatmentPatterns groups claims by (race, diagnosis) and reports
// distinct patients and mean amount paid. Claims missing either key are
// excluded.
func (a *Analyzer) AnalyzeTreatmentPatterns() []model.TreatmentPattern {
	type agg struct {
		persons map[string]struct{}
		paid    float64
		n       int
	}
	groups := make(map[patternKey]*agg)

	claims := a.st.Claims()
	for i := range claims {
		c := &claims[i]
		m, _ := a.st.Member(c.PersonID)
		if m.Race == "" || c.Diagnosis == "" {
			continue
		}
		key := patternKey{race: m.Race, diagnosis: c.Diagnosis}
		g, ok := groups[key]
		if !ok {
			g = &agg{persons: make(map[string]struct{})}
			groups[key] = g
		}
		if c.PersonID != "" {
			g.persons[c.PersonID] = struct{}{}
		}
		if c.AmountPaid != nil {
			g.paid += *c.AmountPaid
			g.n++
		}
	}

	out := make([]model.TreatmentPattern, 0, len(groups))
	for key, g := range groups {
		p := model.TreatmentPattern{
			Race:           key.race,
			Diagnosis:      key.diagnosis,
			UniquePatients: len(g.persons),
		}
		if g.n > 0 {
			p.AvgAmountPaid = model.NullFloat(g.paid / float64(g.n))
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(x, y model.TreatmentPattern) int {
		return cmp.Or(cmp.Compare(x.Race, y.Race), cmp.Compare(x.Diagnosis, y.Diagnosis))
	})
	return out
}

// IdentifyCriticalDisparities returns the high-severity, significant
// disparities ordered by absolute percent difference, largest first.
func (a *Analyzer) IdentifyCriticalDisparities() []model.CriticalDisparity {
	all := a.AnalyzeCostDisparities()
	all = append(all, a.AnalyzeAccessPatterns()...)
	return Critical(all)
}

// Critical filters metrics to the critical set. Exposed for callers that
// already hold computed metrics.
func Critical(metrics []model.DisparityMetric) []model.CriticalDisparity {
	var out []model.CriticalDisparity
	for _, m := range metrics {
		if m.Severity != model.SeverityHigh || !(m.PValue < CriticalPValue) {
			continue
		}
		out = append(out, model.CriticalDisparity{
			Metric:       m.MetricName,
			Group:        m.DemographicGroup,
			Difference:   m.PercentDifference,
			Significance: m.PValue,
			Severity:     m.Severity,
		})
	}
	slices.SortStableFunc(out, func(x, y model.CriticalDisparity) int {
		return cmp.Compare(math.Abs(y.Difference), math.Abs(x.Difference))
	})
	return out
}

// GenerateInterventionRecommendations maps each critical disparity to its
// suggested interventions.
func (a *Analyzer) GenerateInterventionRecommendations() []model.Recommendation {
	return Recommend(a.IdentifyCriticalDisparities())
}

// Recommend maps critical disparities to recommendations, preserving order.
func Recommend(critical []model.CriticalDisparity) []model.Recommendation {
	out := make([]model.Recommendation, 0, len(critical))
	for _, d := range critical {
		out = append(out, model.Recommendation{
			TargetGroup:            d.Group,
			Metric:                 d.Metric,
			Severity:               d.Severity,
			SuggestedInterventions: Interventions(d.Metric),
		})
	}
	return out
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
