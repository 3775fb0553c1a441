// Package metrics derives the per-region aggregate tables from the record
// store: disease prevalence, cost barriers and service utilization. Every
// function left-joins claims to members on person id, so claims without a
// matching member land in groups with empty (missing) demographics.
package metrics

import (
	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/store"
)

// Tables holds the three derived tables for one loaded store.
type Tables struct {
	DiseasePrevalence  []model.DiseasePrevalenceRow
	CostBarriers       []model.CostBarrierRow
	ServiceUtilization []model.UtilizationRow
}

// Compute derives all three tables. The result is valid for the lifetime of
// st and must be recomputed after a reload.
func Compute(st *store.Store) *Tables {
	return &Tables{
		DiseasePrevalence:  DiseasePrevalence(st),
		CostBarriers:       CostBarriers(st),
		ServiceUtilization: ServiceUtilization(st),
	}
}

// personSet counts distinct non-empty person ids.
type personSet map[string]struct{}

func (p personSet) add(id string) {
	if id != "" {
		p[id] = struct{}{}
	}
}

// mean accumulates a mean over non-nil values.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m *mean) addValue(v float64) {
	m.sum += v
	m.n++
}

// value returns nil when nothing was accumulated.
func (m *mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	return model.NullFloat(m.sum / float64(m.n))
}

// ratio returns num/den*scale, or nil when den is zero.
func ratio(num, den int, scale float64) *float64 {
	if den == 0 {
		return nil
	}
	return model.NullFloat(float64(num) / float64(den) * scale)
}
