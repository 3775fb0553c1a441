package metrics

import (
	"cmp"
	"slices"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/store"
)

type costKey struct {
	region  string
	setting string
}

type costAgg struct {
	copay, deductible, coinsurance, paid, total mean
	persons                                     personSet
}

// CostBarriers groups claims by (region, service setting) and averages the
// cost-sharing fields. total_patient_cost is copay+deductible+coinsurance per
// claim with missing parts as zero, so its mean is defined for every group.
func CostBarriers(st *store.Store) []model.CostBarrierRow {
	groups := make(map[costKey]*costAgg)

	for i := range st.Claims() {
		c := &st.Claims()[i]
		m, _ := st.Member(c.PersonID)

		key := costKey{region: m.Region, setting: c.Setting}
		agg, ok := groups[key]
		if !ok {
			agg = &costAgg{persons: make(personSet)}
			groups[key] = agg
		}
		agg.copay.add(c.Copay)
		agg.deductible.add(c.Deductible)
		agg.coinsurance.add(c.Coinsurance)
		agg.paid.add(c.AmountPaid)
		agg.total.addValue(c.TotalPatientCost())
		agg.persons.add(c.PersonID)
	}

	rows := make([]model.CostBarrierRow, 0, len(groups))
	for key, agg := range groups {
		rows = append(rows, model.CostBarrierRow{
			Region:              key.region,
			Setting:             key.setting,
			AvgCopay:            agg.copay.value(),
			AvgDeductible:       agg.deductible.value(),
			AvgCoinsurance:      agg.coinsurance.value(),
			AvgAmountPaid:       agg.paid.value(),
			UniquePatients:      len(agg.persons),
			AvgTotalPatientCost: agg.total.value(),
		})
	}
	slices.SortFunc(rows, func(a, b model.CostBarrierRow) int {
		return cmp.Or(cmp.Compare(a.Region, b.Region), cmp.Compare(a.Setting, b.Setting))
	})
	return rows
}
