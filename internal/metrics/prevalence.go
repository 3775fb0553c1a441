package metrics

import (
	"cmp"
	"slices"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/store"
)

type prevalenceKey struct {
	region    string
	diagnosis string
}

type prevalenceAgg struct {
	persons personSet
	claims  int
}

// DiseasePrevalence groups claims by (region, diagnosis) and computes the
// share of the region's distinct patients carrying each diagnosis. Claims
// without a diagnosis count toward the region total but form no group.
func DiseasePrevalence(st *store.Store) []model.DiseasePrevalenceRow {
	groups := make(map[prevalenceKey]*prevalenceAgg)
	regionPersons := make(map[string]personSet)

	for i := range st.Claims() {
		c := &st.Claims()[i]
		m, _ := st.Member(c.PersonID)

		rp, ok := regionPersons[m.Region]
		if !ok {
			rp = make(personSet)
			regionPersons[m.Region] = rp
		}
		rp.add(c.PersonID)

		if c.Diagnosis == "" {
			continue
		}
		key := prevalenceKey{region: m.Region, diagnosis: c.Diagnosis}
		agg, ok := groups[key]
		if !ok {
			agg = &prevalenceAgg{persons: make(personSet)}
			groups[key] = agg
		}
		agg.persons.add(c.PersonID)
		if c.ClaimID != "" {
			agg.claims++
		}
	}

	rows := make([]model.DiseasePrevalenceRow, 0, len(groups))
	for key, agg := range groups {
		total := len(regionPersons[key.region])
		rows = append(rows, model.DiseasePrevalenceRow{
			Region:              key.region,
			Diagnosis:           key.diagnosis,
			UniquePatients:      len(agg.persons),
			ClaimCount:          agg.claims,
			RegionTotalPatients: total,
			PrevalenceRate:      ratio(len(agg.persons), total, 100),
		})
	}
	slices.SortFunc(rows, func(a, b model.DiseasePrevalenceRow) int {
		return cmp.Or(cmp.Compare(a.Region, b.Region), cmp.Compare(a.Diagnosis, b.Diagnosis))
	})
	return rows
}
