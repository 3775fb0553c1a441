package metrics

import (
	"cmp"
	"slices"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/store"
)

type utilizationKey struct {
	region, race, ethnicity, gender, setting string
}

func (k utilizationKey) incomplete() bool {
	return k.region == "" || k.race == "" || k.ethnicity == "" || k.gender == "" || k.setting == ""
}

type utilizationAgg struct {
	persons personSet
	claims  int
	paid    float64
}

// ServiceUtilization groups claims by (region, race, ethnicity, gender,
// setting). Claims with any empty key, including claims without a matching
// member, are left out of every group.
func ServiceUtilization(st *store.Store) []model.UtilizationRow {
	groups := make(map[utilizationKey]*utilizationAgg)

	for i := range st.Claims() {
		c := &st.Claims()[i]
		m, _ := st.Member(c.PersonID)

		key := utilizationKey{
			region:    m.Region,
			race:      m.Race,
			ethnicity: m.Ethnicity,
			gender:    m.Gender,
			setting:   c.Setting,
		}
		if key.incomplete() {
			continue
		}
		agg, ok := groups[key]
		if !ok {
			agg = &utilizationAgg{persons: make(personSet)}
			groups[key] = agg
		}
		agg.persons.add(c.PersonID)
		if c.ClaimID != "" {
			agg.claims++
		}
		if c.AmountPaid != nil {
			agg.paid += *c.AmountPaid
		}
	}

	rows := make([]model.UtilizationRow, 0, len(groups))
	for key, agg := range groups {
		rows = append(rows, model.UtilizationRow{
			Region:           key.region,
			Race:             key.race,
			Ethnicity:        key.ethnicity,
			Gender:           key.gender,
			Setting:          key.setting,
			UniquePatients:   len(agg.persons),
			ClaimCount:       agg.claims,
			TotalAmountPaid:  agg.paid,
			ClaimsPerPatient: ratio(agg.claims, len(agg.persons), 1),
		})
	}
	slices.SortFunc(rows, func(a, b model.UtilizationRow) int {
		return cmp.Or(
			cmp.Compare(a.Region, b.Region),
			cmp.Compare(a.Race, b.Race),
			cmp.Compare(a.Ethnicity, b.Ethnicity),
			cmp.Compare(a.Gender, b.Gender),
			cmp.Compare(a.Setting, b.Setting),
		)
	})
	return rows
}
