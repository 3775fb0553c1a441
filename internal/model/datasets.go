package model

// Dataset describes one of the four source tables.
type Dataset struct {
	Name     string   // e.g. "services"
	Dir      string   // default shard directory, e.g. "Claims_Services"
	Table    string   // staging table in the claims schema
	Required []string // columns that must be present in every shard
}

var (
	Services = Dataset{
		Name:  "services",
		Dir:   "Claims_Services",
		Table: "services",
		Required: []string{
			"PRIMARY_PERSON_KEY", "CLAIM_ID_KEY", "DIAG_CCS_1_LABEL", "SERVICE_SETTING",
			"AMT_COPAY", "AMT_DEDUCT", "AMT_COINS", "AMT_PAID",
		},
	}
	Members = Dataset{
		Name:  "members",
		Dir:   "Claims_Member",
		Table: "members",
		Required: []string{
			"PRIMARY_PERSON_KEY", "MEM_MSA_NAME", "MEM_STATE",
			"MEM_RACE", "MEM_ETHNICITY", "MEM_GENDER",
		},
	}
	Enrollment = Dataset{
		Name:     "enrollment",
		Dir:      "Claims_Enrollment",
		Table:    "enrollment",
		Required: []string{"PRIMARY_PERSON_KEY"},
	}
	Providers = Dataset{
		Name:     "providers",
		Dir:      "Claims_Provider",
		Table:    "providers",
		Required: []string{"PROV_KEY"},
	}
)

// AllDatasets lists the source tables in canonical order.
var AllDatasets = []Dataset{Services, Members, Enrollment, Providers}

// DatasetByName returns the Dataset for the given name, or ok=false.
func DatasetByName(name string) (Dataset, bool) {
	for _, ds := range AllDatasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return Dataset{}, false
}
