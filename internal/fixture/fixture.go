// Package fixture generates synthetic claims datasets and writes them as
// parquet shards in the layout FileSource reads.
package fixture

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/msarisk/internal/model"
)

// Options controls generation. Zero values take the defaults.
type Options struct {
	Regions         []string
	Members         int
	ClaimsPerMember int
	Providers       int
	Shards          int
	Seed            uint64
}

// Tables holds generated raw rows for all four datasets.
type Tables struct {
	Services   []model.ServiceRow
	Members    []model.MemberRow
	Enrollment []model.EnrollmentRow
	Providers  []model.ProviderRow
}

var (
	defaultRegions = []string{
		"Austin-Round Rock, TX",
		"Dallas-Fort Worth-Arlington, TX",
		"Oklahoma City, OK",
	}
	states = map[string]string{
		"Austin-Round Rock, TX":           "TX",
		"Dallas-Fort Worth-Arlington, TX": "TX",
		"Oklahoma City, OK":               "OK",
	}
	diagnoses = []string{
		"Essential hypertension",
		"Diabetes mellitus without complication",
		"Asthma",
		"Mood disorders",
		"Osteoarthritis",
		"Spondylosis; intervertebral disc disorders",
		"Screening and history of mental health",
	}
	settings    = []string{"Outpatient", "Inpatient", "Professional", "Emergency"}
	genders     = []string{"F", "M"}
	products    = []string{"Commercial", "Medicare Advantage", "Medicaid"}
	specialties = []string{"Family Medicine", "Internal Medicine", "Cardiology", "Pediatrics", "Psychiatry"}
)

func (o *Options) defaults() {
	if len(o.Regions) == 0 {
		o.Regions = defaultRegions
	}
	if o.Members == 0 {
		o.Members = 200
	}
	if o.ClaimsPerMember == 0 {
		o.ClaimsPerMember = 4
	}
	if o.Providers == 0 {
		o.Providers = 25
	}
	if o.Shards == 0 {
		o.Shards = 2
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
}

// Generate builds deterministic synthetic tables for opts. Race and
// ethnicity are written as codes, and roughly one claim in twenty leaves
// every cost-sharing field empty.
func Generate(opts Options) *Tables {
	opts.defaults()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	t := &Tables{}
	for i := range opts.Members {
		id := fmt.Sprintf("M%06d", i+1)
		region := opts.Regions[i%len(opts.Regions)]
		t.Members = append(t.Members, model.MemberRow{
			PersonKey: id,
			MSAName:   ptr(region),
			State:     ptr(stateOf(region)),
			Race:      ptr(fmt.Sprint(1 + rng.IntN(4))),
			Ethnicity: ptr(fmt.Sprint(1 + rng.IntN(3))),
			Gender:    ptr(genders[rng.IntN(len(genders))]),
		})

		start := base.AddDate(0, rng.IntN(6), 0)
		t.Enrollment = append(t.Enrollment, model.EnrollmentRow{
			PersonKey:     id,
			CoverageStart: ptr(start.Format("2006-01-02")),
			CoverageEnd:   ptr(start.AddDate(1, 0, -1).Format("2006-01-02")),
			ProductLine:   ptr(products[rng.IntN(len(products))]),
		})

		for c := range opts.ClaimsPerMember {
			from := base.AddDate(0, 0, rng.IntN(365))
			setting := settings[rng.IntN(len(settings))]
			row := model.ServiceRow{
				PersonKey:      id,
				ClaimKey:       fmt.Sprintf("%s-C%03d", id, c+1),
				FromDate:       ptr(from.Format("2006-01-02")),
				ToDate:         ptr(from.AddDate(0, 0, rng.IntN(3)).Format("2006-01-02")),
				PaidDate:       ptr(from.AddDate(0, 0, 30).Format("01/02/2006")),
				DiagnosisLabel: ptr(diagnoses[rng.IntN(len(diagnoses))]),
				ServiceSetting: ptr(setting),
				AmountPaid:     ptr(round2(50 + rng.Float64()*2000)),
			}
			if setting == "Inpatient" {
				row.AdmissionDate = row.FromDate
				row.DischargeDate = row.ToDate
			}
			if rng.IntN(20) != 0 {
				row.Copay = ptr(float64(5 * rng.IntN(10)))
				row.Deductible = ptr(round2(rng.Float64() * 300))
				row.Coinsurance = ptr(round2(rng.Float64() * 150))
			}
			t.Services = append(t.Services, row)
		}
	}

	for i := range opts.Providers {
		region := opts.Regions[i%len(opts.Regions)]
		t.Providers = append(t.Providers, model.ProviderRow{
			ProviderKey: fmt.Sprintf("PRV%05d", i+1),
			NPI:         ptr(fmt.Sprintf("1%09d", rng.IntN(1_000_000_000))),
			Specialty:   ptr(specialties[rng.IntN(len(specialties))]),
			State:       ptr(stateOf(region)),
			MSAName:     ptr(region),
		})
	}
	return t
}

// Write writes t under root as <root>/<dataset dir>/part-NNNNN.parquet, with
// services and members split across shards. It returns the written paths by
// dataset name.
func Write(root string, t *Tables, shards int) (map[string][]string, error) {
	if shards <= 0 {
		shards = 1
	}
	out := make(map[string][]string)
	var err error
	if out[model.Services.Name], err = writeDataset(root, model.Services, t.Services, shards); err != nil {
		return nil, err
	}
	if out[model.Members.Name], err = writeDataset(root, model.Members, t.Members, shards); err != nil {
		return nil, err
	}
	if out[model.Enrollment.Name], err = writeDataset(root, model.Enrollment, t.Enrollment, 1); err != nil {
		return nil, err
	}
	if out[model.Providers.Name], err = writeDataset(root, model.Providers, t.Providers, 1); err != nil {
		return nil, err
	}
	return out, nil
}

func writeDataset[T any](root string, ds model.Dataset, rows []T, shards int) ([]string, error) {
	dir := filepath.Join(root, ds.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	per := (len(rows) + shards - 1) / shards
	if per == 0 {
		per = 1
	}
	var paths []string
	for i := 0; i < shards; i++ {
		lo := min(i*per, len(rows))
		hi := min(lo+per, len(rows))
		path := filepath.Join(dir, fmt.Sprintf("part-%05d.parquet", i))
		if err := WriteShard(path, rows[lo:hi]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteShard writes rows to a single parquet file.
func WriteShard[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := parquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer %s: %w", path, err)
	}
	return f.Close()
}

func stateOf(region string) string {
	if s, ok := states[region]; ok {
		return s
	}
	return "TX"
}

func ptr[T any](v T) *T { return &v }

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
