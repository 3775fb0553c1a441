// mkfixture writes a synthetic claims dataset as parquet shards in the layout
// `msarisk --data-dir` reads.
// Usage: go run ./cmd/mkfixture --out testdata/claims --members 500 --shards 3
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gyeh/msarisk/internal/fixture"
	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/parquetread"
)

func main() {
	out := flag.String("out", "testdata/claims", "output root directory")
	members := flag.Int("members", 200, "members to generate")
	claims := flag.Int("claims", 4, "claims per member")
	providers := flag.Int("providers", 25, "providers to generate")
	shards := flag.Int("shards", 2, "shards for the services and members datasets")
	seed := flag.Uint64("seed", 42, "random seed")
	regions := flag.String("regions", "", "comma-separated MSA names (default three Texas/Oklahoma MSAs)")
	checkOnly := flag.Bool("check", false, "only read back an existing fixture and print stats")
	flag.Parse()

	if *checkOnly {
		if err := check(*out); err != nil {
			fmt.Fprintf(os.Stderr, "check: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := fixture.Options{
		Members:         *members,
		ClaimsPerMember: *claims,
		Providers:       *providers,
		Shards:          *shards,
		Seed:            *seed,
	}
	if *regions != "" {
		for _, r := range strings.Split(*regions, ",") {
			if r = strings.TrimSpace(r); r != "" {
				opts.Regions = append(opts.Regions, r)
			}
		}
	}

	tables := fixture.Generate(opts)
	paths, err := fixture.Write(*out, tables, *shards)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote fixture to %s\n", *out)
	fmt.Printf("  %-12s %6d rows in %d shards\n", model.Services.Name, len(tables.Services), len(paths[model.Services.Name]))
	fmt.Printf("  %-12s %6d rows in %d shards\n", model.Members.Name, len(tables.Members), len(paths[model.Members.Name]))
	fmt.Printf("  %-12s %6d rows in %d shards\n", model.Enrollment.Name, len(tables.Enrollment), len(paths[model.Enrollment.Name]))
	fmt.Printf("  %-12s %6d rows in %d shards\n", model.Providers.Name, len(tables.Providers), len(paths[model.Providers.Name]))
}

// check reads back the services shards and reports how many claims carry no
// cost-sharing amounts.
func check(root string) error {
	dir := filepath.Join(root, model.Services.Dir)
	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var total, noCost int
	diagnoses := make(map[string]int)
	for _, f := range files {
		if !strings.HasSuffix(f.Name(), ".parquet") {
			continue
		}
		rows, err := parquetread.ReadFile[model.ServiceRow](filepath.Join(dir, f.Name()), model.Services.Required)
		if err != nil {
			return err
		}
		for _, r := range rows {
			total++
			if r.Copay == nil && r.Deductible == nil && r.Coinsurance == nil {
				noCost++
			}
			if r.DiagnosisLabel != nil {
				diagnoses[*r.DiagnosisLabel]++
			}
		}
	}
	fmt.Printf("Services: %d rows, %d without cost sharing, %d distinct diagnoses\n", total, noCost, len(diagnoses))
	return nil
}
