package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/msarisk/internal/engine"
	"github.com/gyeh/msarisk/internal/exitcode"
	"github.com/gyeh/msarisk/internal/logging"
	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/narrative"
	"github.com/gyeh/msarisk/internal/profile"
)

var (
	region        string
	baseRegion    string
	withRegions   []string
	outputFormat  string
	withNarrative bool
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the MSAs present in the member table",
	RunE:  runRegions,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the risk profile of one MSA",
	RunE:  runProfile,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Print risk profiles for a base MSA and its peers",
	RunE:  runCompare,
}

var disparitiesCmd = &cobra.Command{
	Use:   "disparities",
	Short: "Print demographic disparities and intervention recommendations",
	RunE:  runDisparities,
}

func init() {
	profileCmd.Flags().StringVar(&region, "region", "", "MSA name (required)")
	profileCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json or text")
	profileCmd.Flags().BoolVar(&withNarrative, "narrative", false, "Also generate the narrative analysis (needs LLM_API_KEY)")
	_ = profileCmd.MarkFlagRequired("region")

	compareCmd.Flags().StringVar(&baseRegion, "base", "", "Base MSA name (required)")
	compareCmd.Flags().StringSliceVar(&withRegions, "with", nil, "MSAs to compare against")
	compareCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json or text")
	compareCmd.Flags().BoolVar(&withNarrative, "narrative", false, "Also generate the comparative analysis (needs LLM_API_KEY)")
	_ = compareCmd.MarkFlagRequired("base")

	rootCmd.AddCommand(regionsCmd, profileCmd, compareCmd, disparitiesCmd)
}

func runRegions(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	eng, closeSrc := mustLoadEngine(context.Background(), log, nil)
	defer closeSrc()

	regions, err := eng.Regions()
	if err != nil {
		return err
	}
	for _, r := range regions {
		fmt.Println(r)
	}
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	var narr *narrative.Service
	if withNarrative {
		narr = newNarrative(log)
	}
	eng, closeSrc := mustLoadEngine(ctx, log, narr)
	defer closeSrc()

	p, err := eng.Profile(region)
	if err != nil {
		exitProfileError(log, err, region)
	}

	if outputFormat == "text" {
		fmt.Println(narrative.FormatProfile(p))
	} else if err := printJSON(p); err != nil {
		return err
	}

	if !withNarrative {
		return nil
	}
	analysis, err := eng.Narrative().AnalyzeRegion(ctx, region, p)
	if err != nil {
		log.Error().Err(err).Msg("narrative analysis unavailable")
		os.Exit(exitcode.NarrativeError)
	}
	fmt.Println()
	fmt.Println(analysis.Analysis)
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	var narr *narrative.Service
	if withNarrative {
		narr = newNarrative(log)
	}
	eng, closeSrc := mustLoadEngine(ctx, log, narr)
	defer closeSrc()

	profiles, err := eng.Compare(baseRegion, withRegions)
	if err != nil {
		exitProfileError(log, err, baseRegion)
	}

	if outputFormat == "text" {
		fmt.Println(narrative.FormatComparison(profiles))
	} else {
		byRegion := make(map[string]*model.RiskProfile, len(profiles))
		for _, p := range profiles {
			byRegion[p.Region] = p.Profile
		}
		if err := printJSON(byRegion); err != nil {
			return err
		}
	}

	if !withNarrative {
		return nil
	}
	comparison, err := eng.Narrative().CompareRegions(ctx, baseRegion, profiles)
	if err != nil {
		log.Error().Err(err).Msg("comparative analysis unavailable")
		os.Exit(exitcode.NarrativeError)
	}
	fmt.Println()
	fmt.Println(comparison.ComparativeAnalysis)
	return nil
}

func runDisparities(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	eng, closeSrc := mustLoadEngine(context.Background(), log, nil)
	defer closeSrc()

	report, err := eng.Disparities()
	if err != nil {
		return err
	}
	recs, err := eng.Recommendations()
	if err != nil {
		return err
	}
	return printJSON(struct {
		Disparities     *engine.DisparityReport `json:"disparities"`
		Recommendations []model.Recommendation  `json:"recommendations"`
	}{report, recs})
}

func exitProfileError(log zerolog.Logger, err error, region string) {
	if errors.Is(err, profile.ErrNoData) {
		log.Error().Str("region", region).Msg("no data found for region")
		os.Exit(exitcode.NotFound)
	}
	log.Error().Err(err).Str("region", region).Msg("profile assembly failed")
	os.Exit(exitcode.LoadError)
}
