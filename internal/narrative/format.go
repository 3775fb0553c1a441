package narrative

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/profile"
)

// InsufficientData replaces values that could not be computed.
const InsufficientData = "insufficient data"

var printer = message.NewPrinter(language.English)

// FormatProfile renders the summary of a profile as the plain-text block sent
// to the generator.
func FormatProfile(p *model.RiskProfile) string {
	var lines []string

	lines = append(lines, "Top Health Conditions:")
	for _, c := range p.Summary.HighRiskConditions.TopConditions {
		lines = append(lines, fmt.Sprintf("- %s: %.1f%% prevalence, affecting %s people",
			c.Condition, c.Prevalence, count(c.AffectedPopulation)))
	}

	cost := p.Summary.CostAnalysis
	lines = append(lines, "\nHealthcare Costs:")
	lines = append(lines, "- Average out-of-pocket cost: "+money(cost.AvgOutOfPocket))
	lines = append(lines, "- Total patient population: "+count(cost.TotalPatients))

	lines = append(lines, "\nHealthcare Disparities:")
	d := p.Summary.Disparities
	for _, cat := range []struct {
		title  string
		groups []model.GroupStat
	}{
		{"Racial Disparities", d.Racial},
		{"Ethnic Disparities", d.Ethnic},
		{"Gender Disparities", d.Gender},
	} {
		lines = append(lines, "\n"+cat.title+":")
		for _, g := range cat.groups {
			lines = append(lines, fmt.Sprintf("- %s: avg %s claims per patient, population: %s",
				g.Group, decimal(g.AvgClaims, 1), count(g.Population)))
		}
	}

	return strings.Join(lines, "\n")
}

// FormatComparison renders each profile under a "Metrics for" heading.
func FormatComparison(profiles []profile.RegionProfile) string {
	var parts []string
	for _, np := range profiles {
		parts = append(parts, fmt.Sprintf("\nMetrics for %s:", np.Region))
		parts = append(parts, FormatProfile(np.Profile))
	}
	return strings.Join(parts, " ")
}

func count(n int) string {
	return printer.Sprintf("%d", n)
}

func money(v *float64) string {
	if v == nil {
		return InsufficientData
	}
	return fmt.Sprintf("$%.2f", *v)
}

func decimal(v *float64, places int) string {
	if v == nil {
		return InsufficientData
	}
	return fmt.Sprintf("%.*f", places, *v)
}
