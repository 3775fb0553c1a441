package disparity

// Metric names produced or recognised by the analyzer.
const (
	MetricOutOfPocket       = "Average Out-of-Pocket Cost"
	MetricProviderAccess    = "Provider Access"
	MetricTreatmentPatterns = "Treatment Patterns"
)

var interventions = map[string][]string{
	MetricOutOfPocket: {
		"Implement targeted financial assistance programs",
		"Review and adjust cost-sharing policies",
		"Develop payment plan options",
	},
	MetricProviderAccess: {
		"Expand provider network in underserved areas",
		"Implement telehealth solutions",
		"Create mobile health clinics",
	},
	MetricTreatmentPatterns: {
		"Develop cultural competency training",
		"Review treatment protocols for bias",
		"Implement decision support tools",
	},
}

const fallbackIntervention = "Review and develop targeted interventions"

// Interventions returns the suggested interventions for a metric name. The
// returned slice is a copy.
func Interventions(metric string) []string {
	list, ok := interventions[metric]
	if !ok {
		return []string{fallbackIntervention}
	}
	return append([]string(nil), list...)
}
