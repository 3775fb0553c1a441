package narrative

import "fmt"

const (
	regionSystemPrompt  = "You are a public health expert specialized in analyzing healthcare data and providing actionable insights."
	compareSystemPrompt = "You are a public health expert specialized in comparing regional health metrics and identifying opportunities for improvement."
)

// Section names the generator is asked to produce.
var (
	RegionSections = []string{
		"Key Health Challenges",
		"Healthcare Access Analysis",
		"Recommendations",
		"Priority Areas",
	}
	CompareSections = []string{
		"Relative Performance",
		"Unique Challenges",
		"Best Practices",
		"Opportunities for Improvement",
	}
)

func regionPrompt(region, data string) string {
	return fmt.Sprintf(`Analyze the following health data for %s and provide key insights and recommendations:

Health Data:
%s

Please provide analysis in the following format:
1. Key Health Challenges:
   - Identify the most pressing health issues
   - Analyze prevalence patterns
   - Highlight concerning trends

2. Healthcare Access Analysis:
   - Evaluate cost barriers
   - Identify access disparities
   - Assess healthcare utilization patterns

3. Recommendations:
   - Suggest specific public health interventions
   - Propose community-specific solutions
   - Outline preventive care strategies

4. Priority Areas:
   - List top 3 immediate action items
   - Suggest resource allocation priorities
   - Identify areas needing further investigation
`, region, data)
}

func comparePrompt(base, data string) string {
	return fmt.Sprintf(`Compare the health metrics of %s with similar regions:

Comparative Data:
%s

Provide insights on:
1. Relative Performance
2. Unique Challenges
3. Best Practices to Consider
4. Opportunities for Improvement
`, base, data)
}
