package narrative

import (
	"regexp"
	"strings"
	"sync"
)

var fallbackBlocks = map[string]string{
	"Key Health Challenges": "Key Health Challenges:\n" +
		"- The leading conditions by prevalence are listed in the health data above.\n" +
		"- Review conditions affecting the largest populations first.",
	"Healthcare Access Analysis": "Healthcare Access Analysis:\n" +
		"- Compare average out-of-pocket cost against regional benchmarks.\n" +
		"- Review claims per patient across demographic groups for access gaps.",
	"Recommendations": "Recommendations:\n" +
		"- Target prevention and care management at the most prevalent conditions.\n" +
		"- Address cost-sharing barriers for groups with low utilization.",
	"Priority Areas": "Priority Areas:\n" +
		"- Validate the top conditions with local clinical partners.\n" +
		"- Investigate demographic groups with the largest utilization differences.",
	"Relative Performance": "Relative Performance:\n" +
		"- Compare condition prevalence and average costs across the listed regions.",
	"Unique Challenges": "Unique Challenges:\n" +
		"- Identify conditions that rank highly in only one region.",
	"Best Practices": "Best Practices:\n" +
		"- Review programs in regions with lower out-of-pocket costs and higher utilization.",
	"Opportunities for Improvement": "Opportunities for Improvement:\n" +
		"- Focus on the largest cost and utilization gaps relative to peer regions.",
}

var (
	headingMu sync.Mutex
	headings  = make(map[string]*regexp.Regexp)
)

// heading matches section as the start of a line, optionally preceded by a
// markdown heading marker, a list number or bold markers.
func heading(section string) *regexp.Regexp {
	headingMu.Lock()
	defer headingMu.Unlock()
	re, ok := headings[section]
	if !ok {
		re = regexp.MustCompile(`(?mi)^[ \t]*(?:#{1,6}[ \t]*)?(?:\d+[.)][ \t]*)?(?:\*\*)?` +
			regexp.QuoteMeta(section) + `\b`)
		headings[section] = re
	}
	return re
}

// MissingSections reports which sections do not appear as a line heading in
// text. The match is case-insensitive; a mention inside a sentence does not
// count.
func MissingSections(text string, sections []string) []string {
	var missing []string
	for _, s := range sections {
		if !heading(s).MatchString(text) {
			missing = append(missing, s)
		}
	}
	return missing
}

// Repair appends a fallback block for every missing section and reports
// which sections were filled in.
func Repair(text string, sections []string) (string, []string) {
	missing := MissingSections(text, sections)
	if len(missing) == 0 {
		return text, nil
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(text, "\n"))
	for _, s := range missing {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fallbackBlocks[s])
	}
	return b.String(), missing
}
