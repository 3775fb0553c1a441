// Package narrative renders risk profiles into prompts, sends them to a text
// generator and checks the answer carries the expected sections.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/profile"
)

// ErrDisabled is returned when no generator is configured.
var ErrDisabled = errors.New("narrative generation disabled")

// Analysis is the narrative for one region.
type Analysis struct {
	MSAName          string             `json:"msa_name"`
	Analysis         string             `json:"analysis"`
	RepairedSections []string           `json:"repaired_sections,omitempty"`
	SourceData       *model.RiskProfile `json:"source_data"`
	Timestamp        time.Time          `json:"timestamp"`
}

// Comparison is the narrative comparing several regions.
type Comparison struct {
	BaseRegion          string    `json:"base_region"`
	ComparativeAnalysis string    `json:"comparative_analysis"`
	RepairedSections    []string  `json:"repaired_sections,omitempty"`
	RegionsCompared     []string  `json:"regions_compared"`
	Timestamp           time.Time `json:"timestamp"`
}

// Service wraps a Generator with prompt construction, a per-call timeout and
// output repair. Failures are logged and returned; they never affect the
// profile they describe.
type Service struct {
	gen     Generator
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewService returns a Service. A nil gen disables generation.
func NewService(gen Generator, timeout time.Duration, log zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{gen: gen, timeout: timeout, log: log, now: time.Now}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.gen != nil
}

// AnalyzeRegion asks the generator for a single-region analysis.
func (s *Service) AnalyzeRegion(ctx context.Context, region string, p *model.RiskProfile) (*Analysis, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	text, repaired, err := s.generate(ctx, regionSystemPrompt, regionPrompt(region, FormatProfile(p)), RegionSections)
	if err != nil {
		s.log.Error().Err(err).Str("region", region).Msg("narrative generation failed")
		return nil, fmt.Errorf("analyze %s: %w", region, err)
	}
	return &Analysis{
		MSAName:          region,
		Analysis:         text,
		RepairedSections: repaired,
		SourceData:       p,
		Timestamp:        s.now(),
	}, nil
}

// CompareRegions asks the generator to compare base against the other
// profiles.
func (s *Service) CompareRegions(ctx context.Context, base string, profiles []profile.RegionProfile) (*Comparison, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	text, repaired, err := s.generate(ctx, compareSystemPrompt, comparePrompt(base, FormatComparison(profiles)), CompareSections)
	if err != nil {
		s.log.Error().Err(err).Str("base", base).Msg("comparative narrative failed")
		return nil, fmt.Errorf("compare %s: %w", base, err)
	}
	regions := make([]string, 0, len(profiles))
	for _, p := range profiles {
		regions = append(regions, p.Region)
	}
	return &Comparison{
		BaseRegion:          base,
		ComparativeAnalysis: text,
		RepairedSections:    repaired,
		RegionsCompared:     regions,
		Timestamp:           s.now(),
	}, nil
}

func (s *Service) generate(ctx context.Context, system, user string, sections []string) (string, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.gen.Generate(ctx, system, user)
	if err != nil {
		return "", nil, err
	}
	text, repaired := Repair(text, sections)
	ev := s.log.Info()
	if len(repaired) > 0 {
		ev = s.log.Warn().Strs("repaired_sections", repaired)
	}
	ev.Dur("duration", time.Since(start)).Int("chars", len(text)).Msg("narrative generated")
	return text, repaired, nil
}
