// Package engine owns the loaded record store and everything derived from
// it. One Engine is built per process and passed to each consumer; a reload
// swaps the whole state at once.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gyeh/msarisk/internal/disparity"
	"github.com/gyeh/msarisk/internal/metrics"
	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/narrative"
	"github.com/gyeh/msarisk/internal/profile"
	"github.com/gyeh/msarisk/internal/store"
)

// ErrNotLoaded is returned by accessors before the first successful Load.
var ErrNotLoaded = errors.New("record store not loaded")

// LoadError wraps a failure to build engine state with the phase it failed in.
type LoadError struct {
	Phase string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DisparityReport is the cross-region disparity analysis of the loaded data.
type DisparityReport struct {
	CostDisparities     []model.DisparityMetric   `json:"cost_disparities"`
	AccessDisparities   []model.DisparityMetric   `json:"access_disparities"`
	TreatmentPatterns   []model.TreatmentPattern  `json:"treatment_patterns"`
	CriticalDisparities []model.CriticalDisparity `json:"critical_disparities"`
}

// state is immutable once built.
type state struct {
	store    *store.Store
	tables   *metrics.Tables
	synth    *profile.Synthesizer
	analyzer *disparity.Analyzer
	summary  model.LoadSummary
	loadedAt time.Time

	reportOnce sync.Once
	report     *DisparityReport
}

// disparities computes the report on first use.
func (s *state) disparities() *DisparityReport {
	s.reportOnce.Do(func() {
		cost := s.analyzer.AnalyzeCostDisparities()
		access := s.analyzer.AnalyzeAccessPatterns()
		s.report = &DisparityReport{
			CostDisparities:     cost,
			AccessDisparities:   access,
			TreatmentPatterns:   s.analyzer.AnalyzeTreatmentPatterns(),
			CriticalDisparities: disparity.Critical(append(append([]model.DisparityMetric(nil), cost...), access...)),
		}
	})
	return s.report
}

// Engine serves profiles, disparities and narratives from the current state.
type Engine struct {
	src       store.Source
	narrative *narrative.Service
	log       zerolog.Logger

	mu    sync.RWMutex
	state *state

	reloads singleflight.Group
}

// New returns an Engine reading from src. narr may be nil when narrative
// generation is not configured.
func New(src store.Source, narr *narrative.Service, log zerolog.Logger) *Engine {
	return &Engine{src: src, narrative: narr, log: log}
}

// Load builds fresh state from the source and swaps it in. Concurrent calls
// share a single load, which runs detached from any one caller's
// cancellation.
func (e *Engine) Load(ctx context.Context) (*model.LoadSummary, error) {
	v, err, shared := e.reloads.Do("load", func() (any, error) {
		return e.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		e.log.Debug().Msg("joined in-flight load")
	}
	summary := v.(model.LoadSummary)
	return &summary, nil
}

func (e *Engine) load(ctx context.Context) (model.LoadSummary, error) {
	st, summary, err := store.Load(ctx, e.src, e.log)
	if err != nil {
		return model.LoadSummary{}, &LoadError{Phase: "load", Err: err}
	}

	metricsStart := time.Now()
	tables := metrics.Compute(st)
	summary.DurationMetrics = time.Since(metricsStart)

	next := &state{
		store:    st,
		tables:   tables,
		synth:    profile.New(tables, e.log),
		analyzer: disparity.New(st),
		summary:  *summary,
		loadedAt: time.Now(),
	}

	e.mu.Lock()
	prev := e.state
	e.state = next
	e.mu.Unlock()

	ev := e.log.Info()
	if prev != nil {
		ev = ev.Str("previous_load_id", prev.summary.LoadID)
	}
	ev.Str("load_id", summary.LoadID).
		Int("prevalence_rows", len(tables.DiseasePrevalence)).
		Int("cost_rows", len(tables.CostBarriers)).
		Int("utilization_rows", len(tables.ServiceUtilization)).
		Dur("metrics_duration", summary.DurationMetrics).
		Msg("engine state ready")
	return next.summary, nil
}

func (e *Engine) current() (*state, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return nil, ErrNotLoaded
	}
	return e.state, nil
}

// Loaded reports whether state is available.
func (e *Engine) Loaded() bool {
	_, err := e.current()
	return err == nil
}

// Summary returns the summary of the current load and when it finished.
func (e *Engine) Summary() (model.LoadSummary, time.Time, error) {
	s, err := e.current()
	if err != nil {
		return model.LoadSummary{}, time.Time{}, err
	}
	return s.summary, s.loadedAt, nil
}

// Regions lists the distinct member regions.
func (e *Engine) Regions() ([]string, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}
	return s.store.Regions(), nil
}

// Inventory returns record totals for the loaded data.
func (e *Engine) Inventory() (model.Inventory, error) {
	s, err := e.current()
	if err != nil {
		return model.Inventory{}, err
	}
	return s.store.Inventory(), nil
}

// Profile returns the risk profile of region.
func (e *Engine) Profile(region string) (*model.RiskProfile, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}
	return s.synth.Generate(region)
}

// Compare returns profiles for base followed by others, skipping regions
// without data.
func (e *Engine) Compare(base string, others []string) ([]profile.RegionProfile, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}
	return s.synth.Compare(base, others)
}

// Disparities returns the disparity report, computed once per load.
func (e *Engine) Disparities() (*DisparityReport, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}
	return s.disparities(), nil
}

// Recommendations maps the critical disparities to interventions.
func (e *Engine) Recommendations() ([]model.Recommendation, error) {
	r, err := e.Disparities()
	if err != nil {
		return nil, err
	}
	return disparity.Recommend(r.CriticalDisparities), nil
}

// Narrative returns the narrative service, which may be disabled.
func (e *Engine) Narrative() *narrative.Service {
	return e.narrative
}
