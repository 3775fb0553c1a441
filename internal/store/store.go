package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/normalize"
)

// LoadError tags a load failure with the dataset that could not be retrieved.
type LoadError struct {
	Dataset string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s", e.Dataset, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// RawTables holds the four tables exactly as retrieved from a Source.
type RawTables struct {
	Services   []model.ServiceRow
	Members    []model.MemberRow
	Enrollment []model.EnrollmentRow
	Providers  []model.ProviderRow
}

// Store holds the cleaned, read-only record tables. It is safe for
// concurrent reads once Clean has returned.
type Store struct {
	LoadID uuid.UUID

	raw       RawTables
	cleanOnce sync.Once
	dropped   int

	claims     []model.ClaimRecord
	members    []model.MemberRecord
	enrollment []model.EnrollmentRecord
	providers  []model.ProviderRecord
	memberIdx  map[string]int
}

// New wraps raw tables in a Store. Call Clean before reading records.
func New(raw RawTables) *Store {
	return &Store{LoadID: uuid.New(), raw: raw}
}

// Load fetches the four tables concurrently from src and cleans them.
// Any dataset failure aborts the whole load.
func Load(ctx context.Context, src Source, log zerolog.Logger) (*Store, *model.LoadSummary, error) {
	start := time.Now()
	log.Info().Str("source", src.Name()).Msg("loading record store")

	var raw RawTables
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		raw.Services, err = src.Services(gctx)
		return wrapLoad(model.Services.Name, err)
	})
	g.Go(func() (err error) {
		raw.Members, err = src.Members(gctx)
		return wrapLoad(model.Members.Name, err)
	})
	g.Go(func() (err error) {
		raw.Enrollment, err = src.Enrollment(gctx)
		return wrapLoad(model.Enrollment.Name, err)
	})
	g.Go(func() (err error) {
		raw.Providers, err = src.Providers(gctx)
		return wrapLoad(model.Providers.Name, err)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	loadDur := time.Since(start)

	s := New(raw)
	cleanStart := time.Now()
	dropped := s.Clean()
	cleanDur := time.Since(cleanStart)

	summary := &model.LoadSummary{
		LoadID:         s.LoadID.String(),
		Source:         src.Name(),
		ServiceRows:    len(s.claims),
		MemberRows:     len(s.members),
		EnrollmentRows: len(s.enrollment),
		ProviderRows:   len(s.providers),
		MembersDropped: dropped,
		DurationLoad:   loadDur,
		DurationClean:  cleanDur,
	}

	evt := log.Info()
	if dropped > 0 {
		evt = log.Warn().Int("members_dropped", dropped)
	}
	evt.
		Str("load_id", summary.LoadID).
		Int("services", summary.ServiceRows).
		Int("members", summary.MemberRows).
		Int("enrollment", summary.EnrollmentRows).
		Int("providers", summary.ProviderRows).
		Dur("load_duration", loadDur).
		Dur("clean_duration", cleanDur).
		Msg("record store loaded")

	return s, summary, nil
}

func wrapLoad(dataset string, err error) error {
	if err == nil {
		return nil
	}
	return &LoadError{Dataset: dataset, Err: err}
}

// Clean converts raw rows into typed records exactly once: dates are parsed
// and race/ethnicity codes decoded. Members without a person id, or repeating
// one already seen, are dropped. Later calls are no-ops. Returns the number
// of members dropped.
func (s *Store) Clean() int {
	s.cleanOnce.Do(func() {
		s.claims = make([]model.ClaimRecord, len(s.raw.Services))
		for i := range s.raw.Services {
			s.claims[i] = normalize.ToClaim(&s.raw.Services[i])
		}

		s.members = make([]model.MemberRecord, 0, len(s.raw.Members))
		s.memberIdx = make(map[string]int, len(s.raw.Members))
		for i := range s.raw.Members {
			m := normalize.ToMember(&s.raw.Members[i])
			if m.PersonID == "" {
				s.dropped++
				continue
			}
			if _, dup := s.memberIdx[m.PersonID]; dup {
				s.dropped++
				continue
			}
			s.memberIdx[m.PersonID] = len(s.members)
			s.members = append(s.members, m)
		}

		s.enrollment = make([]model.EnrollmentRecord, len(s.raw.Enrollment))
		for i := range s.raw.Enrollment {
			s.enrollment[i] = normalize.ToEnrollment(&s.raw.Enrollment[i])
		}

		s.providers = make([]model.ProviderRecord, len(s.raw.Providers))
		for i := range s.raw.Providers {
			s.providers[i] = normalize.ToProvider(&s.raw.Providers[i])
		}

		s.raw = RawTables{}
	})
	return s.dropped
}

// Claims returns the cleaned service lines. Callers must not modify it.
func (s *Store) Claims() []model.ClaimRecord { return s.claims }

// Members returns the cleaned members. Callers must not modify it.
func (s *Store) Members() []model.MemberRecord { return s.members }

func (s *Store) Enrollment() []model.EnrollmentRecord { return s.enrollment }

func (s *Store) Providers() []model.ProviderRecord { return s.providers }

// Member looks up the member for a claim's person id (the left-join probe).
func (s *Store) Member(personID string) (model.MemberRecord, bool) {
	if personID == "" {
		return model.MemberRecord{}, false
	}
	i, ok := s.memberIdx[personID]
	if !ok {
		return model.MemberRecord{}, false
	}
	return s.members[i], true
}

// Regions returns the distinct non-empty member regions, sorted.
func (s *Store) Regions() []string {
	return distinct(s.members, func(m model.MemberRecord) string { return m.Region })
}

// Inventory returns record totals and distinct region/state counts.
func (s *Store) Inventory() model.Inventory {
	return model.Inventory{
		TotalMembers:    len(s.members),
		TotalRecords:    len(s.claims),
		TotalEnrollment: len(s.enrollment),
		TotalProviders:  len(s.providers),
		TotalMSAs:       len(s.Regions()),
		TotalStates:     len(distinct(s.members, func(m model.MemberRecord) string { return m.State })),
	}
}

func distinct(members []model.MemberRecord, key func(model.MemberRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range members {
		k := key(m)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
