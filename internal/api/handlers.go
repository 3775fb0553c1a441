package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gyeh/msarisk/internal/engine"
	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/narrative"
	"github.com/gyeh/msarisk/internal/profile"
)

type analyzeRequest struct {
	MSAName            string `json:"msa_name"`
	IncludeLLMAnalysis bool   `json:"include_llm_analysis"`
}

type analyzeResponse struct {
	MSAName       string              `json:"msa_name"`
	Timestamp     time.Time           `json:"timestamp"`
	HealthMetrics *model.RiskProfile  `json:"health_metrics"`
	LLMAnalysis   *narrative.Analysis `json:"llm_analysis,omitempty"`
}

type compareRequest struct {
	BaseMSA        string   `json:"base_msa"`
	ComparisonMSAs []string `json:"comparison_msas"`
}

type compareResponse struct {
	BaseMSA      string                        `json:"base_msa"`
	ComparedMSAs []string                      `json:"compared_msas"`
	Timestamp    time.Time                     `json:"timestamp"`
	Profiles     map[string]*model.RiskProfile `json:"profiles"`
	Analysis     *narrative.Comparison         `json:"analysis"`
}

type regionsResponse struct {
	MSAs  []string `json:"msas"`
	Count int      `json:"count"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Loaded    bool      `json:"loaded"`
	LoadID    string    `json:"load_id,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitzero"`
	Narrative bool      `json:"narrative_enabled"`
	Timestamp time.Time `json:"timestamp"`
}

type reloadResponse struct {
	LoadID         string `json:"load_id"`
	Source         string `json:"source"`
	Services       int    `json:"services"`
	Members        int    `json:"members"`
	Enrollment     int    `json:"enrollment"`
	Providers      int    `json:"providers"`
	MembersDropped int    `json:"members_dropped"`
	DurationMS     int64  `json:"duration_ms"`
}

// engineError maps engine errors to HTTP errors.
func engineError(err error, notFound string) error {
	switch {
	case errors.Is(err, profile.ErrNoData):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case errors.Is(err, engine.ErrNotLoaded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "data not loaded")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Hello, World!"})
}

func (s *Server) listRegions(c echo.Context) error {
	regions, err := s.engine.Regions()
	if err != nil {
		return engineError(err, "")
	}
	if regions == nil {
		regions = []string{}
	}
	return c.JSON(http.StatusOK, regionsResponse{MSAs: regions, Count: len(regions)})
}

func (s *Server) analyze(c echo.Context) error {
	req := analyzeRequest{IncludeLLMAnalysis: true}
	if err := c.Bind(&req); err != nil {
		return err
	}
	req.MSAName = strings.TrimSpace(req.MSAName)
	if req.MSAName == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "msa_name is required")
	}

	p, err := s.engine.Profile(req.MSAName)
	if err != nil {
		return engineError(err, "No data found for specified MSA")
	}

	resp := analyzeResponse{
		MSAName:       req.MSAName,
		Timestamp:     s.now(),
		HealthMetrics: p,
	}
	if narr := s.engine.Narrative(); req.IncludeLLMAnalysis && narr.Enabled() {
		// A narrative failure is logged by the service and leaves the
		// numeric profile intact.
		if a, err := narr.AnalyzeRegion(c.Request().Context(), req.MSAName, p); err == nil {
			resp.LLMAnalysis = a
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) compare(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	req.BaseMSA = strings.TrimSpace(req.BaseMSA)
	if req.BaseMSA == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "base_msa is required")
	}
	if req.ComparisonMSAs == nil {
		req.ComparisonMSAs = []string{}
	}

	profiles, err := s.engine.Compare(req.BaseMSA, req.ComparisonMSAs)
	if err != nil {
		return engineError(err, "No data found for specified MSAs")
	}

	resp := compareResponse{
		BaseMSA:      req.BaseMSA,
		ComparedMSAs: req.ComparisonMSAs,
		Timestamp:    s.now(),
		Profiles:     make(map[string]*model.RiskProfile, len(profiles)),
	}
	for _, p := range profiles {
		resp.Profiles[p.Region] = p.Profile
	}
	if narr := s.engine.Narrative(); narr.Enabled() {
		if cmp, err := narr.CompareRegions(c.Request().Context(), req.BaseMSA, profiles); err == nil {
			resp.Analysis = cmp
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) health(c echo.Context) error {
	resp := healthResponse{
		Status:    "healthy",
		Narrative: s.engine.Narrative().Enabled(),
		Timestamp: s.now(),
	}
	if summary, at, err := s.engine.Summary(); err == nil {
		resp.Loaded = true
		resp.LoadID = summary.LoadID
		resp.LoadedAt = at
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) stats(c echo.Context) error {
	inv, err := s.engine.Inventory()
	if err != nil {
		return engineError(err, "")
	}
	return c.JSON(http.StatusOK, inv)
}

func (s *Server) disparities(c echo.Context) error {
	report, err := s.engine.Disparities()
	if err != nil {
		return engineError(err, "")
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) recommendations(c echo.Context) error {
	recs, err := s.engine.Recommendations()
	if err != nil {
		return engineError(err, "")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (s *Server) reload(c echo.Context) error {
	summary, err := s.engine.Load(c.Request().Context())
	if err != nil {
		s.log.Error().Err(err).Msg("reload failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "reload failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, reloadResponse{
		LoadID:         summary.LoadID,
		Source:         summary.Source,
		Services:       summary.ServiceRows,
		Members:        summary.MemberRows,
		Enrollment:     summary.EnrollmentRows,
		Providers:      summary.ProviderRows,
		MembersDropped: summary.MembersDropped,
		DurationMS:     (summary.DurationLoad + summary.DurationClean + summary.DurationMetrics).Milliseconds(),
	})
}
