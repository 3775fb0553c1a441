package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/engine"
	"github.com/gyeh/msarisk/internal/fixture"
	"github.com/gyeh/msarisk/internal/narrative"
	"github.com/gyeh/msarisk/internal/store"
)

var testRegions = []string{"Austin-Round Rock, TX", "Oklahoma City, OK"}

type fakeGenerator struct {
	text string
	err  error
}

func (g fakeGenerator) Generate(context.Context, string, string) (string, error) {
	return g.text, g.err
}

// newEngine writes a small fixture under a temp dir and returns an engine
// over it, loaded unless load is false.
func newEngine(t *testing.T, gen narrative.Generator, load bool) *engine.Engine {
	t.Helper()
	root := t.TempDir()
	tables := fixture.Generate(fixture.Options{Regions: testRegions, Members: 40})
	if _, err := fixture.Write(root, tables, 2); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	var narr *narrative.Service
	if gen != nil {
		narr = narrative.NewService(gen, 0, zerolog.Nop())
	}
	eng := engine.New(store.NewFileSource(root, 2), narr, zerolog.Nop())
	if load {
		if _, err := eng.Load(context.Background()); err != nil {
			t.Fatalf("load engine: %v", err)
		}
	}
	return eng
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRoutes_Loaded(t *testing.T) {
	s := New(newEngine(t, nil, true), Options{}, zerolog.Nop())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{"root", http.MethodGet, "/", "", http.StatusOK, func(t *testing.T, b map[string]any) {
			if b["message"] != "Hello, World!" {
				t.Errorf("message = %v", b["message"])
			}
		}},
		{"msas", http.MethodGet, "/api/msas", "", http.StatusOK, func(t *testing.T, b map[string]any) {
			if b["count"] != float64(2) {
				t.Errorf("count = %v", b["count"])
			}
		}},
		{"stats", http.MethodGet, "/api/stats", "", http.StatusOK, func(t *testing.T, b map[string]any) {
			if b["total_members"] != float64(40) || b["total_msas"] != float64(2) {
				t.Errorf("stats = %v", b)
			}
		}},
		{"health", http.MethodGet, "/api/health", "", http.StatusOK, func(t *testing.T, b map[string]any) {
			if b["status"] != "healthy" || b["loaded"] != true || b["narrative_enabled"] != false {
				t.Errorf("health = %v", b)
			}
		}},
		{"analyze", http.MethodPost, "/api/analyze", `{"msa_name":"Oklahoma City, OK"}`, http.StatusOK, func(t *testing.T, b map[string]any) {
			metrics, ok := b["health_metrics"].(map[string]any)
			if !ok {
				t.Fatalf("health_metrics missing: %v", b)
			}
			summary := metrics["summary"].(map[string]any)
			if summary["msa_name"] != "Oklahoma City, OK" {
				t.Errorf("summary = %v", summary)
			}
			if _, ok := b["llm_analysis"]; ok {
				t.Error("llm_analysis present with narrative disabled")
			}
		}},
		{"analyze_unknown", http.MethodPost, "/api/analyze", `{"msa_name":"Nowhere"}`, http.StatusNotFound, func(t *testing.T, b map[string]any) {
			if b["message"] != "No data found for specified MSA" {
				t.Errorf("message = %v", b["message"])
			}
		}},
		{"analyze_missing_name", http.MethodPost, "/api/analyze", `{}`, http.StatusUnprocessableEntity, nil},
		{"analyze_bad_json", http.MethodPost, "/api/analyze", `{"msa_name":`, http.StatusBadRequest, nil},
		{"compare", http.MethodPost, "/api/compare", `{"base_msa":"Austin-Round Rock, TX","comparison_msas":["Nowhere","Oklahoma City, OK"]}`, http.StatusOK, func(t *testing.T, b map[string]any) {
			profiles := b["profiles"].(map[string]any)
			if len(profiles) != 2 {
				t.Errorf("profiles = %d, want 2", len(profiles))
			}
			if _, ok := profiles["Nowhere"]; ok {
				t.Error("unknown region included")
			}
			if b["analysis"] != nil {
				t.Errorf("analysis = %v, want null", b["analysis"])
			}
		}},
		{"compare_all_unknown", http.MethodPost, "/api/compare", `{"base_msa":"Nowhere","comparison_msas":["Elsewhere"]}`, http.StatusNotFound, func(t *testing.T, b map[string]any) {
			if b["message"] != "No data found for specified MSAs" {
				t.Errorf("message = %v", b["message"])
			}
		}},
		{"disparities", http.MethodGet, "/api/disparities", "", http.StatusOK, func(t *testing.T, b map[string]any) {
			cost, ok := b["cost_disparities"].([]any)
			if !ok || len(cost) == 0 {
				t.Errorf("cost_disparities = %v", b["cost_disparities"])
			}
		}},
		{"recommendations", http.MethodGet, "/api/recommendations", "", http.StatusOK, func(t *testing.T, b map[string]any) {
			if _, ok := b["recommendations"].([]any); !ok {
				t.Errorf("recommendations = %v", b["recommendations"])
			}
		}},
		{"reload", http.MethodPost, "/api/reload", "", http.StatusOK, func(t *testing.T, b map[string]any) {
			if b["members"] != float64(40) {
				t.Errorf("reload = %v", b)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, decode(t, rec))
			}
		})
	}
}

func TestRoutes_NotLoaded(t *testing.T) {
	s := New(newEngine(t, nil, false), Options{}, zerolog.Nop())

	for _, path := range []string{"/api/msas", "/api/stats", "/api/disparities", "/api/recommendations"} {
		if rec := do(t, s, http.MethodGet, path, ""); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, rec.Code)
		}
	}

	rec := do(t, s, http.MethodGet, "/api/health", "")
	if b := decode(t, rec); b["loaded"] != false {
		t.Errorf("health = %v", b)
	}

	if rec := do(t, s, http.MethodPost, "/api/reload", ""); rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, s, http.MethodGet, "/api/msas", ""); rec.Code != http.StatusOK {
		t.Errorf("msas after reload = %d", rec.Code)
	}
}

func TestAnalyze_Narrative(t *testing.T) {
	text := "## Key Health Challenges\nx\n## Healthcare Access Analysis\nx\n## Recommendations\nx\n## Priority Areas\nx"

	t.Run("included", func(t *testing.T) {
		s := New(newEngine(t, fakeGenerator{text: text}, true), Options{}, zerolog.Nop())
		b := decode(t, do(t, s, http.MethodPost, "/api/analyze", `{"msa_name":"Oklahoma City, OK"}`))
		llm, ok := b["llm_analysis"].(map[string]any)
		if !ok || llm["analysis"] != text {
			t.Errorf("llm_analysis = %v", b["llm_analysis"])
		}
	})

	t.Run("opted_out", func(t *testing.T) {
		s := New(newEngine(t, fakeGenerator{text: text}, true), Options{}, zerolog.Nop())
		b := decode(t, do(t, s, http.MethodPost, "/api/analyze", `{"msa_name":"Oklahoma City, OK","include_llm_analysis":false}`))
		if _, ok := b["llm_analysis"]; ok {
			t.Error("llm_analysis present after opting out")
		}
	})

	t.Run("generator_failure", func(t *testing.T) {
		s := New(newEngine(t, fakeGenerator{err: errors.New("upstream 503")}, true), Options{}, zerolog.Nop())
		rec := do(t, s, http.MethodPost, "/api/analyze", `{"msa_name":"Oklahoma City, OK"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		b := decode(t, rec)
		if _, ok := b["llm_analysis"]; ok {
			t.Error("llm_analysis present after generator failure")
		}
		if b["health_metrics"] == nil {
			t.Error("profile dropped after generator failure")
		}
	})

	t.Run("compare", func(t *testing.T) {
		s := New(newEngine(t, fakeGenerator{text: "comparison"}, true), Options{}, zerolog.Nop())
		b := decode(t, do(t, s, http.MethodPost, "/api/compare", `{"base_msa":"Austin-Round Rock, TX","comparison_msas":["Oklahoma City, OK"]}`))
		analysis, ok := b["analysis"].(map[string]any)
		if !ok {
			t.Fatalf("analysis = %v", b["analysis"])
		}
		if regions := analysis["regions_compared"].([]any); len(regions) != 2 {
			t.Errorf("regions_compared = %v", regions)
		}
		if repaired := analysis["repaired_sections"].([]any); len(repaired) != 4 {
			t.Errorf("repaired_sections = %v", repaired)
		}
	})
}

func TestRequestID(t *testing.T) {
	s := New(newEngine(t, nil, true), Options{}, zerolog.Nop())

	rec := do(t, s, http.MethodGet, "/api/health", "")
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "my-custom-id" {
		t.Errorf("X-Request-ID = %q, want my-custom-id", got)
	}
}

func TestRecovery(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	h := Recovery(zerolog.Nop())(func(echo.Context) error { panic("boom") })
	err := h(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Fatalf("err = %v, want 500 HTTPError", err)
	}
}

func TestCORS(t *testing.T) {
	s := New(newEngine(t, nil, true), Options{CORSOrigins: []string{"http://localhost:3000"}}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
