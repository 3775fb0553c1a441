package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/profile"
)

func f64Ptr(v float64) *float64 { return &v }

func sampleProfile() *model.RiskProfile {
	access := model.AccessDisparities{
		Racial: []model.GroupStat{{Group: "Asian", AvgClaims: f64Ptr(2.26), Population: 1500}},
		Ethnic: []model.GroupStat{{Group: "Hispanic", AvgClaims: nil, Population: 0}},
	}
	return &model.RiskProfile{
		Summary: model.ProfileSummary{
			MSAName: "Austin",
			HighRiskConditions: model.HighRiskConditions{
				Count: 1,
				TopConditions: []model.TopCondition{
					{Condition: "Diabetes", Prevalence: 12.345, AffectedPopulation: 1234},
				},
			},
			CostAnalysis: model.CostOverall{AvgOutOfPocket: f64Ptr(42.5), TotalPatients: 10000},
			Disparities:  access,
		},
	}
}

func TestFormatProfile(t *testing.T) {
	got := FormatProfile(sampleProfile())
	want := strings.Join([]string{
		"Top Health Conditions:",
		"- Diabetes: 12.3% prevalence, affecting 1,234 people",
		"",
		"Healthcare Costs:",
		"- Average out-of-pocket cost: $42.50",
		"- Total patient population: 10,000",
		"",
		"Healthcare Disparities:",
		"",
		"Racial Disparities:",
		"- Asian: avg 2.3 claims per patient, population: 1,500",
		"",
		"Ethnic Disparities:",
		"- Hispanic: avg insufficient data claims per patient, population: 0",
		"",
		"Gender Disparities:",
	}, "\n")
	if got != want {
		t.Errorf("FormatProfile mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatProfile_MissingCost(t *testing.T) {
	p := sampleProfile()
	p.Summary.CostAnalysis.AvgOutOfPocket = nil
	if got := FormatProfile(p); !strings.Contains(got, "Average out-of-pocket cost: insufficient data") {
		t.Errorf("missing cost not rendered as insufficient data:\n%s", got)
	}
}

func TestRepair(t *testing.T) {
	text := "1. Key Health Challenges:\n- diabetes\n\n3. RECOMMENDATIONS:\n- screen"
	repaired, missing := Repair(text, RegionSections)
	if strings.Join(missing, ",") != "Healthcare Access Analysis,Priority Areas" {
		t.Fatalf("missing = %v", missing)
	}
	if !strings.HasPrefix(repaired, text) {
		t.Error("original text was not preserved")
	}
	if len(MissingSections(repaired, RegionSections)) != 0 {
		t.Errorf("repaired text still missing sections:\n%s", repaired)
	}

	complete := "Relative Performance\nUnique Challenges\nBest Practices to Consider\nOpportunities for Improvement"
	if out, missing := Repair(complete, CompareSections); out != complete || missing != nil {
		t.Errorf("complete text changed: %q %v", out, missing)
	}
}

func TestMissingSections_HeadingsOnly(t *testing.T) {
	text := "Key Health Challenges:\n- diabetes\n\nHealthcare Access Analysis:\n" +
		"- access is uneven, so we have several recommendations and priority areas in mind."
	repaired, missing := Repair(text, RegionSections)
	if strings.Join(missing, ",") != "Recommendations,Priority Areas" {
		t.Fatalf("missing = %v", missing)
	}
	if len(MissingSections(repaired, RegionSections)) != 0 {
		t.Errorf("repaired text still missing sections:\n%s", repaired)
	}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain", "Recommendations\n- x", true},
		{"markdown heading", "## Recommendations", true},
		{"numbered", "  3) recommendations:", true},
		{"bold", "**Recommendations**", true},
		{"mid sentence", "Our recommendations follow.", false},
		{"prefix of longer word", "Recommendationsx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := len(MissingSections(tt.text, []string{"Recommendations"})) == 0
			if got != tt.want {
				t.Errorf("found = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepair_EmptyText(t *testing.T) {
	out, missing := Repair("", CompareSections)
	if len(missing) != len(CompareSections) {
		t.Fatalf("missing = %v", missing)
	}
	if strings.HasPrefix(out, "\n") {
		t.Errorf("leading newline in %q", out)
	}
}

func TestChatClient_Generate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"analysis text"}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(ClientConfig{BaseURL: srv.URL + "/", APIKey: "secret"})
	text, err := c.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "analysis text" {
		t.Errorf("text = %q", text)
	}
	if got.Model != DefaultModel || got.Temperature != DefaultTemperature || got.MaxTokens != DefaultMaxTokens {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChatClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, "bad key"},
		{"non json error", http.StatusBadGateway, `<html>`, "status 502: <html>"},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrEmptyResponse.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewChatClient(ClientConfig{BaseURL: srv.URL}).Generate(context.Background(), "s", "u")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

type fakeGenerator struct {
	text   string
	err    error
	system string
	user   string
}

func (f *fakeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func TestService_AnalyzeRegion(t *testing.T) {
	gen := &fakeGenerator{text: "Key Health Challenges\nHealthcare Access Analysis\nRecommendations"}
	svc := NewService(gen, time.Second, zerolog.Nop())

	a, err := svc.AnalyzeRegion(context.Background(), "Austin", sampleProfile())
	if err != nil {
		t.Fatalf("AnalyzeRegion: %v", err)
	}
	if gen.system != regionSystemPrompt {
		t.Errorf("system prompt = %q", gen.system)
	}
	if !strings.Contains(gen.user, "health data for Austin") || !strings.Contains(gen.user, "Top Health Conditions:") {
		t.Errorf("user prompt = %q", gen.user)
	}
	if len(a.RepairedSections) != 1 || a.RepairedSections[0] != "Priority Areas" {
		t.Errorf("repaired = %v", a.RepairedSections)
	}
	if a.MSAName != "Austin" || a.SourceData == nil {
		t.Errorf("analysis = %+v", a)
	}
}

func TestService_CompareRegions(t *testing.T) {
	gen := &fakeGenerator{text: strings.Join(CompareSections, "\n")}
	svc := NewService(gen, time.Second, zerolog.Nop())

	c, err := svc.CompareRegions(context.Background(), "Austin", []profile.RegionProfile{
		{Region: "Austin", Profile: sampleProfile()},
		{Region: "Dallas", Profile: sampleProfile()},
	})
	if err != nil {
		t.Fatalf("CompareRegions: %v", err)
	}
	if strings.Join(c.RegionsCompared, ",") != "Austin,Dallas" {
		t.Errorf("regions = %v", c.RegionsCompared)
	}
	if !strings.Contains(gen.user, "Metrics for Dallas:") {
		t.Errorf("user prompt missing Dallas block")
	}
	if c.RepairedSections != nil {
		t.Errorf("repaired = %v", c.RepairedSections)
	}
}

func TestService_Failure(t *testing.T) {
	boom := errors.New("upstream timeout")
	svc := NewService(&fakeGenerator{err: boom}, time.Second, zerolog.Nop())
	if _, err := svc.AnalyzeRegion(context.Background(), "Austin", sampleProfile()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}

	disabled := NewService(nil, 0, zerolog.Nop())
	if disabled.Enabled() {
		t.Error("nil generator reported enabled")
	}
	if _, err := disabled.AnalyzeRegion(context.Background(), "Austin", sampleProfile()); !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}
