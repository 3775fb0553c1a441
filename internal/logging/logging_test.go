package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, "json", "warn"), "engine")

	log.Info().Msg("dropped")
	log.Warn().Int("rows", 3).Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line at warn level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["component"] != "engine" || entry["message"] != "kept" || entry["rows"] != float64(3) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_TextAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "text", "loud")
	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("info line missing from %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("text format produced JSON: %q", buf.String())
	}
}
