package pool

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/threadkeeper/internal/obligation"
	"github.com/kingrea/threadkeeper/internal/scheduler"
)

var loadTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const samplePool = `
- id: mentor-secret
  content: Reveal what the mentor hid in the archive
  category: Plot-Advancement
  urgency: HIGH
  chapter_introduced: 2
  characters_involved: [" Ada ", "Bram", ""]
  tension_vector: 0.4
  created_at: 2026-01-10T08:00:00Z
- content: The lighthouse keeper owes Ada an answer
  category: dialogue promise
  urgency: low
  dependencies: [mentor-secret]
`

func TestParseNormalizesEntries(t *testing.T) {
	items, err := Parse([]byte(samplePool), loadTime)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 obligations, got %d", len(items))
	}
	first := items[0]
	if first.Category != obligation.CategoryPlotAdvancement || first.Urgency != obligation.UrgencyHigh {
		t.Fatalf("enums not normalized: %+v", first)
	}
	if got := strings.Join(first.CharactersInvolved, ","); got != "Ada,Bram" {
		t.Fatalf("characters = %q", got)
	}
	if !first.CreatedAt.Equal(time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("created_at lost: %v", first.CreatedAt)
	}

	second := items[1]
	if _, err := uuid.Parse(second.ID); err != nil {
		t.Fatalf("expected generated uuid, got %q", second.ID)
	}
	if !second.CreatedAt.Equal(loadTime) {
		t.Fatalf("missing created_at should default to load time, got %v", second.CreatedAt)
	}
	if second.Category != obligation.CategoryDialoguePromise {
		t.Fatalf("category = %s", second.Category)
	}
}

func TestParseAcceptsDocumentForm(t *testing.T) {
	doc := "obligations:\n  - id: a\n    content: first\n    category: foreshadowing\n    urgency: medium\n"
	items, err := Parse([]byte(doc), loadTime)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestParseErrorsNameTheEntry(t *testing.T) {
	cases := map[string]string{
		"urgency":   "- id: a\n  content: x\n  category: foreshadowing\n  urgency: someday\n",
		"category":  "- id: a\n  content: x\n  category: gossip\n  urgency: low\n",
		"content":   "- id: a\n  category: foreshadowing\n  urgency: low\n",
		"duplicate": "- id: a\n  content: x\n  category: foreshadowing\n  urgency: low\n- id: a\n  content: y\n  category: foreshadowing\n  urgency: low\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body), loadTime)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), "pool: obligations[") {
				t.Fatalf("error should name the entry, got %v", err)
			}
		})
	}
}

func TestSaveThenLoadInto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story", "obligations.yaml")
	items, err := Parse([]byte(samplePool), loadTime)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := Save(path, items); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := scheduler.New()
	n, err := LoadInto(s, path, loadTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	if n != 2 || len(s.GetAllObligations()) != 2 {
		t.Fatalf("expected 2 obligations loaded, got %d", n)
	}
	reloaded, ok := s.GetObligation(items[1].ID)
	if !ok {
		t.Fatalf("generated id was not persisted")
	}
	if !reloaded.CreatedAt.Equal(loadTime) {
		t.Fatalf("saved created_at should survive reload, got %v", reloaded.CreatedAt)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), loadTime); err == nil {
		t.Fatalf("expected error for missing pool file")
	}
}
