package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/threadkeeper/internal/logbook"
	"github.com/kingrea/threadkeeper/internal/obligation"
	"github.com/kingrea/threadkeeper/internal/scheduler"
)

var dashboardNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	s := scheduler.New(scheduler.WithClock(func() time.Time { return dashboardNow }))
	for _, o := range []obligation.Obligation{
		{ID: "duel", Content: "Settle the duel", Category: obligation.CategoryConflictResolution, Urgency: obligation.UrgencyCritical, CreatedAt: dashboardNow},
		{ID: "letter", Content: "Deliver the letter", Category: obligation.CategoryPlotAdvancement, Urgency: obligation.UrgencyMedium, CreatedAt: dashboardNow},
		{ID: "garden", Content: "Describe the garden", Category: obligation.CategorySettingDetail, Urgency: obligation.UrgencyLow, CreatedAt: dashboardNow},
	} {
		s.AddObligation(o)
	}
	s.UpdateContext(1, []string{"Ada"}, 0, "")
	return s
}

func press(t *testing.T, d *Dashboard, keys string) tea.Cmd {
	t.Helper()
	model, cmd := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	if model != d {
		t.Fatalf("Update should return the same dashboard")
	}
	return cmd
}

func TestSelectKeyPopulatesTable(t *testing.T) {
	s := newTestScheduler(t)
	d := New(s, WithMaxCount(2))
	if strings.Contains(d.View(), "duel") {
		t.Fatalf("no rows expected before the first selection")
	}
	press(t, d, "s")
	rows := d.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "duel" {
		t.Fatalf("critical obligation should rank first, got %s", rows[0][1])
	}
	if got, _ := s.GetObligation("duel"); got.InjectionCount != 1 {
		t.Fatalf("selection should mark the obligation injected")
	}
	if !strings.Contains(d.View(), "Selected 2 of 3") {
		t.Fatalf("status line missing from view:\n%s", d.View())
	}
}

func TestNextChapterAdvancesContext(t *testing.T) {
	s := newTestScheduler(t)
	d := New(s)
	press(t, d, "n")
	ctx := s.Context()
	if ctx.CurrentChapter != 2 {
		t.Fatalf("expected chapter 2, got %d", ctx.CurrentChapter)
	}
	if len(ctx.RecentCharacters) != 1 || ctx.RecentCharacters[0] != "Ada" {
		t.Fatalf("recent characters should carry over, got %v", ctx.RecentCharacters)
	}
	if len(s.History()) != 1 {
		t.Fatalf("next chapter should run a selection")
	}
}

func TestResetKeyClearsInjections(t *testing.T) {
	s := newTestScheduler(t)
	d := New(s)
	press(t, d, "s")
	press(t, d, "r")
	for id, o := range s.GetAllObligations() {
		if o.InjectionCount != 0 || o.LastInjection != nil {
			t.Fatalf("%s still carries injection stats", id)
		}
	}
	if len(s.History()) != 0 {
		t.Fatalf("history should be cleared")
	}
}

func TestQuitKey(t *testing.T) {
	d := New(newTestScheduler(t))
	cmd := press(t, d, "q")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestViewShowsLogTail(t *testing.T) {
	lb, err := logbook.New(filepath.Join(t.TempDir(), "logs", "selections.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	s := scheduler.New(scheduler.WithLogger(lb))
	s.AddObligation(obligation.Obligation{ID: "only", Content: "x", Category: obligation.CategoryForeshadowing, Urgency: obligation.UrgencyHigh})
	d := New(s, WithLogbook(lb))
	press(t, d, "s")
	view := d.View()
	if !strings.Contains(view, "LOG ·") || !strings.Contains(view, "select: 1 of 1") {
		t.Fatalf("log panel missing from view:\n%s", view)
	}
}
