package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/threadkeeper/internal/metrics"
	"github.com/kingrea/threadkeeper/internal/obligation"
	"github.com/kingrea/threadkeeper/internal/scheduler"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	idStyle    = lipgloss.NewStyle().Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func printSelection(w io.Writer, s *scheduler.Scheduler, sel scheduler.Selection, asJSON bool) error {
	if asJSON {
		return writeJSON(w, sel)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Selected %d obligation(s) at chapter %d", len(sel.Scores), s.Context().CurrentChapter)))
	for i, score := range sel.Scores {
		content := ""
		if o, ok := s.GetObligation(score.ObligationID); ok {
			content = o.Content
		}
		fmt.Fprintf(w, "%d. %s  %.3f  %s\n", i+1, idStyle.Render(score.ObligationID), score.TotalScore, content)
		fmt.Fprintf(w, "   %s\n", noteStyle.Render(fmt.Sprintf(
			"urgency %.2f · salience %.2f · freshness %.2f · tension %.2f · dependency %.2f · context %.2f",
			score.UrgencyScore, score.SalienceScore, score.FreshnessScore,
			score.TensionBalanceScore, score.DependencyScore, score.ContextRelevanceScore)))
		fmt.Fprintf(w, "   %s\n", noteStyle.Render(score.Justification))
	}
	if len(sel.Skipped) > 0 {
		ids := make([]string, 0, len(sel.Skipped))
		for id := range sel.Skipped {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			reason := sel.Skipped[id]
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("skipped %s: %s (%s)", id, reason.Reason, reason.Detail)))
		}
	}
	return nil
}

func printMetrics(w io.Writer, m metrics.Metrics, asJSON bool) error {
	if asJSON {
		return writeJSON(w, m)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Pool: %d obligation(s)", m.TotalObligations)))
	var tiers []string
	for _, u := range obligation.Urgencies {
		tiers = append(tiers, fmt.Sprintf("%s %d", u, m.ByUrgency[u]))
	}
	fmt.Fprintf(w, "urgency:  %s\n", strings.Join(tiers, ", "))
	var categories []string
	for _, c := range obligation.Categories {
		if n := m.ByCategory[c]; n > 0 {
			categories = append(categories, fmt.Sprintf("%s %d", c, n))
		}
	}
	if len(categories) > 0 {
		fmt.Fprintf(w, "category: %s\n", strings.Join(categories, ", "))
	}
	fmt.Fprintf(w, "average injections %.2f, average fulfillment %.2f\n", m.AverageInjectionCount, m.AverageFulfillment)
	fmt.Fprintf(w, "tension negative %.0f%%, neutral %.0f%%, positive %.0f%%\n",
		m.TensionDistribution.Negative*100, m.TensionDistribution.Neutral*100, m.TensionDistribution.Positive*100)
	fmt.Fprintf(w, "longest dependency chain %d\n", m.DependencyChainLengthMax)
	if m.StaleCount > 0 || m.OverusedCount > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d stale, %d overused", m.StaleCount, m.OverusedCount)))
	}
	return nil
}

func printObligations(w io.Writer, label string, items []obligation.Obligation, chapter uint32, asJSON bool) error {
	if asJSON {
		if items == nil {
			items = []obligation.Obligation{}
		}
		return writeJSON(w, items)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %d obligation(s)", label, len(items))))
	for _, o := range items {
		fmt.Fprintf(w, "%s  [%s/%s]  %s\n", idStyle.Render(o.ID), o.Urgency, o.Category, o.Content)
		fmt.Fprintf(w, "   %s\n", noteStyle.Render(fmt.Sprintf("introduced chapter %d (%d ago) · injected %d time(s)",
			o.ChapterIntroduced, o.ChaptersSinceIntroduced(chapter), o.InjectionCount)))
	}
	return nil
}
