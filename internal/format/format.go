// Package format renders fetched server data as plain text or JSON for
// the one-shot commands, and builds the row/detail strings the
// interactive browser places into its panes. Everything here is a pure
// function of its inputs.
package format

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"sonarlens/internal/sonar"
)

// JSON renders any value as two-space-indented JSON.
func JSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Truncate shortens s to maxWidth display cells, appending an ellipsis
// when something was cut. Uses go-runewidth so wide characters count
// properly.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// severityTag is the fixed-width bracketed severity shown at row start.
func severityTag(s sonar.Severity) string {
	return fmt.Sprintf("[%s]", s)
}

// IssueRow renders one issue-list line: severity tag, padded type label,
// truncated message.
func IssueRow(i sonar.Issue, width int) string {
	head := fmt.Sprintf("%s %13s  ", severityTag(i.Severity), i.Type)
	rest := width - runewidth.StringWidth(head)
	return head + Truncate(i.DisplayMessage(), rest)
}

// IssueDetail renders the fixed-order detail block for one issue.
func IssueDetail(i sonar.Issue, branch string, width int) string {
	var b strings.Builder

	status := string(i.Status)
	if status == "" {
		status = "-"
	}
	br := branch
	if br == "" {
		br = "main"
	}
	fmt.Fprintf(&b, "%s %s  status:%s  branch:%s  key:%s\n", severityTag(i.Severity), i.Type, status, br, i.Key)

	if i.Line > 0 {
		fmt.Fprintf(&b, "%s:%d\n", i.FilePath(), i.Line)
	} else {
		fmt.Fprintf(&b, "%s\n", i.FilePath())
	}
	if tr := i.TextRange; tr != nil {
		fmt.Fprintf(&b, "lines %d-%d\n", tr.StartLine, tr.EndLine)
	}

	if trace := flowTrace(i); trace != "" {
		b.WriteString(trace)
	}

	b.WriteString("\n")
	if width > 0 {
		b.WriteString(wordwrap.String(i.DisplayMessage(), width))
	} else {
		b.WriteString(i.DisplayMessage())
	}
	b.WriteString("\n")
	return b.String()
}

// flowTrace renders the numbered secondary-location steps, if any.
func flowTrace(i sonar.Issue) string {
	var b strings.Builder
	step := 0
	for _, f := range i.Flows {
		for _, loc := range f.Locations {
			step++
			line := "-"
			if loc.TextRange != nil {
				line = fmt.Sprintf("%d", loc.TextRange.StartLine)
			}
			path := loc.Component
			if idx := strings.IndexByte(path, ':'); idx >= 0 {
				path = path[idx+1:]
			}
			fmt.Fprintf(&b, "  %d. %s (%s:%s)\n", step, loc.Message, path, line)
		}
	}
	if step == 0 {
		return ""
	}
	return "flow:\n" + b.String()
}

// IssueList renders the plain-text issue listing for the non-interactive
// issues command.
func IssueList(res *sonar.IssueSearchResult, width int) string {
	if len(res.Issues) == 0 {
		return "No issues found.\n"
	}
	var b strings.Builder
	for _, i := range res.Issues {
		b.WriteString(IssueRow(i, width))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%d of %d issues (page %d)\n", len(res.Issues), res.Paging.Total, res.Paging.PageIndex)
	return b.String()
}

// FacetSummary renders issues:summary counts.
func FacetSummary(facets []sonar.Facet) string {
	if len(facets) == 0 {
		return "No facet data.\n"
	}
	var b strings.Builder
	for _, f := range facets {
		fmt.Fprintf(&b, "%s:\n", f.Property)
		for _, v := range f.Values {
			fmt.Fprintf(&b, "  %-20s %d\n", v.Val, v.Count)
		}
	}
	return b.String()
}

// GateText renders the quality-gate verdict and its conditions.
func GateText(g *sonar.QualityGate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quality gate: %s\n", g.ProjectStatus.Status)
	for _, c := range g.ProjectStatus.Conditions {
		fmt.Fprintf(&b, "  %-6s %-35s actual %s (threshold %s %s)\n",
			c.Status, c.MetricKey, c.ActualValue, c.Comparator, c.ErrorThreshold)
	}
	return b.String()
}

// MeasuresText renders current metric values.
func MeasuresText(m *sonar.ComponentMeasures) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.Component.Key)
	for _, measure := range m.Component.Measures {
		fmt.Fprintf(&b, "  %-30s %s\n", measure.Metric, measure.Value)
	}
	return b.String()
}

// HistoryText renders metric time series.
func HistoryText(h *sonar.HistoryResult) string {
	var b strings.Builder
	for _, m := range h.Measures {
		fmt.Fprintf(&b, "%s:\n", m.Metric)
		for _, p := range m.History {
			fmt.Fprintf(&b, "  %s  %s\n", p.Date, p.Value)
		}
	}
	return b.String()
}

// TreeText renders a component subtree page.
func TreeText(t *sonar.ComponentTreeResult) string {
	var b strings.Builder
	for _, c := range t.Components {
		path := c.Path
		if path == "" {
			path = c.Name
		}
		fmt.Fprintf(&b, "  %-4s %s\n", c.Qualifier, path)
	}
	fmt.Fprintf(&b, "\n%d of %d components\n", len(t.Components), t.Paging.Total)
	return b.String()
}

// DuplicationsText renders duplication groups for a file.
func DuplicationsText(d *sonar.DuplicationsResult) string {
	if len(d.Duplications) == 0 {
		return "No duplications.\n"
	}
	var b strings.Builder
	for n, dup := range d.Duplications {
		fmt.Fprintf(&b, "group %d:\n", n+1)
		for _, blk := range dup.Blocks {
			name := blk.Ref
			if f, ok := d.Files[blk.Ref]; ok {
				name = f.Name
			}
			fmt.Fprintf(&b, "  %s lines %d-%d\n", name, blk.From, blk.From+blk.Size-1)
		}
	}
	return b.String()
}

// ProfilesText renders the quality profiles attached to a project.
func ProfilesText(profiles []sonar.QualityProfile) string {
	if len(profiles) == 0 {
		return "No quality profiles.\n"
	}
	var b strings.Builder
	for _, p := range profiles {
		def := ""
		if p.IsDefault {
			def = " (default)"
		}
		fmt.Fprintf(&b, "  %-20s %-12s %d rules%s\n", p.Name, p.LanguageName, p.ActiveRules, def)
	}
	return b.String()
}

// RulesText renders a rules/search page.
func RulesText(r *sonar.RuleSearchResult) string {
	var b strings.Builder
	for _, rule := range r.Rules {
		fmt.Fprintf(&b, "  %-25s [%s/%s] %s\n", rule.Key, rule.Severity, rule.Type, rule.Name)
	}
	fmt.Fprintf(&b, "\n%d of %d rules\n", len(r.Rules), r.Total)
	return b.String()
}

// HotspotsText renders a hotspots/search page.
func HotspotsText(h *sonar.HotspotSearchResult) string {
	if len(h.Hotspots) == 0 {
		return "No hotspots found.\n"
	}
	var b strings.Builder
	for _, hs := range h.Hotspots {
		fmt.Fprintf(&b, "  %-10s %-8s %s:%d %s\n",
			hs.VulnerabilityProbability, hs.Status, hs.Component, hs.Line, hs.Message)
	}
	fmt.Fprintf(&b, "\n%d of %d hotspots\n", len(h.Hotspots), h.Paging.Total)
	return b.String()
}
