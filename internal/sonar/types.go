package sonar

// Severity is the server's issue severity scale. The server may grow new
// values, so unknown strings render as-is rather than failing.
type Severity string

const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// Known reports whether s is one of the documented severities.
func (s Severity) Known() bool {
	switch s {
	case SeverityBlocker, SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo:
		return true
	}
	return false
}

func (s Severity) String() string { return string(s) }

// IssueType classifies an issue.
type IssueType string

const (
	TypeBug             IssueType = "BUG"
	TypeVulnerability   IssueType = "VULNERABILITY"
	TypeCodeSmell       IssueType = "CODE_SMELL"
	TypeSecurityHotspot IssueType = "SECURITY_HOTSPOT"
)

func (t IssueType) Known() bool {
	switch t {
	case TypeBug, TypeVulnerability, TypeCodeSmell, TypeSecurityHotspot:
		return true
	}
	return false
}

func (t IssueType) String() string { return string(t) }

// IssueStatus is the issue workflow state.
type IssueStatus string

const (
	StatusOpen      IssueStatus = "OPEN"
	StatusConfirmed IssueStatus = "CONFIRMED"
	StatusReopened  IssueStatus = "REOPENED"
	StatusResolved  IssueStatus = "RESOLVED"
	StatusClosed    IssueStatus = "CLOSED"
)

func (s IssueStatus) String() string { return string(s) }

// TextRange is a server-reported line span, 1-based, inclusive.
type TextRange struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// FlowLocation is one step of a multi-step issue explanation.
type FlowLocation struct {
	Component string     `json:"component"`
	Message   string     `json:"msg"`
	TextRange *TextRange `json:"textRange"`
}

// Flow is an ordered sequence of secondary locations.
type Flow struct {
	Locations []FlowLocation `json:"locations"`
}

// Issue is a single code-quality finding. Instances are immutable once
// decoded; a branch switch replaces the whole working set rather than
// merging into it.
type Issue struct {
	Key       string      `json:"key"`
	Rule      string      `json:"rule"`
	Severity  Severity    `json:"severity"`
	Type      IssueType   `json:"type"`
	Status    IssueStatus `json:"status"`
	Message   string      `json:"message"`
	Component string      `json:"component"`
	Project   string      `json:"project"`
	Line      int         `json:"line"`
	TextRange *TextRange  `json:"textRange"`
	Flows     []Flow      `json:"flows"`
}

// DisplayMessage returns the issue message, or a placeholder when the
// server omitted it.
func (i Issue) DisplayMessage() string {
	if i.Message == "" {
		return "(no message)"
	}
	return i.Message
}

// FilePath strips the "project:" qualifier from the component key.
func (i Issue) FilePath() string {
	for j := 0; j < len(i.Component); j++ {
		if i.Component[j] == ':' {
			return i.Component[j+1:]
		}
	}
	return i.Component
}

// FocusLine returns the 1-based line this issue points at: Line when set,
// else the range start, else 0 (meaning "whole file").
func (i Issue) FocusLine() int {
	if i.Line > 0 {
		return i.Line
	}
	if i.TextRange != nil && i.TextRange.StartLine > 0 {
		return i.TextRange.StartLine
	}
	return 0
}

// Branch is one entry of project_branches/list.
type Branch struct {
	Name   string `json:"name"`
	IsMain bool   `json:"isMain"`
	Type   string `json:"type"`
}

// MainBranch picks the branch to treat as main for display: the first
// isMain entry, else the first entry (server data may expose no main).
func MainBranch(branches []Branch) Branch {
	for _, b := range branches {
		if b.IsMain {
			return b
		}
	}
	if len(branches) > 0 {
		return branches[0]
	}
	return Branch{}
}

// Facet is a server-computed count breakdown for one property.
type Facet struct {
	Property string       `json:"property"`
	Values   []FacetValue `json:"values"`
}

type FacetValue struct {
	Val   string `json:"val"`
	Count int    `json:"count"`
}

// Paging mirrors the server's paging envelope.
type Paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

// IssueSearchResult is the decoded issues/search payload.
type IssueSearchResult struct {
	Paging Paging  `json:"paging"`
	Issues []Issue `json:"issues"`
	Facets []Facet `json:"facets"`
}

// Measure is one metric value for a component.
type Measure struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

// ComponentMeasures is the decoded measures/component payload.
type ComponentMeasures struct {
	Component struct {
		Key      string    `json:"key"`
		Name     string    `json:"name"`
		Measures []Measure `json:"measures"`
	} `json:"component"`
}

// HistoryValue is one point of a metric time series.
type HistoryValue struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// MeasureHistory is the series for one metric.
type MeasureHistory struct {
	Metric  string         `json:"metric"`
	History []HistoryValue `json:"history"`
}

// HistoryResult is the decoded measures/search_history payload.
type HistoryResult struct {
	Paging   Paging           `json:"paging"`
	Measures []MeasureHistory `json:"measures"`
}

// GateCondition is one threshold verdict inside a quality gate.
type GateCondition struct {
	Status         string `json:"status"`
	MetricKey      string `json:"metricKey"`
	Comparator     string `json:"comparator"`
	ErrorThreshold string `json:"errorThreshold"`
	ActualValue    string `json:"actualValue"`
}

// QualityGate is the decoded qualitygates/project_status payload.
type QualityGate struct {
	ProjectStatus struct {
		Status     string          `json:"status"`
		Conditions []GateCondition `json:"conditions"`
	} `json:"projectStatus"`
}

// Component is one node of components/tree.
type Component struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Qualifier string `json:"qualifier"`
	Path      string `json:"path"`
}

// ComponentTreeResult is the decoded components/tree payload.
type ComponentTreeResult struct {
	Paging     Paging      `json:"paging"`
	Components []Component `json:"components"`
}

// Hotspot is a security-review candidate, distinct from a standard issue.
type Hotspot struct {
	Key                      string     `json:"key"`
	Component                string     `json:"component"`
	SecurityCategory         string     `json:"securityCategory"`
	VulnerabilityProbability string     `json:"vulnerabilityProbability"`
	Status                   string     `json:"status"`
	Line                     int        `json:"line"`
	Message                  string     `json:"message"`
	TextRange                *TextRange `json:"textRange"`
}

// HotspotSearchResult is the decoded hotspots/search payload.
type HotspotSearchResult struct {
	Paging   Paging    `json:"paging"`
	Hotspots []Hotspot `json:"hotspots"`
}

// Rule describes a single rule from rules/show or rules/search.
type Rule struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Severity Severity  `json:"severity"`
	Type     IssueType `json:"type"`
	Language string    `json:"lang"`
	HTMLDesc string    `json:"htmlDesc"`
}

// RuleSearchResult is the decoded rules/search payload.
type RuleSearchResult struct {
	Total int    `json:"total"`
	Rules []Rule `json:"rules"`
}

// DuplicationBlock locates one copy inside a duplication group.
type DuplicationBlock struct {
	From int    `json:"from"`
	Size int    `json:"size"`
	Ref  string `json:"_ref"`
}

// Duplication is one group of mutually duplicated blocks.
type Duplication struct {
	Blocks []DuplicationBlock `json:"blocks"`
}

// DuplicationsResult is the decoded duplications/show payload.
type DuplicationsResult struct {
	Duplications []Duplication `json:"duplications"`
	Files        map[string]struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"files"`
}

// QualityProfile is one entry of qualityprofiles/search.
type QualityProfile struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Language     string `json:"language"`
	LanguageName string `json:"languageName"`
	IsDefault    bool   `json:"isDefault"`
	ActiveRules  int    `json:"activeRuleCount"`
}

// SourceLine is one record of sources/show, the structured fallback for
// raw file content.
type SourceLine struct {
	Line int    `json:"line"`
	Code string `json:"code"`
}
