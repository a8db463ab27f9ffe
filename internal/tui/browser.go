// Package tui is the interactive issue browser: a list pane, a detail
// pane and a code pane over a live server connection. All session state
// lives on the Model and is mutated only inside Update, which is the
// single serialized event path bubbletea guarantees.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"sonarlens/internal/format"
	"sonarlens/internal/snippet"
	"sonarlens/internal/sonar"
)

type appState int

const (
	stateBrowse appState = iota
	stateBranchPicker
)

const helpText = "↑/↓ navigate   Enter view   r refresh   b branch   pgup/pgdn scroll code   ? help   q quit"

// API is the slice of the server client the browser consumes.
type API interface {
	SearchIssues(ctx context.Context, q sonar.IssueQuery) (*sonar.IssueSearchResult, error)
	Branches(ctx context.Context, project string) ([]sonar.Branch, error)
	snippet.Source
}

// messages

type snippetMsg struct {
	seq  int
	idx  int
	snip *snippet.Snippet
}

type branchesMsg struct {
	branches []sonar.Branch
	err      error
}

type branchIssuesMsg struct {
	branch string
	issues []sonar.Issue
	err    error
}

// list item

type issueItem struct {
	issue sonar.Issue
}

func (i issueItem) FilterValue() string { return i.issue.DisplayMessage() }

// issueDelegate renders each issue as a single truncated row.
type issueDelegate struct{}

func (d issueDelegate) Height() int                             { return 1 }
func (d issueDelegate) Spacing() int                            { return 0 }
func (d issueDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d issueDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(issueItem)
	if !ok {
		return
	}
	row := format.IssueRow(it.issue, m.Width()-2)
	if index == m.Index() {
		fmt.Fprint(w, selectedRowStyle.Render("▸ "+row))
		return
	}
	fmt.Fprint(w, "  "+row)
}

// Model is the browser's complete session state.
type Model struct {
	api     API
	project string
	branch  string
	log     zerolog.Logger

	issues []sonar.Issue
	list   list.Model

	// seq increases on every snippet-fetch initiation; a completion is
	// applied only while its tag still matches. There is no transport
	// cancellation, stale results are simply dropped.
	seq         int
	snip        *snippet.Snippet
	snipLoading bool
	codeView    viewport.Model

	state         appState
	branches      []sonar.Branch
	branchIdx     int
	branchLoading bool
	pickerStatus  string
	reloading     bool
	status        string
	width, height int
}

// New builds the browser model over an already-fetched issue list. The
// issues command refuses to start a session on an empty list, but the
// model also tolerates going empty after a branch switch.
func New(api API, project, branch string, issues []sonar.Issue, log zerolog.Logger) Model {
	l := list.New(nil, issueDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	// Quit is handled here, not by the list widget.
	l.DisableQuitKeybindings()
	// Navigation clamps at both ends, no wrap-around.
	l.InfiniteScrolling = false

	m := Model{
		api:      api,
		project:  project,
		branch:   branch,
		log:      log.With().Str("component", "tui").Logger(),
		issues:   issues,
		list:     l,
		codeView: viewport.New(0, 0),
		status:   helpText,
	}
	m.setIssues(issues)
	if len(issues) > 0 {
		// The first fetch is issued from Init, which runs on a copy of
		// the model; its sequence tag has to be decided here so the
		// completion matches.
		m.seq = 1
		m.snipLoading = true
	}
	return m
}

func (m *Model) setIssues(issues []sonar.Issue) {
	m.issues = issues
	items := make([]list.Item, len(issues))
	for i, is := range issues {
		items[i] = issueItem{issue: is}
	}
	m.list.SetItems(items)
	m.list.Select(0)
}

// commands

// snippetCmd builds the async fetch for one issue, tagged with seq.
func (m Model) snippetCmd(seq, idx int) tea.Cmd {
	issue := m.issues[idx]
	resolver := snippet.New(m.api, m.branch, m.log)
	return func() tea.Msg {
		snip := resolver.Resolve(context.Background(), issue, snippet.DefaultContext)
		return snippetMsg{seq: seq, idx: idx, snip: snip}
	}
}

// fetchSnippetCmd bumps the sequence and dispatches a snippet fetch for
// idx, flipping the code pane into its loading state.
func (m *Model) fetchSnippetCmd(idx int) tea.Cmd {
	m.seq++
	m.snipLoading = true
	return m.snippetCmd(m.seq, idx)
}

func (m *Model) fetchBranchesCmd() tea.Cmd {
	api, project := m.api, m.project
	return func() tea.Msg {
		branches, err := api.Branches(context.Background(), project)
		return branchesMsg{branches: branches, err: err}
	}
}

func (m *Model) fetchBranchIssuesCmd(branch string) tea.Cmd {
	api, project := m.api, m.project
	return func() tea.Msg {
		res, err := api.SearchIssues(context.Background(), sonar.IssueQuery{Project: project, Branch: branch})
		if err != nil {
			return branchIssuesMsg{branch: branch, err: err}
		}
		return branchIssuesMsg{branch: branch, issues: res.Issues}
	}
}

// tea.Model

func (m Model) Init() tea.Cmd {
	if len(m.issues) == 0 {
		return nil
	}
	return m.snippetCmd(m.seq, 0)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		lw, lh := m.listDimensions()
		m.list.SetSize(lw, lh)
		cw, ch := m.codeDimensions()
		m.codeView.Width = cw
		m.codeView.Height = ch
		m.refreshCodeView()
		return m, nil

	case snippetMsg:
		// Stale-result suppression: a user can navigate faster than
		// fetches complete, and an old completion must never overwrite
		// the pane for the issue selected later.
		if msg.seq != m.seq {
			m.log.Debug().Int("seq", msg.seq).Int("latest", m.seq).Int("idx", msg.idx).Msg("dropping stale snippet")
			return m, nil
		}
		m.snipLoading = false
		m.snip = msg.snip
		m.refreshCodeView()
		return m, nil

	case branchesMsg:
		m.branchLoading = false
		if msg.err != nil {
			m.state = stateBrowse
			m.status = "branch list unavailable: " + msg.err.Error()
			return m, nil
		}
		if len(msg.branches) == 0 {
			m.state = stateBrowse
			m.status = "server reported no branches"
			return m, nil
		}
		m.branches = msg.branches
		m.branchIdx = 0
		return m, nil

	case branchIssuesMsg:
		m.reloading = false
		m.state = stateBrowse
		if msg.err != nil {
			// Keep the current issue list untouched on failure.
			m.status = "could not load issues for " + msg.branch + ": " + msg.err.Error()
			return m, nil
		}
		m.branch = msg.branch
		m.setIssues(msg.issues)
		m.snip = nil
		m.status = fmt.Sprintf("branch %s: %d issues", msg.branch, len(msg.issues))
		if len(msg.issues) == 0 {
			m.snipLoading = false
			m.refreshCodeView()
			return m, nil
		}
		return m, m.fetchSnippetCmd(0)
	}

	if m.state == stateBranchPicker {
		return m.updateBranchPicker(msg)
	}
	return m.updateBrowse(msg)
}

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "enter":
		// Explicit view always refetches, even for the same index. This
		// is the forced-refresh path for a row whose pane went stale.
		if len(m.issues) == 0 {
			return m, nil
		}
		return m, m.fetchSnippetCmd(m.list.Index())

	case "r":
		if len(m.issues) == 0 {
			return m, nil
		}
		m.status = "refreshing snippet"
		return m, m.fetchSnippetCmd(m.list.Index())

	case "b":
		m.state = stateBranchPicker
		m.branches = nil
		m.branchLoading = true
		m.pickerStatus = ""
		return m, m.fetchBranchesCmd()

	case "?":
		m.status = helpText
		return m, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.codeView, cmd = m.codeView.Update(msg)
		return m, cmd
	}

	before := m.list.Index()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	after := m.list.Index()
	if after != before && len(m.issues) > 0 {
		// Plain re-selection of the same index does not refetch; only a
		// real move does.
		return m, tea.Batch(cmd, m.fetchSnippetCmd(after))
	}
	return m, cmd
}

func (m Model) updateBranchPicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		m.state = stateBrowse
		return m, nil
	case "up", "k":
		if m.branchIdx > 0 {
			m.branchIdx--
		}
		return m, nil
	case "down", "j":
		if m.branchIdx < len(m.branches)-1 {
			m.branchIdx++
		}
		return m, nil
	case "enter":
		if m.branchLoading || m.reloading || len(m.branches) == 0 {
			return m, nil
		}
		chosen := m.branches[m.branchIdx].Name
		m.reloading = true
		m.pickerStatus = "loading issues for " + chosen
		return m, m.fetchBranchIssuesCmd(chosen)
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) selectedIssue() *sonar.Issue {
	if len(m.issues) == 0 {
		return nil
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.issues) {
		return nil
	}
	return &m.issues[idx]
}
