package tui

import (
	"context"
	"fmt"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonarlens/internal/snippet"
	"sonarlens/internal/sonar"
)

// fakeAPI scripts the endpoints the browser touches.
type fakeAPI struct {
	issuesByBranch map[string][]sonar.Issue
	issuesErr      error
	branches       []sonar.Branch
	branchesErr    error
	raw            string
	rawErr         error
}

func (f *fakeAPI) SearchIssues(_ context.Context, q sonar.IssueQuery) (*sonar.IssueSearchResult, error) {
	if f.issuesErr != nil {
		return nil, f.issuesErr
	}
	return &sonar.IssueSearchResult{Issues: f.issuesByBranch[q.Branch]}, nil
}

func (f *fakeAPI) Branches(_ context.Context, _ string) ([]sonar.Branch, error) {
	return f.branches, f.branchesErr
}

func (f *fakeAPI) RawSource(_ context.Context, _, _ string) (string, error) {
	return f.raw, f.rawErr
}

func (f *fakeAPI) SourceLines(_ context.Context, _, _ string) ([]sonar.SourceLine, error) {
	return nil, fmt.Errorf("structured endpoint down")
}

func someIssues(n int) []sonar.Issue {
	issues := make([]sonar.Issue, n)
	for i := range issues {
		issues[i] = sonar.Issue{
			Key:       fmt.Sprintf("AX-%d", i),
			Severity:  sonar.SeverityMajor,
			Type:      sonar.TypeBug,
			Message:   fmt.Sprintf("issue %d", i),
			Component: "p:src/a.go",
			Line:      10 + i,
		}
	}
	return issues
}

func newTestModel(t *testing.T, api *fakeAPI, issues []sonar.Issue) Model {
	t.Helper()
	m := New(api, "proj", "", issues, zerolog.Nop())
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return sized.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialSelectionIsZeroAndFetchPending(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(3))
	assert.Equal(t, 0, m.list.Index())
	assert.Equal(t, 1, m.seq)
	assert.True(t, m.snipLoading)
	require.NotNil(t, m.Init())
}

func TestEmptyListIssuesNoFetch(t *testing.T) {
	m := New(&fakeAPI{}, "proj", "", nil, zerolog.Nop())
	assert.Nil(t, m.Init())
	assert.Zero(t, m.seq)
}

func TestNavigationTriggersFetch(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(3))

	next, cmd := m.Update(key("down"))
	m = next.(Model)
	assert.Equal(t, 1, m.list.Index())
	assert.Equal(t, 2, m.seq)
	assert.True(t, m.snipLoading)
	require.NotNil(t, cmd)
}

func TestNavigationClampsAtTop(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(3))

	// Already at index 0: up is a no-op and must not refetch.
	next, _ := m.Update(key("up"))
	m = next.(Model)
	assert.Equal(t, 0, m.list.Index())
	assert.Equal(t, 1, m.seq)
}

func TestConfirmRefetchesSameIndex(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(3))

	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	assert.Equal(t, 0, m.list.Index())
	assert.Equal(t, 2, m.seq)
	require.NotNil(t, cmd)

	next, _ = m.Update(key("enter"))
	m = next.(Model)
	assert.Equal(t, 3, m.seq)
}

func TestRefreshKeyBumpsSequence(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(2))

	next, cmd := m.Update(key("r"))
	m = next.(Model)
	assert.Equal(t, 2, m.seq)
	require.NotNil(t, cmd)
}

func TestStaleSnippetDiscarded(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(3))

	// Navigate twice: seq goes 1 -> 2 -> 3.
	next, _ := m.Update(key("down"))
	m = next.(Model)
	next, _ = m.Update(key("down"))
	m = next.(Model)
	require.Equal(t, 3, m.seq)

	stale := &snippet.Snippet{Content: "stale"}
	next, _ = m.Update(snippetMsg{seq: 2, idx: 1, snip: stale})
	m = next.(Model)
	assert.True(t, m.snipLoading, "stale result must not complete the load")
	assert.Nil(t, m.snip)

	current := &snippet.Snippet{Content: "current"}
	next, _ = m.Update(snippetMsg{seq: 3, idx: 2, snip: current})
	m = next.(Model)
	assert.False(t, m.snipLoading)
	assert.Equal(t, current, m.snip)
}

func TestOutOfOrderResolutionAppliesOnlyLatest(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(2))

	next, _ := m.Update(key("down"))
	m = next.(Model)

	// seq=2 resolves first, then the stale seq=1 arrives late.
	next, _ = m.Update(snippetMsg{seq: 2, idx: 1, snip: &snippet.Snippet{Content: "new"}})
	m = next.(Model)
	next, _ = m.Update(snippetMsg{seq: 1, idx: 0, snip: &snippet.Snippet{Content: "old"}})
	m = next.(Model)

	assert.Equal(t, "new", m.snip.Content)
}

func TestNilSnippetShowsPlaceholder(t *testing.T) {
	m := newTestModel(t, &fakeAPI{rawErr: fmt.Errorf("down")}, someIssues(1))

	next, _ := m.Update(snippetMsg{seq: 1, idx: 0, snip: nil})
	m = next.(Model)
	assert.False(t, m.snipLoading)
	assert.Nil(t, m.snip)
	assert.Contains(t, m.renderCode(), "(no snippet)")
}

func TestCodePaneLoadingNeverBlank(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(1))
	assert.Contains(t, m.renderCode(), "Loading…")
}

func TestBranchPickerOpensAndLists(t *testing.T) {
	api := &fakeAPI{
		raw:      "x",
		branches: []sonar.Branch{{Name: "main", IsMain: true}, {Name: "develop"}},
	}
	m := newTestModel(t, api, someIssues(2))

	next, cmd := m.Update(key("b"))
	m = next.(Model)
	assert.Equal(t, stateBranchPicker, m.state)
	assert.True(t, m.branchLoading)
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.branchLoading)
	require.Len(t, m.branches, 2)
}

func TestBranchPickerErrorKeepsSession(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x", branchesErr: fmt.Errorf("503")}, someIssues(2))

	next, cmd := m.Update(key("b"))
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, stateBrowse, m.state)
	assert.Contains(t, m.status, "branch list unavailable")
	assert.Len(t, m.issues, 2)
}

func TestBranchPickerEmptyListShowsStatus(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(2))

	next, cmd := m.Update(key("b"))
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, stateBrowse, m.state)
	assert.Contains(t, m.status, "no branches")
}

func TestBranchSwitchReplacesIssuesWholesale(t *testing.T) {
	api := &fakeAPI{
		raw:      "x",
		branches: []sonar.Branch{{Name: "main", IsMain: true}, {Name: "develop"}},
		issuesByBranch: map[string][]sonar.Issue{
			"develop": someIssues(5),
		},
	}
	m := newTestModel(t, api, someIssues(2))

	// Move off index 0 so the reset is observable.
	next, _ := m.Update(key("down"))
	m = next.(Model)
	require.Equal(t, 1, m.list.Index())
	seqBefore := m.seq

	next, cmd := m.Update(key("b"))
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)

	// Pick "develop".
	next, _ = m.Update(key("down"))
	m = next.(Model)
	next, cmd = m.Update(key("enter"))
	m = next.(Model)
	require.NotNil(t, cmd)

	next, cmd = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, stateBrowse, m.state)
	assert.Equal(t, "develop", m.branch)
	assert.Len(t, m.issues, 5)
	assert.Equal(t, 0, m.list.Index(), "selection resets to 0 on branch switch")
	assert.Greater(t, m.seq, seqBefore, "branch switch forces a snippet fetch")
	require.NotNil(t, cmd, "snippet fetch dispatched for new selection")
}

func TestBranchSwitchFailureKeepsIssueList(t *testing.T) {
	api := &fakeAPI{
		raw:      "x",
		branches: []sonar.Branch{{Name: "develop"}},
	}
	m := newTestModel(t, api, someIssues(3))

	next, cmd := m.Update(key("b"))
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)

	api.issuesErr = fmt.Errorf("gateway timeout")
	next, cmd = m.Update(key("enter"))
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, stateBrowse, m.state)
	assert.Contains(t, m.status, "could not load issues")
	assert.Len(t, m.issues, 3, "failed switch must not clobber the working set")
	assert.Equal(t, "", m.branch)
}

func TestBranchPickerEscReturns(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x", branches: []sonar.Branch{{Name: "main"}}}, someIssues(1))

	next, cmd := m.Update(key("b"))
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)
	next, _ = m.Update(key("esc"))
	m = next.(Model)
	assert.Equal(t, stateBrowse, m.state)
}

func TestHelpKeyResetsStatus(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(1))
	m.status = "something else"

	next, _ := m.Update(key("?"))
	m = next.(Model)
	assert.Equal(t, helpText, m.status)
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "x"}, someIssues(1))

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSnippetCommandResolvesThroughAPI(t *testing.T) {
	m := newTestModel(t, &fakeAPI{raw: "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\nl11\nl12"}, someIssues(1))

	msg := m.Init()()
	sm, ok := msg.(snippetMsg)
	require.True(t, ok)
	assert.Equal(t, 1, sm.seq)
	require.NotNil(t, sm.snip)
	require.NotNil(t, sm.snip.Window)
	// Issue 0 points at line 10 in a 12-line file.
	assert.Equal(t, 5, sm.snip.Window.Start)
	assert.Equal(t, 12, sm.snip.Window.End)
	assert.Equal(t, 10, sm.snip.Window.Focus)
}

func TestEnsureTermRestores(t *testing.T) {
	t.Setenv("TERM", "")
	restore := ensureTerm()
	assert.Equal(t, fallbackTerm, os.Getenv("TERM"))
	restore()
	v, ok := os.LookupEnv("TERM")
	assert.True(t, ok, "TERM was set (empty) before the shim")
	assert.Equal(t, "", v)
}
