package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sonarlens/internal/format"
)

var (
	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	dimStyle  = lipgloss.NewStyle().Faint(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			PaddingLeft(2).
			PaddingRight(1)

	codeStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, true).
			PaddingLeft(2).
			PaddingRight(1)

	pickerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 3).
			Width(44)
)

func (m Model) listDimensions() (width, height int) {
	return m.width / 3, m.height - 2
}

func (m Model) codeDimensions() (width, height int) {
	lw, _ := m.listDimensions()
	// Border and padding eat into the right column.
	return m.width - lw - 4, m.height/2 - 2
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	right := lipgloss.JoinVertical(lipgloss.Left, m.renderDetail(), m.renderCode())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), right)
	base := lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())

	if m.state == stateBranchPicker {
		return m.renderBranchPickerOver(base)
	}
	return base
}

func (m Model) renderDetail() string {
	lw, _ := m.listDimensions()
	dw := m.width - lw
	dh := m.height - m.height/2 - 2

	style := detailStyle.Width(dw - 1).Height(dh)

	issue := m.selectedIssue()
	if issue == nil {
		return style.Render(dimStyle.Render("No issues on this branch"))
	}
	contentWidth := dw - 1 - 3
	return style.Render(format.IssueDetail(*issue, m.branch, contentWidth))
}

// renderCode shows the snippet pane. It is never blank: before the fetch
// resolves it says so, and a fetch that produced nothing says that too.
func (m Model) renderCode() string {
	cw, ch := m.codeDimensions()
	style := codeStyle.Width(cw + 3).Height(ch)

	switch {
	case len(m.issues) == 0:
		return style.Render("")
	case m.snipLoading:
		return style.Render(dimStyle.Render("Loading…"))
	case m.snip == nil:
		return style.Render(dimStyle.Render("(no snippet)"))
	}
	return style.Render(m.codeView.View())
}

// refreshCodeView rebuilds the viewport content from the current snippet.
func (m *Model) refreshCodeView() {
	if m.snip == nil {
		m.codeView.SetContent("")
		return
	}
	if m.snip.Window == nil {
		// No line to focus on: show the whole file, scrollable.
		m.codeView.SetContent(m.snip.Content)
		m.codeView.GotoTop()
		return
	}
	m.codeView.SetContent(strings.Join(m.snip.Window.Lines, "\n"))
	m.codeView.GotoTop()
}

func (m Model) renderStatus() string {
	sep := dimStyle.Render(strings.Repeat("─", m.width))
	return sep + "\n" + helpStyle.Render(m.status)
}

func (m Model) renderBranchPickerOver(base string) string {
	var b strings.Builder
	b.WriteString(selectedRowStyle.Render("Switch Branch") + "\n\n")

	switch {
	case m.branchLoading:
		b.WriteString(dimStyle.Render("Loading branches…") + "\n")
	case m.reloading:
		b.WriteString(warnStyle.Render(m.pickerStatus) + "\n")
	case len(m.branches) == 0:
		b.WriteString(errStyle.Render("no branches available") + "\n")
	default:
		for i, br := range m.branches {
			cursor := "  "
			if i == m.branchIdx {
				cursor = "▸ "
			}
			name := br.Name
			if br.IsMain {
				name += dimStyle.Render(" (main)")
			}
			if br.Name == m.branch {
				name += dimStyle.Render(" *")
			}
			fmt.Fprintf(&b, "%s%s\n", cursor, name)
		}
	}

	b.WriteString("\n" + dimStyle.Render("Enter switch · Esc cancel"))
	modal := pickerStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("0")),
	)
}
