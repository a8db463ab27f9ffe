package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sonarlens/internal/format"
	"sonarlens/internal/logging"
	"sonarlens/internal/sonar"
	"sonarlens/internal/tui"
)

var (
	issuesFlagInteractive bool
	issuesFlagSeverities  []string
	issuesFlagTypes       []string
	issuesFlagStatuses    []string
	issuesFlagPage        int
	issuesFlagPageSize    int
)

const listWidth = 100

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List project issues",
	Long: `List project issues, optionally filtered by severity, type and
status. With --interactive, opens a split-pane browser that shows source
context for the selected issue and supports live branch switching.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}

		q := sonar.IssueQuery{
			Project:    cfg.Project,
			Branch:     cfg.Branch,
			Severities: issuesFlagSeverities,
			Types:      issuesFlagTypes,
			Statuses:   issuesFlagStatuses,
			Page:       issuesFlagPage,
			PageSize:   issuesFlagPageSize,
		}
		res, err := client.SearchIssues(cmd.Context(), q)
		if err != nil {
			return err
		}

		if issuesFlagInteractive {
			if len(res.Issues) == 0 {
				fmt.Println("No issues found.")
				return nil
			}
			log, closer := logging.ForTUI(flagVerbose)
			if closer != nil {
				defer closer.Close()
			}
			return tui.Run(client, cfg.Project, cfg.Branch, res.Issues, log)
		}

		if flagJSON {
			out, err := format.JSON(res)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.IssueList(res, listWidth))
		return nil
	},
}

var issuesSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show issue counts by severity, type and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		facets, err := client.IssueFacets(cmd.Context(), cfg.Project, []string{"severities", "types", "statuses"})
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(facets)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.FacetSummary(facets))
		return nil
	},
}

var issueCmd = &cobra.Command{
	Use:   "issue <key>",
	Short: "Show a single issue by key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		issue, err := client.Issue(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(issue)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.IssueDetail(*issue, cfg.Branch, listWidth))
		return nil
	},
}

func init() {
	f := issuesCmd.Flags()
	f.BoolVarP(&issuesFlagInteractive, "interactive", "i", false, "open the interactive issue browser")
	f.StringSliceVar(&issuesFlagSeverities, "severities", nil, "filter by severities (e.g. BLOCKER,CRITICAL)")
	f.StringSliceVar(&issuesFlagTypes, "types", nil, "filter by types (e.g. BUG,CODE_SMELL)")
	f.StringSliceVar(&issuesFlagStatuses, "statuses", nil, "filter by statuses (e.g. OPEN,CONFIRMED)")
	f.IntVar(&issuesFlagPage, "page", 0, "page number")
	f.IntVar(&issuesFlagPageSize, "page-size", 100, "page size (max 500)")

	issuesCmd.AddCommand(issuesSummaryCmd)
	rootCmd.AddCommand(issuesCmd, issueCmd)
}
