package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sonarlens/internal/format"
)

var (
	rulesFlagQuery     string
	rulesFlagLanguage  string
	treeFlagQualifiers []string
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "List security hotspots for the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		res, err := client.Hotspots(cmd.Context(), cfg.Project)
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(res)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.HotspotsText(res))
		return nil
	},
}

var hotspotCmd = &cobra.Command{
	Use:   "hotspot <key>",
	Short: "Show a single security hotspot by key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		h, err := client.Hotspot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(h)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Printf("%s [%s/%s] %s\n", h.Key, h.SecurityCategory, h.VulnerabilityProbability, h.Status)
		fmt.Printf("%s:%d\n%s\n", h.Component, h.Line, h.Message)
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Search rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		res, err := client.SearchRules(cmd.Context(), rulesFlagQuery, rulesFlagLanguage, 0, 50)
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(res)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.RulesText(res))
		return nil
	},
}

var ruleCmd = &cobra.Command{
	Use:   "rule <key>",
	Short: "Show a single rule by key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		r, err := client.Rule(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(r)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Printf("%s [%s/%s] %s (%s)\n", r.Key, r.Severity, r.Type, r.Name, r.Language)
		if r.HTMLDesc != "" {
			fmt.Println()
			fmt.Println(r.HTMLDesc)
		}
		return nil
	},
}

var componentTreeCmd = &cobra.Command{
	Use:   "component-tree",
	Short: "List components below the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		res, err := client.ComponentTree(cmd.Context(), cfg.Project, treeFlagQualifiers, 0, 100)
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(res)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.TreeText(res))
		return nil
	},
}

var duplicationsCmd = &cobra.Command{
	Use:   "duplications <fileKey>",
	Short: "Show duplication blocks for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		res, err := client.Duplications(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(res)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.DuplicationsText(res))
		return nil
	},
}

var qualityProfilesCmd = &cobra.Command{
	Use:   "quality-profiles",
	Short: "List quality profiles attached to the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		profiles, err := client.QualityProfiles(cmd.Context(), cfg.Project)
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(profiles)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.ProfilesText(profiles))
		return nil
	},
}

func init() {
	rulesCmd.Flags().StringVarP(&rulesFlagQuery, "query", "q", "", "free-text rule query")
	rulesCmd.Flags().StringVar(&rulesFlagLanguage, "language", "", "filter by language key")
	componentTreeCmd.Flags().StringSliceVar(&treeFlagQualifiers, "qualifiers", nil, "filter by qualifiers (e.g. FIL,DIR)")

	rootCmd.AddCommand(hotspotsCmd, hotspotCmd, rulesCmd, ruleCmd, componentTreeCmd, duplicationsCmd, qualityProfilesCmd)
}
