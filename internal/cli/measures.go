package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sonarlens/internal/format"
)

// defaultMetrics is the overview set fetched when --metrics is not given.
var defaultMetrics = []string{
	"bugs", "vulnerabilities", "code_smells", "security_hotspots",
	"coverage", "duplicated_lines_density", "ncloc",
}

var (
	measuresFlagMetrics []string
	historyFlagMetrics  []string
	historyFlagFrom     string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the project quality gate and key metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		gate, err := client.QualityGate(cmd.Context(), cfg.Project)
		if err != nil {
			return err
		}
		measures, err := client.Measures(cmd.Context(), cfg.Project, defaultMetrics)
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(map[string]any{"qualityGate": gate, "measures": measures})
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.GateText(gate))
		fmt.Println()
		fmt.Print(format.MeasuresText(measures))
		return nil
	},
}

var measuresCmd = &cobra.Command{
	Use:   "measures",
	Short: "Show current metric values for the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		metrics := measuresFlagMetrics
		if len(metrics) == 0 {
			metrics = defaultMetrics
		}
		res, err := client.Measures(cmd.Context(), cfg.Project, metrics)
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
		fmt.Print(format.MeasuresText(res))
		return nil
	},
}

var measuresHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show metric time series for the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		metrics := historyFlagMetrics
		if len(metrics) == 0 {
			metrics = []string{"coverage", "code_smells"}
		}
		res, err := client.MeasuresHistory(cmd.Context(), cfg.Project, metrics, historyFlagFrom)
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
		fmt.Print(format.HistoryText(res))
		return nil
	},
}

var qualityGateCmd = &cobra.Command{
	Use:   "quality-gate",
	Short: "Show the project quality gate verdict",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		gate, err := client.QualityGate(cmd.Context(), cfg.Project)
		if err != nil {
			return err
		}
		if flagJSON {
			out, err := format.JSON(gate)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(format.GateText(gate))
		return nil
	},
}

func init() {
	measuresCmd.Flags().StringSliceVar(&measuresFlagMetrics, "metrics", nil, "metric keys to fetch")
	measuresHistoryCmd.Flags().StringSliceVar(&historyFlagMetrics, "metrics", nil, "metric keys to fetch")
	measuresHistoryCmd.Flags().StringVar(&historyFlagFrom, "from", "", "series lower bound (ISO date)")

	measuresCmd.AddCommand(measuresHistoryCmd)
	rootCmd.AddCommand(metricsCmd, measuresCmd, qualityGateCmd)
}
