// Package cli wires the command tree. Every command resolves its
// configuration the same way: config file, then environment, then flags,
// with flags winning.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sonarlens/internal/config"
	"sonarlens/internal/logging"
	"sonarlens/internal/sonar"
)

var (
	flagConfig  string
	flagHost    string
	flagToken   string
	flagProject string
	flagBranch  string
	flagJSON    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sonarlens",
	Short: "Query a SonarQube-style code-quality server from the terminal",
	Long: `sonarlens talks to a code-quality server's REST API and renders
project metrics, quality gates, issues, hotspots and related data as
text, JSON, or an interactive issue browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file")
	pf.StringVar(&flagHost, "host", "", "server base URL")
	pf.StringVar(&flagToken, "token", "", "authentication token")
	pf.StringVar(&flagProject, "project", "", "project key")
	pf.StringVar(&flagBranch, "branch", "", "branch name")
	pf.BoolVar(&flagJSON, "json", false, "print raw JSON instead of text")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree; any error is fatal for the process.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// resolved layers file, env and flag configuration.
func resolved() config.Config {
	file, env := config.Load(flagConfig)
	return config.Resolve(file, env, config.Config{
		Host:    flagHost,
		Token:   flagToken,
		Project: flagProject,
		Branch:  flagBranch,
	})
}

// newClient validates the resolved configuration and builds the API
// client. Missing token or project is fatal before any call goes out.
func newClient() (*sonar.Client, config.Config, error) {
	cfg := resolved()
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	log := logging.ForCLI(flagVerbose)
	return sonar.New(cfg.Host, cfg.Token, log), cfg, nil
}
