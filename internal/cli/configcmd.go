package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sonarlens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the persisted configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a value into the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Set(config.Path(flagConfig), args[0], args[1])
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one resolved configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// get goes through the redacted view so a token never leaks
		// into scripts or terminal scrollback.
		val, ok := resolved().Redacted().Get(args[0])
		if !ok {
			return fmt.Errorf("unknown config key %q (known: host, token, project, branch)", args[0])
		}
		fmt.Println(val)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolved()
		if flagJSON {
			out, err := cfg.JSON()
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		r := cfg.Redacted()
		fmt.Printf("host:    %s\n", r.Host)
		fmt.Printf("token:   %s\n", r.Token)
		fmt.Printf("project: %s\n", r.Project)
		fmt.Printf("branch:  %s\n", r.Branch)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.Path(flagConfig))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd, configGetCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
