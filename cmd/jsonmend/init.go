package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/jsonmend/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Long:  "Write the commented default configuration to path, or to\n$XDG_CONFIG_HOME/jsonmend/config.yaml when no path is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := config.DefaultPath()
			if len(args) == 1 {
				target = args[0]
			}

			if err := config.WriteDefault(target, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created config: %s\n", target)
			fmt.Fprintln(cmd.OutOrStdout(), "API keys are read from the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY) or a .env file.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
