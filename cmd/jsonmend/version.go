package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var versionColor = color.New(color.FgGreen, color.Bold)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jsonmend %s\n", versionColor.Sprint(version))
			if gitCommit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", gitCommit)
			}
		},
	}
}
