package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magenta-aps/raclients"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of raload",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("raload version %s\n", strings.TrimSpace(raclients.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
