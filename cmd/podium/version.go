package main

import (
	"fmt"
	"strings"

	"github.com/orchestra-dev/podium"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of podium",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("podium version %s\n", strings.TrimSpace(podium.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
