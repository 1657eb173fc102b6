package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"birfacts/internal/version"
)

const versionTagline = "turns typed CFGs into borrow facts"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show birfacts build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := strings.TrimSpace(version.Version)
		if v == "" {
			v = "dev"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "birfacts %s — %s\n", v, versionTagline)
		return nil
	},
}
