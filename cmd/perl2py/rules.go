package main

import (
	"github.com/spf13/cobra"

	"perl2py/internal/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rule table as TOML",
	Long:  `Print the built-in rules merged with the active configuration, in a form that can be saved as perl2py.toml and edited`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadRules(cmd)
		if err != nil {
			return err
		}
		return config.Encode(cmd.OutOrStdout(), config.FromTable(table))
	},
}
