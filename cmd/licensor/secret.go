package main

import (
	"fmt"

	"github.com/airosofts/licensor/adapters/auth"
	"github.com/spf13/cobra"
)

var secretCmd = &cobra.Command{
	Use:   "jwt-secret",
	Short: "Generate a random value for auth.jwt_secret",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), auth.GenerateSecret())
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
}
