// Package cmd implements the CLI commands for mailscrub using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailscrub",
	Short: "mailscrub — clean Mailchimp HTML email exports",
	Long: `mailscrub removes editor scaffolding from Mailchimp HTML exports: data
attributes, editor classes and ids, unused CSS, Google Fonts links and nested
wrapper tables. It adds Outlook wrappers and pads the preheader.

Usage:
  mailscrub clean <input>... [flags]
  mailscrub send <input> --to <address> [flags]`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
