/*
Copyright © 2025 haint
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paperlens",
	Short: "Upload research PDFs and get a cross-paper analysis from an LLM",
	Long: `paperlens runs a small web service that accepts uploaded PDF papers,
summarizes each one chunk by chunk with a hosted LLM, then asks the same
model for a unified analysis across all of them: a common theme, one to
three hypotheses and a proposed experiment per hypothesis. Progress is
streamed back over the HTTP response as it happens.

Use "paperlens serve" to run the server and "paperlens analyze" to submit
files to a running server from the command line.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
