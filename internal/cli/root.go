package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formab",
	Short: "A/B testing for lead-capture form fields",
	Long: `formab assigns website sessions to weighted variants of a form field,
records how visitors interact with each variant, and reports whether a
treatment converts significantly better than its control.

Configuration is read from FORMAB_* environment variables.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(testCmd)
}
