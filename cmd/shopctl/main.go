// Command shopctl drives the storefront backend from a terminal using the same
// credential store, gateway and route guard as the console.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:           "shopctl",
		Short:         "Storefront command-line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			c.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.apiURL, "api-url", "", "Backend API base URL (overrides STOREFRONT_API_BASE_URL)")
	flags.StringVar(&c.store, "store", "", "Credential store driver: file, memory or postgres")
	flags.StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newLoginCmd(c),
		newRegisterCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newStatusCmd(c),
		newOpenCmd(c),
		newCartCmd(c),
		newProductsCmd(c),
		newReviewsCmd(c),
		newOrdersCmd(c),
		newReportCmd(c),
	)
	return cmd
}
