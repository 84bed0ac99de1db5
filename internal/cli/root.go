// Package cli implements shipquote, an offline front end to the rating
// engine that prices from the built-in rate cards.
package cli

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:           "shipquote",
        Short:         "Quote shipping for a print order",
        Long:          "shipquote computes shipment weight, box splits and carrier quotes from the built-in rate cards without calling any carrier.",
        SilenceUsage:  true,
        SilenceErrors: true,
    }
    cmd.AddCommand(newRatesCmd())
    cmd.AddCommand(newBoxesCmd())
    return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
    return newRootCmd()
}

func Execute() error {
    return newRootCmd().Execute()
}
