package cli

import (
    "fmt"
    "os"
    "text/tabwriter"

    "github.com/spf13/cobra"

    "printship/internal/shipping"
)

func newBoxesCmd() *cobra.Command {
    var (
        weight    float64
        maxWeight float64
        tiersPath string
    )

    cmd := &cobra.Command{
        Use:   "boxes",
        Short: "Show how a shipment weight splits into boxes",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, _ []string) error {
            tiers := shipping.DefaultBoxTiers()
            if tiersPath != "" {
                data, err := os.ReadFile(tiersPath)
                if err != nil {
                    return fmt.Errorf("reading box tiers: %w", err)
                }
                if tiers, err = shipping.ParseBoxTiers(data); err != nil {
                    return err
                }
            }
            boxes, err := shipping.SplitIntoBoxes(weight, maxWeight, tiers)
            if err != nil {
                return err
            }
            out := cmd.OutOrStdout()
            fmt.Fprintln(out, shipping.BoxSummary(boxes))
            tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
            fmt.Fprintln(tw, "#\tWEIGHT\tBOX\tDIMENSIONS")
            for i, b := range boxes {
                fmt.Fprintf(tw, "%d\t%glb\t%s\t%gx%gx%g\n", i+1, shipping.RoundWeight(b.Weight),
                    b.Dimensions.Name, b.Dimensions.Length, b.Dimensions.Width, b.Dimensions.Height)
            }
            return tw.Flush()
        },
    }

    f := cmd.Flags()
    f.Float64Var(&weight, "weight", 0, "total shipment weight in lbs")
    f.Float64Var(&maxWeight, "max-box-weight", shipping.MaxBoxWeight, "heaviest allowed box in lbs")
    f.StringVar(&tiersPath, "tiers", "", "YAML file with box tiers")
    _ = cmd.MarkFlagRequired("weight")
    return cmd
}
