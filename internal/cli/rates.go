package cli

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "os"
    "strconv"
    "text/tabwriter"

    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "printship/internal/carrier"
    "printship/internal/catalog"
    "printship/internal/shipping"
)

// itemFile is one entry of the --items JSON file. Entries without an
// area_density use --density.
type itemFile struct {
    Quantity    int      `json:"quantity"`
    Width       float64  `json:"width"`
    Height      float64  `json:"height"`
    AreaDensity *float64 `json:"area_density"`
}

func newRatesCmd() *cobra.Command {
    var (
        itemsPath   string
        qty         int
        width       float64
        height      float64
        density     float64
        fromZip     string
        toZip       string
        toCountry   string
        residential bool
        providers   []string
        jsonOutput  bool
    )

    cmd := &cobra.Command{
        Use:   "rates",
        Short: "Quote every carrier for an order",
        Example: `  shipquote rates --qty 5000 --width 4 --height 6 --to-zip 75201
  shipquote rates --items order.json --to-zip 59801 --residential --json`,
        Args: cobra.NoArgs,
        RunE: func(cmd *cobra.Command, _ []string) error {
            items, err := loadItems(itemsPath, qty, width, height, density)
            if err != nil {
                return err
            }
            deps, err := carrier.DefaultDeps(zap.NewNop())
            if err != nil {
                return fmt.Errorf("loading rate cards: %w", err)
            }
            registry, err := carrier.NewRegistry(providers, deps)
            if err != nil {
                return err
            }
            engine, err := shipping.NewEngine(registry, shipping.Options{
                Origin: shipping.Address{PostalCode: fromZip},
            })
            if err != nil {
                return err
            }

            res, err := engine.ComputeShippingRates(cmd.Context(), shipping.Request{
                Items: items,
                Destination: shipping.Address{
                    PostalCode:  toZip,
                    Country:     toCountry,
                    Residential: residential,
                },
            })
            if err != nil {
                return err
            }
            if jsonOutput {
                enc := json.NewEncoder(cmd.OutOrStdout())
                enc.SetIndent("", "  ")
                return enc.Encode(res)
            }
            return renderRates(cmd.OutOrStdout(), res)
        },
    }

    f := cmd.Flags()
    f.StringVar(&itemsPath, "items", "", "JSON file with a list of {quantity, width, height, area_density}")
    f.IntVar(&qty, "qty", 1, "quantity of a single item")
    f.Float64Var(&width, "width", 0, "item width in inches")
    f.Float64Var(&height, "height", 0, "item height in inches")
    f.Float64Var(&density, "density", catalog.FallbackAreaDensity, "material area density in lbs per square inch")
    f.StringVar(&fromZip, "from-zip", "85034", "origin postal code")
    f.StringVar(&toZip, "to-zip", "", "destination postal code")
    f.StringVar(&toCountry, "to-country", shipping.DefaultCountry, "destination country")
    f.BoolVar(&residential, "residential", false, "destination is a residence")
    f.StringSliceVar(&providers, "providers", []string{"fedex", "southwest"}, "carriers to quote")
    f.BoolVar(&jsonOutput, "json", false, "print the result as JSON")
    _ = cmd.MarkFlagRequired("to-zip")
    return cmd
}

func loadItems(path string, qty int, width, height, density float64) ([]shipping.Item, error) {
    if path == "" {
        if width == 0 || height == 0 {
            return nil, errors.New("either --items or --width and --height are required")
        }
        return []shipping.Item{{Quantity: qty, Width: width, Height: height, AreaDensity: density}}, nil
    }
    data, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("reading items: %w", err)
    }
    var raw []itemFile
    if err := json.Unmarshal(data, &raw); err != nil {
        return nil, fmt.Errorf("parsing items: %w", err)
    }
    items := make([]shipping.Item, 0, len(raw))
    for _, it := range raw {
        d := density
        if it.AreaDensity != nil {
            d = *it.AreaDensity
        }
        items = append(items, shipping.Item{Quantity: it.Quantity, Width: it.Width, Height: it.Height, AreaDensity: d})
    }
    return items, nil
}

func renderRates(w io.Writer, res shipping.Result) error {
    fmt.Fprintf(w, "Total weight: %.1f lb (%s)\n\n", res.TotalWeight, res.BoxSummary)
    tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
    fmt.Fprintln(tw, "CARRIER\tSERVICE\tAMOUNT\tTRANSIT\tGUARANTEED\tNOTE")
    for _, q := range res.Rates {
        transit := "-"
        if q.TransitDays != nil {
            transit = strconv.Itoa(*q.TransitDays) + "d"
        }
        note := ""
        if q.UnratedBoxes > 0 {
            note = fmt.Sprintf("%d of %d boxes over carrier limit", q.UnratedBoxes, q.BoxCount+q.UnratedBoxes)
        }
        fmt.Fprintf(tw, "%s\t%s\t$%s\t%s\t%t\t%s\n",
            q.Carrier, q.ServiceName, q.Amount.StringFixed(2), transit, q.Guaranteed, note)
    }
    return tw.Flush()
}
