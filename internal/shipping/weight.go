package shipping

import "math"

// PackagingWeight is added once per shipment for packing materials.
const PackagingWeight = 1.0

// ItemWeight returns the unrounded weight of an item in pounds.
func ItemWeight(item Item) (float64, error) {
    switch {
    case item.Quantity < 1:
        return 0, invalidf("quantity must be at least 1, got %d", item.Quantity)
    case !positive(item.Width) || !positive(item.Height):
        return 0, invalidf("dimensions must be positive, got %gx%g", item.Width, item.Height)
    case !positive(item.AreaDensity):
        return 0, invalidf("material area density must be positive, got %g", item.AreaDensity)
    }
    w := item.AreaDensity * item.Width * item.Height * float64(item.Quantity)
    if math.IsInf(w, 0) {
        return 0, invalidf("item weight overflows, got %gx%g x %d", item.Width, item.Height, item.Quantity)
    }
    return w, nil
}

// positive reports whether v is a finite number above zero.
func positive(v float64) bool {
    return v > 0 && !math.IsInf(v, 1)
}

// TotalWeight sums every item and adds packaging once.
func TotalWeight(items []Item, packaging float64) (float64, error) {
    if len(items) == 0 {
        return 0, invalidf("shipment has no items")
    }
    if packaging < 0 || math.IsNaN(packaging) || math.IsInf(packaging, 0) {
        return 0, invalidf("packaging weight must be a non-negative number")
    }
    var total float64
    for i, item := range items {
        w, err := ItemWeight(item)
        if err != nil {
            return 0, fmtItemErr(i, err)
        }
        total += w
    }
    total += packaging
    if math.IsInf(total, 0) {
        return 0, invalidf("shipment weight overflows")
    }
    return total, nil
}

// RoundWeight rounds to the one-decimal precision weights are reported in.
func RoundWeight(w float64) float64 {
    return math.Round(w*10) / 10
}
