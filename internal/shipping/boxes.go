package shipping

import (
    "fmt"
    "math"
    "strconv"
    "strings"

    "gopkg.in/yaml.v3"
)

// MaxBoxes caps how many boxes one shipment may be split into. Heavier
// shipments are freight and are rejected as invalid input.
const MaxBoxes = 1000

// MaxBoxWeight is the carrier-agnostic ceiling for a single box, in pounds.
const MaxBoxWeight = 36.0

// BoxTier is one standard box size and the heaviest load it is rated for.
type BoxTier struct {
    Name     string  `yaml:"name"`
    Length   float64 `yaml:"length"`
    Width    float64 `yaml:"width"`
    Height   float64 `yaml:"height"`
    Capacity float64 `yaml:"capacity"`
}

func (t BoxTier) dimensions() Dimensions {
    return Dimensions{Name: t.Name, Length: t.Length, Width: t.Width, Height: t.Height}
}

// DefaultBoxTiers returns the stock box sizes, smallest first.
func DefaultBoxTiers() []BoxTier {
    return []BoxTier{
        {Name: "small", Length: 12, Width: 9, Height: 4, Capacity: 10},
        {Name: "medium", Length: 14, Width: 12, Height: 6, Capacity: 20},
        {Name: "large", Length: 18, Width: 14, Height: 8, Capacity: 30},
        {Name: "xlarge", Length: 20, Width: 16, Height: 10, Capacity: MaxBoxWeight},
    }
}

// ValidateBoxTiers checks that tiers are non-empty, positive and ordered by
// strictly increasing capacity.
func ValidateBoxTiers(tiers []BoxTier) error {
    if len(tiers) == 0 {
        return invalidf("at least one box tier is required")
    }
    for i, t := range tiers {
        if strings.TrimSpace(t.Name) == "" {
            return invalidf("box tier %d has no name", i+1)
        }
        if t.Length <= 0 || t.Width <= 0 || t.Height <= 0 || t.Capacity <= 0 {
            return invalidf("box tier %q must have positive dimensions and capacity", t.Name)
        }
        if i > 0 && t.Capacity <= tiers[i-1].Capacity {
            return invalidf("box tier capacities must be strictly increasing (%q after %q)", t.Name, tiers[i-1].Name)
        }
    }
    return nil
}

// ParseBoxTiers decodes a YAML list of tiers and validates it.
func ParseBoxTiers(data []byte) ([]BoxTier, error) {
    var doc struct {
        Tiers []BoxTier `yaml:"tiers"`
    }
    if err := yaml.Unmarshal(data, &doc); err != nil {
        return nil, fmt.Errorf("parsing box tiers: %w", err)
    }
    if err := ValidateBoxTiers(doc.Tiers); err != nil {
        return nil, err
    }
    return doc.Tiers, nil
}

// SplitIntoBoxes greedily fills boxes up to maxBoxWeight. Every box but the
// last is full; the last carries the remainder. A zero total yields no boxes.
func SplitIntoBoxes(totalWeight, maxBoxWeight float64, tiers []BoxTier) ([]Box, error) {
    if totalWeight < 0 || math.IsNaN(totalWeight) {
        return nil, invalidf("total weight must not be negative, got %g", totalWeight)
    }
    if !(maxBoxWeight > 0) || math.IsInf(maxBoxWeight, 1) {
        return nil, invalidf("max box weight must be positive and finite, got %g", maxBoxWeight)
    }
    if totalWeight > maxBoxWeight*MaxBoxes {
        return nil, invalidf("total weight %g needs more than %d boxes of %glb", totalWeight, MaxBoxes, maxBoxWeight)
    }
    if err := ValidateBoxTiers(tiers); err != nil {
        return nil, err
    }

    var boxes []Box
    remaining := totalWeight
    for remaining > 0 {
        w := min(remaining, maxBoxWeight)
        boxes = append(boxes, Box{Weight: w, Dimensions: selectTier(tiers, w).dimensions()})
        remaining -= w
    }
    return boxes, nil
}

// selectTier picks the smallest tier rated for w, or the largest tier when
// none is.
func selectTier(tiers []BoxTier, w float64) BoxTier {
    for _, t := range tiers {
        if t.Capacity >= w {
            return t
        }
    }
    return tiers[len(tiers)-1]
}

// BoxSummary renders boxes for people, e.g. "2 boxes: 30lb, 25lb".
func BoxSummary(boxes []Box) string {
    if len(boxes) == 0 {
        return "0 boxes"
    }
    weights := make([]string, len(boxes))
    for i, b := range boxes {
        weights[i] = strconv.FormatFloat(RoundWeight(b.Weight), 'f', -1, 64) + "lb"
    }
    noun := "boxes"
    if len(boxes) == 1 {
        noun = "box"
    }
    return fmt.Sprintf("%d %s: %s", len(boxes), noun, strings.Join(weights, ", "))
}
