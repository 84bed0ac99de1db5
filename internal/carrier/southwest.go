package carrier

import (
    "context"

    "github.com/shopspring/decimal"
    "go.uber.org/zap"

    "printship/internal/shipping"
)

// SouthwestCargo prices airport-to-airport freight by weight bracket. It only
// quotes when both ends sit inside its airport network.
type SouthwestCargo struct {
    card     Card
    airports map[string]string // zip3 -> airport code
    logger   *zap.Logger
}

// NewSouthwestCargo indexes the card's airport network.
func NewSouthwestCargo(card Card, logger *zap.Logger) *SouthwestCargo {
    if logger == nil {
        logger = zap.NewNop()
    }
    idx := make(map[string]string)
    for airport, prefixes := range card.Airports {
        for _, p := range prefixes {
            idx[p] = airport
        }
    }
    return &SouthwestCargo{
        card:     card,
        airports: idx,
        logger:   logger.With(zap.String("carrier", string(shipping.CarrierSouthwestCargo))),
    }
}

func (s *SouthwestCargo) Carrier() shipping.Carrier { return shipping.CarrierSouthwestCargo }

// Airport returns the cargo airport serving a US address.
func (s *SouthwestCargo) Airport(a shipping.Address) (string, bool) {
    if a.Country != shipping.DefaultCountry {
        return "", false
    }
    z, ok := zip3(a.PostalCode)
    if !ok {
        return "", false
    }
    airport, ok := s.airports[z]
    return airport, ok
}

func (s *SouthwestCargo) Rates(ctx context.Context, origin, destination shipping.Address, boxes []shipping.Box) ([]shipping.Quote, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    from, ok := s.Airport(origin)
    if !ok {
        return nil, nil
    }
    to, ok := s.Airport(destination)
    if !ok {
        return nil, nil
    }

    rateable, unrated := partitionBoxes(boxes, s.card.MaxBoxWeight)
    if unrated > 0 {
        s.logger.Warn("boxes over carrier limit left unrated",
            zap.Int("unrated", unrated),
            zap.Float64("max_box_weight", s.card.MaxBoxWeight),
        )
    }
    if len(rateable) == 0 {
        return nil, nil
    }

    quotes := make([]shipping.Quote, 0, len(s.card.Services))
    for _, svc := range s.card.Services {
        var total decimal.Decimal
        priced := 0
        for _, b := range rateable {
            price, ok := bracketPrice(svc.Brackets, b.Weight)
            if !ok {
                continue
            }
            total = total.Add(price)
            priced++
        }
        if priced == 0 {
            continue
        }
        quotes = append(quotes, shipping.Quote{
            Carrier:      shipping.CarrierSouthwestCargo,
            ServiceCode:  svc.Code,
            ServiceName:  svc.Name + " (" + from + "-" + to + ")",
            Amount:       total.Round(2),
            Currency:     shipping.Currency,
            TransitDays:  shipping.Days(svc.TransitDays),
            Guaranteed:   svc.Guaranteed,
            BoxCount:     priced,
            UnratedBoxes: unrated + len(rateable) - priced,
        })
    }
    return quotes, nil
}

func bracketPrice(brackets []Bracket, weight float64) (decimal.Decimal, bool) {
    for _, b := range brackets {
        if weight <= b.UpTo {
            return b.Price, true
        }
    }
    return decimal.Decimal{}, false
}
