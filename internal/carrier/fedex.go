package carrier

import (
    "context"
    "math"

    "github.com/shopspring/decimal"
    "go.uber.org/zap"

    "printship/internal/shipping"
)

// FedEx prices shipments against the FedEx service catalog. With an API
// client it asks FedEx for live prices; otherwise it uses the card's list
// rates.
type FedEx struct {
    card   Card
    api    *FedExAPI
    logger *zap.Logger
}

// NewFedEx returns a FedEx provider. api may be nil.
func NewFedEx(card Card, api *FedExAPI, logger *zap.Logger) *FedEx {
    if logger == nil {
        logger = zap.NewNop()
    }
    return &FedEx{card: card, api: api, logger: logger.With(zap.String("carrier", string(shipping.CarrierFedEx)))}
}

func (f *FedEx) Carrier() shipping.Carrier { return shipping.CarrierFedEx }

func (f *FedEx) Rates(ctx context.Context, origin, destination shipping.Address, boxes []shipping.Box) ([]shipping.Quote, error) {
    if origin.Country != shipping.DefaultCountry || destination.Country != shipping.DefaultCountry {
        return nil, nil
    }
    z, ok := zone(origin.PostalCode, destination.PostalCode)
    if !ok {
        return nil, nil
    }
    rateable, unrated := partitionBoxes(boxes, f.card.MaxBoxWeight)
    if unrated > 0 {
        f.logger.Warn("boxes over carrier limit left unrated",
            zap.Int("unrated", unrated),
            zap.Float64("max_box_weight", f.card.MaxBoxWeight),
        )
    }
    if len(rateable) == 0 {
        return nil, nil
    }

    services := f.servicesFor(destination.Residential)
    if f.api != nil {
        return f.liveRates(ctx, origin, destination, rateable, unrated, services)
    }

    quotes := make([]shipping.Quote, 0, len(services))
    for _, s := range services {
        var total decimal.Decimal
        for _, b := range rateable {
            total = total.Add(f.boxPrice(s, b.Weight, z, destination.Residential))
        }
        quotes = append(quotes, f.newQuote(s, total, z, len(rateable), unrated))
    }
    return quotes, nil
}

// servicesFor keeps the ground variant that matches the destination type, so
// home delivery and commercial ground never appear together.
func (f *FedEx) servicesFor(residential bool) []Service {
    var out []Service
    for _, s := range f.card.Services {
        if s.Serves(residential) {
            out = append(out, s)
        }
    }
    return out
}

func (f *FedEx) boxPrice(s Service, weight float64, z int, residential bool) decimal.Decimal {
    billable := decimal.NewFromFloat(math.Max(math.Ceil(weight), f.card.MinBillableWeight))
    zoneFactor := decimal.NewFromInt(1).Add(f.card.ZoneStep.Mul(decimal.NewFromInt(int64(z - 2))))
    price := s.Base.Add(s.PerLb.Mul(billable).Mul(zoneFactor))
    if residential {
        price = price.Add(s.ResidentialSurcharge)
    }
    return price.Round(2)
}

func (f *FedEx) newQuote(s Service, amount decimal.Decimal, z, boxes, unrated int) shipping.Quote {
    days := s.TransitDays
    if s.TransitByZone {
        days = max(1, z-1)
    }
    return shipping.Quote{
        Carrier:      shipping.CarrierFedEx,
        ServiceCode:  s.Code,
        ServiceName:  s.Name,
        Amount:       amount.Round(2),
        Currency:     shipping.Currency,
        TransitDays:  shipping.Days(days),
        Guaranteed:   s.Guaranteed,
        BoxCount:     boxes,
        UnratedBoxes: unrated,
    }
}

// liveRates normalizes a FedEx API reply. Names and guarantee flags come from
// the catalog; services outside the catalog or not offered for this
// destination type are dropped.
func (f *FedEx) liveRates(ctx context.Context, origin, destination shipping.Address, boxes []shipping.Box, unrated int, services []Service) ([]shipping.Quote, error) {
    details, err := f.api.Quote(ctx, origin, destination, boxes)
    if err != nil {
        return nil, shipping.Unavailable(shipping.CarrierFedEx, err)
    }
    allowed := make(map[string]Service, len(services))
    for _, s := range services {
        allowed[s.Code] = s
    }
    var quotes []shipping.Quote
    for _, d := range details {
        s, ok := allowed[d.ServiceType]
        if !ok {
            f.logger.Debug("dropping service not offered for destination", zap.String("service", d.ServiceType))
            continue
        }
        q := f.newQuote(s, d.Amount, 0, len(boxes), unrated)
        q.TransitDays = nil
        if d.TransitDays > 0 {
            q.TransitDays = shipping.Days(d.TransitDays)
        } else if !s.TransitByZone {
            q.TransitDays = shipping.Days(s.TransitDays)
        }
        quotes = append(quotes, q)
    }
    return quotes, nil
}

// partitionBoxes splits boxes into those within a carrier's limit and a count
// of those over it.
func partitionBoxes(boxes []shipping.Box, limit float64) ([]shipping.Box, int) {
    rateable := make([]shipping.Box, 0, len(boxes))
    unrated := 0
    for _, b := range boxes {
        if b.Weight > limit {
            unrated++
            continue
        }
        rateable = append(rateable, b)
    }
    return rateable, unrated
}
