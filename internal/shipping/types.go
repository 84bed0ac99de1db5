package shipping

import (
    "strings"

    "github.com/shopspring/decimal"
)

// Carrier identifies the company behind a rate quote.
type Carrier string

const (
    CarrierFedEx          Carrier = "FEDEX"
    CarrierSouthwestCargo Carrier = "SOUTHWEST_CARGO"
)

// DefaultCountry is applied to addresses that omit a country.
const DefaultCountry = "US"

// Currency of every quote amount.
const Currency = "USD"

// Item is the physical footprint of one order line.
type Item struct {
    Quantity    int
    Width       float64 // inches
    Height      float64 // inches
    AreaDensity float64 // lbs per square inch of the printed material
}

// Address is a shipment origin or destination.
type Address struct {
    Street      string `json:"street,omitempty"`
    City        string `json:"city,omitempty"`
    State       string `json:"state,omitempty"`
    PostalCode  string `json:"postal_code"`
    Country     string `json:"country"`
    Residential bool   `json:"residential"`
}

// Normalize trims every field and fills in the default country.
func (a Address) Normalize() Address {
    a.Street = strings.TrimSpace(a.Street)
    a.City = strings.TrimSpace(a.City)
    a.State = strings.ToUpper(strings.TrimSpace(a.State))
    a.PostalCode = strings.TrimSpace(a.PostalCode)
    a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
    if a.Country == "" {
        a.Country = DefaultCountry
    }
    return a
}

// Validate reports ErrInvalidInput when a field every carrier needs is missing.
func (a Address) Validate() error {
    if strings.TrimSpace(a.PostalCode) == "" {
        return invalidf("address postal code is required")
    }
    return nil
}

// Dimensions is a standard box size in inches.
type Dimensions struct {
    Name   string  `json:"name"`
    Length float64 `json:"length"`
    Width  float64 `json:"width"`
    Height float64 `json:"height"`
}

// Box is one physical package produced by SplitIntoBoxes.
type Box struct {
    Weight     float64    `json:"weight"`
    Dimensions Dimensions `json:"dimensions"`
}

// Quote is one normalized carrier offer. Providers build quotes and never
// modify them afterwards.
type Quote struct {
    ID           string          `json:"id"`
    Carrier      Carrier         `json:"carrier"`
    ServiceCode  string          `json:"service_code"`
    ServiceName  string          `json:"service_name"`
    Amount       decimal.Decimal `json:"amount"`
    Currency     string          `json:"currency"`
    TransitDays  *int            `json:"transit_days"`
    Guaranteed   bool            `json:"guaranteed"`
    BoxCount     int             `json:"box_count"`
    UnratedBoxes int             `json:"unrated_boxes,omitempty"`
}

// Days returns a pointer for Quote.TransitDays; a negative value means unknown.
func Days(n int) *int {
    if n < 0 {
        return nil
    }
    return &n
}
