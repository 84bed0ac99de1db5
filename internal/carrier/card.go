package carrier

import (
    "embed"
    "errors"
    "fmt"
    "os"
    "strings"

    "github.com/shopspring/decimal"
    "gopkg.in/yaml.v3"

    "printship/internal/shipping"
)

//go:embed cards/*.yaml
var defaultCards embed.FS

// Delivery restricts a service to residential or commercial destinations.
type Delivery string

const (
    DeliveryAny         Delivery = ""
    DeliveryCommercial  Delivery = "commercial"
    DeliveryResidential Delivery = "residential"
)

// Bracket is a flat price for boxes up to a weight.
type Bracket struct {
    UpTo  float64         `yaml:"up_to"`
    Price decimal.Decimal `yaml:"price"`
}

// Service is one tier in a carrier's catalog. Guaranteed is carrier data and
// is never derived from speed or name.
type Service struct {
    Code                 string          `yaml:"code"`
    Name                 string          `yaml:"name"`
    Delivery             Delivery        `yaml:"delivery"`
    Guaranteed           bool            `yaml:"guaranteed"`
    TransitDays          int             `yaml:"transit_days"`
    TransitByZone        bool            `yaml:"transit_by_zone"`
    Base                 decimal.Decimal `yaml:"base"`
    PerLb                decimal.Decimal `yaml:"per_lb"`
    ResidentialSurcharge decimal.Decimal `yaml:"residential_surcharge"`
    Brackets             []Bracket       `yaml:"brackets"`
}

// Serves reports whether the service delivers to the given destination type.
func (s Service) Serves(residential bool) bool {
    switch s.Delivery {
    case DeliveryCommercial:
        return !residential
    case DeliveryResidential:
        return residential
    default:
        return true
    }
}

// Card is a carrier's service catalog and pricing.
type Card struct {
    Carrier           shipping.Carrier    `yaml:"carrier"`
    MaxBoxWeight      float64             `yaml:"max_box_weight"`
    MinBillableWeight float64             `yaml:"min_billable_weight"`
    ZoneStep          decimal.Decimal     `yaml:"zone_step"`
    Services          []Service           `yaml:"services"`
    Airports          map[string][]string `yaml:"airports"`
}

// Service looks up a catalog entry by code.
func (c Card) Service(code string) (Service, bool) {
    for _, s := range c.Services {
        if strings.EqualFold(s.Code, code) {
            return s, true
        }
    }
    return Service{}, false
}

// Validate checks the card is usable for pricing.
func (c Card) Validate() error {
    if c.Carrier == "" {
        return errors.New("rate card has no carrier")
    }
    if c.MaxBoxWeight <= 0 {
        return fmt.Errorf("%s: max_box_weight must be positive", c.Carrier)
    }
    if len(c.Services) == 0 {
        return fmt.Errorf("%s: at least one service is required", c.Carrier)
    }
    seen := map[string]bool{}
    for _, s := range c.Services {
        if s.Code == "" || s.Name == "" {
            return fmt.Errorf("%s: every service needs a code and name", c.Carrier)
        }
        if seen[s.Code] {
            return fmt.Errorf("%s: duplicate service %s", c.Carrier, s.Code)
        }
        seen[s.Code] = true
        switch s.Delivery {
        case DeliveryAny, DeliveryCommercial, DeliveryResidential:
        default:
            return fmt.Errorf("%s %s: unknown delivery %q", c.Carrier, s.Code, s.Delivery)
        }
        if s.Base.IsNegative() || s.PerLb.IsNegative() || s.ResidentialSurcharge.IsNegative() {
            return fmt.Errorf("%s %s: prices must be non-negative", c.Carrier, s.Code)
        }
        if err := validateBrackets(s.Brackets, c.MaxBoxWeight); err != nil {
            return fmt.Errorf("%s %s: %w", c.Carrier, s.Code, err)
        }
    }
    if err := validateAirports(c.Airports); err != nil {
        return fmt.Errorf("%s: %w", c.Carrier, err)
    }
    return nil
}

// validateAirports requires every ZIP3 prefix to belong to exactly one
// airport.
func validateAirports(airports map[string][]string) error {
    owner := map[string]string{}
    for airport, prefixes := range airports {
        if strings.TrimSpace(airport) == "" {
            return errors.New("airport code must not be empty")
        }
        for _, p := range prefixes {
            if !isZip3(p) {
                return fmt.Errorf("airport %s: %q is not a three digit ZIP prefix", airport, p)
            }
            if other, ok := owner[p]; ok {
                return fmt.Errorf("ZIP prefix %s is listed under both %s and %s", p, min(other, airport), max(other, airport))
            }
            owner[p] = airport
        }
    }
    return nil
}

func validateBrackets(brackets []Bracket, maxWeight float64) error {
    if len(brackets) == 0 {
        return nil
    }
    for i, b := range brackets {
        if b.UpTo <= 0 || b.Price.IsNegative() {
            return errors.New("brackets need a positive limit and a non-negative price")
        }
        if i > 0 && b.UpTo <= brackets[i-1].UpTo {
            return errors.New("bracket limits must be strictly increasing")
        }
    }
    if brackets[len(brackets)-1].UpTo < maxWeight {
        return errors.New("last bracket must cover max_box_weight")
    }
    return nil
}

// ParseCard decodes and validates a YAML rate card.
func ParseCard(data []byte) (Card, error) {
    var c Card
    if err := yaml.Unmarshal(data, &c); err != nil {
        return Card{}, fmt.Errorf("parsing rate card: %w", err)
    }
    if err := c.Validate(); err != nil {
        return Card{}, err
    }
    return c, nil
}

// LoadCard reads a rate card from path, or the built-in card named def when
// path is empty.
func LoadCard(path, def string) (Card, error) {
    var (
        data []byte
        err  error
    )
    if strings.TrimSpace(path) == "" {
        data, err = defaultCards.ReadFile("cards/" + def + ".yaml")
    } else {
        data, err = os.ReadFile(path)
    }
    if err != nil {
        return Card{}, err
    }
    return ParseCard(data)
}
