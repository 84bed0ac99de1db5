package server

import (
    "context"
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"

    "printship/internal/shipping"
)

var validate = newValidator()

func newValidator() *validator.Validate {
    v := validator.New(validator.WithRequiredStructEnabled())
    // Use JSON tag names for field names in errors
    v.RegisterTagNameFunc(func(fld reflect.StructField) string {
        name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return v
}

// RatesRequest is the body of POST /rates.
type RatesRequest struct {
    Items       []ItemRequest   `json:"items" validate:"required,min=1,dive"`
    Origin      *AddressRequest `json:"origin,omitempty"`
    Destination AddressRequest  `json:"destination"`
}

// ItemRequest names its material either by catalog id or by an explicit
// area density. An item with neither uses the catalog fallback.
type ItemRequest struct {
    Quantity    int      `json:"quantity" validate:"gte=1,lte=1000000"`
    Width       float64  `json:"width" validate:"gt=0,lte=120"`
    Height      float64  `json:"height" validate:"gt=0,lte=120"`
    MaterialID  string   `json:"material_id,omitempty" validate:"omitempty,max=64"`
    AreaDensity *float64 `json:"area_density,omitempty" validate:"omitnil,gt=0,lte=1"`
}

type AddressRequest struct {
    Street      string `json:"street,omitempty"`
    City        string `json:"city,omitempty"`
    State       string `json:"state,omitempty" validate:"omitempty,max=3"`
    PostalCode  string `json:"postal_code" validate:"required,max=10"`
    Country     string `json:"country,omitempty" validate:"omitempty,len=2"`
    Residential bool   `json:"residential"`
}

func (a AddressRequest) toShipping() shipping.Address {
    return shipping.Address{
        Street:      a.Street,
        City:        a.City,
        State:       a.State,
        PostalCode:  a.PostalCode,
        Country:     a.Country,
        Residential: a.Residential,
    }
}

func (req RatesRequest) toShipping(ctx context.Context, densities DensityResolver) (shipping.Request, error) {
    out := shipping.Request{
        Items:       make([]shipping.Item, 0, len(req.Items)),
        Destination: req.Destination.toShipping(),
    }
    if req.Origin != nil {
        o := req.Origin.toShipping()
        out.Origin = &o
    }
    for i, it := range req.Items {
        var density float64
        if it.AreaDensity != nil {
            density = *it.AreaDensity
        } else {
            d, err := densities.Density(ctx, it.MaterialID)
            if err != nil {
                return shipping.Request{}, fmt.Errorf("item %d: %w", i+1, err)
            }
            density = d
        }
        out.Items = append(out.Items, shipping.Item{
            Quantity:    it.Quantity,
            Width:       it.Width,
            Height:      it.Height,
            AreaDensity: density,
        })
    }
    return out, nil
}

// validationMessage reports the first failing field as "field: rule".
func validationMessage(err error) string {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return "invalid request"
    }
    e := verrs[0]
    field := strings.TrimPrefix(e.Namespace(), "RatesRequest.")
    switch e.Tag() {
    case "required":
        return field + " is required"
    case "min":
        return field + " must have at least " + e.Param() + " entries"
    case "gt":
        return field + " must be greater than " + e.Param()
    case "gte":
        return field + " must be at least " + e.Param()
    case "lte":
        return field + " must be at most " + e.Param()
    case "len":
        return field + " must be exactly " + e.Param() + " characters"
    case "max":
        return field + " must be at most " + e.Param() + " characters"
    default:
        return field + " is invalid"
    }
}
