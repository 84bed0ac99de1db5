package carrier

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "math"
    "net/http"
    "strings"
    "time"

    "github.com/shopspring/decimal"
    "golang.org/x/time/rate"

    "printship/internal/shipping"
)

// ErrAuthRejected is returned when FedEx refuses the API key.
var ErrAuthRejected = errors.New("fedex: authentication rejected")

// FedExAPIConfig configures the live FedEx rate client.
type FedExAPIConfig struct {
    BaseURL           string
    APIKey            string
    AccountNumber     string
    RequestsPerSecond float64
    HTTPClient        *http.Client
}

// FedExAPI calls the FedEx rate quote endpoint.
type FedExAPI struct {
    baseURL string
    apiKey  string
    account string
    client  *http.Client
    limiter *rate.Limiter
}

// NewFedExAPI returns a client, or nil when no base URL is configured.
func NewFedExAPI(cfg FedExAPIConfig) *FedExAPI {
    if strings.TrimSpace(cfg.BaseURL) == "" {
        return nil
    }
    client := cfg.HTTPClient
    if client == nil {
        client = &http.Client{Timeout: 10 * time.Second}
    }
    limit := rate.Inf
    if cfg.RequestsPerSecond > 0 {
        limit = rate.Limit(cfg.RequestsPerSecond)
    }
    return &FedExAPI{
        baseURL: strings.TrimRight(cfg.BaseURL, "/"),
        apiKey:  cfg.APIKey,
        account: cfg.AccountNumber,
        client:  client,
        limiter: rate.NewLimiter(limit, 1),
    }
}

type fedexAddress struct {
    PostalCode  string `json:"postalCode"`
    CountryCode string `json:"countryCode"`
    StateCode   string `json:"stateOrProvinceCode,omitempty"`
    City        string `json:"city,omitempty"`
    Residential bool   `json:"residential"`
}

type fedexWeight struct {
    Units string  `json:"units"`
    Value float64 `json:"value"`
}

type fedexDimensions struct {
    Length int    `json:"length"`
    Width  int    `json:"width"`
    Height int    `json:"height"`
    Units  string `json:"units"`
}

type fedexPackage struct {
    Weight     fedexWeight     `json:"weight"`
    Dimensions fedexDimensions `json:"dimensions"`
}

type fedexRateRequest struct {
    AccountNumber struct {
        Value string `json:"value"`
    } `json:"accountNumber"`
    RequestedShipment struct {
        Shipper struct {
            Address fedexAddress `json:"address"`
        } `json:"shipper"`
        Recipient struct {
            Address fedexAddress `json:"address"`
        } `json:"recipient"`
        PickupType                string         `json:"pickupType"`
        RateRequestType           []string       `json:"rateRequestType"`
        RequestedPackageLineItems []fedexPackage `json:"requestedPackageLineItems"`
    } `json:"requestedShipment"`
}

type fedexRateReply struct {
    Output struct {
        RateReplyDetails []struct {
            ServiceType          string `json:"serviceType"`
            ServiceName          string `json:"serviceName"`
            RatedShipmentDetails []struct {
                TotalNetCharge json.Number `json:"totalNetCharge"`
                Currency       string      `json:"currency"`
            } `json:"ratedShipmentDetails"`
            Commit struct {
                TransitDays struct {
                    MinimumTransitTime string `json:"minimumTransitTime"`
                } `json:"transitDays"`
            } `json:"commit"`
        } `json:"rateReplyDetails"`
    } `json:"output"`
    Errors []struct {
        Code    string `json:"code"`
        Message string `json:"message"`
    } `json:"errors"`
}

// RateDetail is one service price from a FedEx reply.
type RateDetail struct {
    ServiceType string
    Amount      decimal.Decimal
    TransitDays int
}

// Quote requests list rates for boxes. Any error means the call failed at
// transport level.
func (a *FedExAPI) Quote(ctx context.Context, origin, destination shipping.Address, boxes []shipping.Box) ([]RateDetail, error) {
    if err := a.limiter.Wait(ctx); err != nil {
        return nil, err
    }

    var body fedexRateRequest
    body.AccountNumber.Value = a.account
    body.RequestedShipment.Shipper.Address = toFedExAddress(origin)
    body.RequestedShipment.Recipient.Address = toFedExAddress(destination)
    body.RequestedShipment.PickupType = "USE_SCHEDULED_PICKUP"
    body.RequestedShipment.RateRequestType = []string{"LIST"}
    for _, b := range boxes {
        body.RequestedShipment.RequestedPackageLineItems = append(body.RequestedShipment.RequestedPackageLineItems, fedexPackage{
            Weight: fedexWeight{Units: "LB", Value: math.Ceil(b.Weight*10) / 10},
            Dimensions: fedexDimensions{
                Length: int(math.Ceil(b.Dimensions.Length)),
                Width:  int(math.Ceil(b.Dimensions.Width)),
                Height: int(math.Ceil(b.Dimensions.Height)),
                Units:  "IN",
            },
        })
    }
    payload, err := json.Marshal(body)
    if err != nil {
        return nil, fmt.Errorf("fedex: encode request: %w", err)
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/rate/v1/rates/quotes", bytes.NewReader(payload))
    if err != nil {
        return nil, err
    }
    req.Header.Set("Authorization", "Bearer "+a.apiKey)
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("X-locale", "en_US")

    resp, err := a.client.Do(req)
    if err != nil {
        return nil, fmt.Errorf("fedex: %w", err)
    }
    defer resp.Body.Close()

    switch {
    case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
        return nil, ErrAuthRejected
    case resp.StatusCode >= 300:
        snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return nil, fmt.Errorf("fedex: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
    }

    var reply fedexRateReply
    dec := json.NewDecoder(resp.Body)
    dec.UseNumber()
    if err := dec.Decode(&reply); err != nil {
        return nil, fmt.Errorf("fedex: malformed response: %w", err)
    }
    if len(reply.Errors) > 0 {
        return nil, fmt.Errorf("fedex: %s: %s", reply.Errors[0].Code, reply.Errors[0].Message)
    }

    details := make([]RateDetail, 0, len(reply.Output.RateReplyDetails))
    for _, d := range reply.Output.RateReplyDetails {
        if d.ServiceType == "" || len(d.RatedShipmentDetails) == 0 {
            return nil, fmt.Errorf("fedex: malformed response: rate detail without service or charge")
        }
        charge := d.RatedShipmentDetails[0]
        if charge.Currency != "" && charge.Currency != shipping.Currency {
            return nil, fmt.Errorf("fedex: unexpected currency %s", charge.Currency)
        }
        amount, err := decimal.NewFromString(charge.TotalNetCharge.String())
        if err != nil || amount.IsNegative() {
            return nil, fmt.Errorf("fedex: malformed response: charge %q", charge.TotalNetCharge)
        }
        details = append(details, RateDetail{
            ServiceType: d.ServiceType,
            Amount:      amount,
            TransitDays: transitDays(d.Commit.TransitDays.MinimumTransitTime),
        })
    }
    return details, nil
}

func toFedExAddress(a shipping.Address) fedexAddress {
    return fedexAddress{
        PostalCode:  a.PostalCode,
        CountryCode: a.Country,
        StateCode:   a.State,
        City:        a.City,
        Residential: a.Residential,
    }
}

var transitWords = map[string]int{
    "ONE_DAY": 1, "TWO_DAYS": 2, "THREE_DAYS": 3, "FOUR_DAYS": 4,
    "FIVE_DAYS": 5, "SIX_DAYS": 6, "SEVEN_DAYS": 7,
}

func transitDays(s string) int {
    return transitWords[strings.ToUpper(strings.TrimSpace(s))]
}
