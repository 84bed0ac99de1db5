package carrier

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "printship/internal/shipping"
)

func newFedEx(t *testing.T, api *FedExAPI) *FedEx {
    t.Helper()
    card, err := LoadCard("", "fedex")
    require.NoError(t, err)
    return NewFedEx(card, api, nil)
}

func TestFedEx_CommercialRateCard(t *testing.T) {
    quotes, err := newFedEx(t, nil).Rates(context.Background(), phoenix, dallas, postcardsB)
    require.NoError(t, err)

    assert.Equal(t, []string{"FEDEX_GROUND", "FEDEX_2_DAY", "STANDARD_OVERNIGHT", "PRIORITY_OVERNIGHT", "FIRST_OVERNIGHT"}, codes(quotes))
    ground := quotes[0]
    // zone 2: 9.85 + 0.58*36 and 9.85 + 0.58*1
    assert.Equal(t, "41.16", ground.Amount.StringFixed(2))
    assert.Equal(t, 2, ground.BoxCount)
    assert.Zero(t, ground.UnratedBoxes)
    require.NotNil(t, ground.TransitDays)
    assert.Equal(t, 1, *ground.TransitDays)
}

func TestFedEx_ResidentialAndCommercialGroundAreExclusive(t *testing.T) {
    f := newFedEx(t, nil)
    for _, residential := range []bool{true, false} {
        dest := dallas
        dest.Residential = residential
        quotes, err := f.Rates(context.Background(), phoenix, dest, postcardsB)
        require.NoError(t, err)

        got := codes(quotes)
        if residential {
            assert.Contains(t, got, "GROUND_HOME_DELIVERY")
            assert.NotContains(t, got, "FEDEX_GROUND")
        } else {
            assert.Contains(t, got, "FEDEX_GROUND")
            assert.NotContains(t, got, "GROUND_HOME_DELIVERY")
        }
    }
}

func TestFedEx_ResidentialPricing(t *testing.T) {
    dest := dallas
    dest.Residential = true
    quotes, err := newFedEx(t, nil).Rates(context.Background(), phoenix, dest, postcardsB)
    require.NoError(t, err)

    byCode := map[string]shipping.Quote{}
    for _, q := range quotes {
        byCode[q.ServiceCode] = q
    }
    // 11.20 + 0.61*36 and 11.20 + 0.61*1
    assert.Equal(t, "44.97", byCode["GROUND_HOME_DELIVERY"].Amount.StringFixed(2))
    // (24.60 + 1.45*36 + 4.95) + (24.60 + 1.45 + 4.95)
    assert.Equal(t, "112.75", byCode["FEDEX_2_DAY"].Amount.StringFixed(2))
}

func TestFedEx_GuaranteeComesFromCatalog(t *testing.T) {
    quotes, err := newFedEx(t, nil).Rates(context.Background(), phoenix, dallas, postcardsB)
    require.NoError(t, err)

    want := map[string]bool{
        "FEDEX_GROUND":       false,
        "FEDEX_2_DAY":        true,
        "STANDARD_OVERNIGHT": false,
        "PRIORITY_OVERNIGHT": true,
        "FIRST_OVERNIGHT":    true,
    }
    for _, q := range quotes {
        assert.Equal(t, want[q.ServiceCode], q.Guaranteed, q.ServiceCode)
    }
}

func TestFedEx_OverLimitBoxFailsAlone(t *testing.T) {
    f := newFedEx(t, nil)
    quotes, err := f.Rates(context.Background(), phoenix, dallas, []shipping.Box{{Weight: 10}, {Weight: 151}})
    require.NoError(t, err)
    require.NotEmpty(t, quotes)
    assert.Equal(t, 1, quotes[0].BoxCount)
    assert.Equal(t, 1, quotes[0].UnratedBoxes)

    quotes, err = f.Rates(context.Background(), phoenix, dallas, []shipping.Box{{Weight: 200}})
    require.NoError(t, err)
    assert.Empty(t, quotes)
}

func TestFedEx_UnservedDestinations(t *testing.T) {
    f := newFedEx(t, nil)
    abroad := shipping.Address{PostalCode: "K1A 0B1", Country: "CA"}
    quotes, err := f.Rates(context.Background(), phoenix, abroad, postcardsB)
    require.NoError(t, err)
    assert.Empty(t, quotes)

    garbled := shipping.Address{PostalCode: "ZIP", Country: "US"}
    quotes, err = f.Rates(context.Background(), phoenix, garbled, postcardsB)
    require.NoError(t, err)
    assert.Empty(t, quotes)
}

func fedexServer(t *testing.T, status int, body string) *httptest.Server {
    t.Helper()
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/rate/v1/rates/quotes", r.URL.Path)
        assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

        var req fedexRateRequest
        assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
        assert.Equal(t, "740561073", req.AccountNumber.Value)
        assert.Len(t, req.RequestedShipment.RequestedPackageLineItems, 2)

        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(status)
        _, _ = w.Write([]byte(body))
    }))
    t.Cleanup(srv.Close)
    return srv
}

func liveAPI(url string) *FedExAPI {
    return NewFedExAPI(FedExAPIConfig{BaseURL: url, APIKey: "test-key", AccountNumber: "740561073", RequestsPerSecond: 50})
}

const fedexReply = `{
  "output": {
    "rateReplyDetails": [
      {"serviceType": "FEDEX_GROUND", "ratedShipmentDetails": [{"totalNetCharge": 38.12, "currency": "USD"}]},
      {"serviceType": "GROUND_HOME_DELIVERY", "ratedShipmentDetails": [{"totalNetCharge": 41.02, "currency": "USD"}],
       "commit": {"transitDays": {"minimumTransitTime": "THREE_DAYS"}}},
      {"serviceType": "STANDARD_OVERNIGHT", "ratedShipmentDetails": [{"totalNetCharge": 140.55, "currency": "USD"}]},
      {"serviceType": "SMART_POST", "ratedShipmentDetails": [{"totalNetCharge": 12.00, "currency": "USD"}]}
    ]
  }
}`

func TestFedEx_LiveRates(t *testing.T) {
    srv := fedexServer(t, http.StatusOK, fedexReply)
    dest := dallas
    dest.Residential = true

    quotes, err := newFedEx(t, liveAPI(srv.URL)).Rates(context.Background(), phoenix, dest, postcardsB)
    require.NoError(t, err)

    assert.Equal(t, []string{"GROUND_HOME_DELIVERY", "STANDARD_OVERNIGHT"}, codes(quotes))
    assert.Equal(t, "41.02", quotes[0].Amount.StringFixed(2))
    require.NotNil(t, quotes[0].TransitDays)
    assert.Equal(t, 3, *quotes[0].TransitDays)
    assert.Equal(t, "FedEx Home Delivery", quotes[0].ServiceName)
    assert.False(t, quotes[1].Guaranteed)
    require.NotNil(t, quotes[1].TransitDays)
    assert.Equal(t, 1, *quotes[1].TransitDays)
}

func TestFedEx_LiveFailuresAreCarrierUnavailable(t *testing.T) {
    cases := map[string]struct {
        status int
        body   string
    }{
        "auth":      {http.StatusUnauthorized, `{"errors":[{"code":"NOT.AUTHORIZED.ERROR"}]}`},
        "server":    {http.StatusBadGateway, `upstream down`},
        "malformed": {http.StatusOK, `{"output": {"rateReplyDetails": [`},
        "no charge": {http.StatusOK, `{"output": {"rateReplyDetails": [{"serviceType": "FEDEX_GROUND"}]}}`},
        "api error": {http.StatusOK, `{"errors": [{"code": "SERVICE.UNAVAILABLE", "message": "try later"}]}`},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            srv := fedexServer(t, tc.status, tc.body)
            _, err := newFedEx(t, liveAPI(srv.URL)).Rates(context.Background(), phoenix, dallas, postcardsB)
            assert.ErrorIs(t, err, shipping.ErrCarrierUnavailable)
            if name == "auth" {
                assert.ErrorIs(t, err, ErrAuthRejected)
            }
        })
    }
}

func TestNewFedExAPI_DisabledWithoutURL(t *testing.T) {
    assert.Nil(t, NewFedExAPI(FedExAPIConfig{APIKey: "k"}))
}
