package shipping

import (
    "cmp"
    "context"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "fmt"
    "slices"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"
    "golang.org/x/sync/errgroup"
)

// DefaultProviderTimeout bounds a single carrier call.
const DefaultProviderTimeout = 8 * time.Second

// Options configures an Engine. Zero values fall back to package defaults.
type Options struct {
    MaxBoxWeight    float64
    PackagingWeight *float64
    BoxTiers        []BoxTier
    ProviderTimeout time.Duration
    // Origin is used when a request does not name one.
    Origin   Address
    Cache    QuoteCache
    Observer Observer
    Logger   *zap.Logger
}

// Request is the engine entry point input. Origin may be nil.
type Request struct {
    Items       []Item
    Origin      *Address
    Destination Address
}

// Result is what checkout receives.
type Result struct {
    Rates       []Quote `json:"rates"`
    TotalWeight float64 `json:"total_weight"`
    BoxCount    int     `json:"box_count"`
    BoxSummary  string  `json:"box_summary"`
}

// Engine turns line items into sorted carrier quotes.
type Engine struct {
    providers []Provider
    maxBox    float64
    packaging float64
    tiers     []BoxTier
    timeout   time.Duration
    origin    Address
    cache     QuoteCache
    observer  Observer
    logger    *zap.Logger
}

// NewEngine builds an engine over a fixed provider registry.
func NewEngine(providers []Provider, opts Options) (*Engine, error) {
    if len(providers) == 0 {
        return nil, errors.New("shipping: at least one rate provider is required")
    }
    e := &Engine{
        providers: slices.Clone(providers),
        maxBox:    cmp.Or(opts.MaxBoxWeight, MaxBoxWeight),
        packaging: PackagingWeight,
        tiers:     opts.BoxTiers,
        timeout:   cmp.Or(opts.ProviderTimeout, DefaultProviderTimeout),
        origin:    opts.Origin.Normalize(),
        cache:     opts.Cache,
        observer:  opts.Observer,
        logger:    opts.Logger,
    }
    if opts.PackagingWeight != nil {
        e.packaging = *opts.PackagingWeight
    }
    if e.tiers == nil {
        e.tiers = DefaultBoxTiers()
    }
    if err := ValidateBoxTiers(e.tiers); err != nil {
        return nil, err
    }
    if e.maxBox < 0 || e.packaging < 0 {
        return nil, errors.New("shipping: weights must not be negative")
    }
    if e.observer == nil {
        e.observer = nopObserver{}
    }
    if e.logger == nil {
        e.logger = zap.NewNop()
    }
    return e, nil
}

// Rates returns the sorted quotes for a shipment.
func (e *Engine) Rates(ctx context.Context, items []Item, origin, destination Address) ([]Quote, error) {
    res, err := e.ComputeShippingRates(ctx, Request{Items: items, Origin: &origin, Destination: destination})
    if err != nil {
        return nil, err
    }
    return res.Rates, nil
}

// ComputeShippingRates runs the whole pipeline: weight, boxes, carrier
// fan-out and merge.
func (e *Engine) ComputeShippingRates(ctx context.Context, req Request) (Result, error) {
    origin := e.origin
    if req.Origin != nil {
        origin = req.Origin.Normalize()
    }
    destination := req.Destination.Normalize()
    if err := origin.Validate(); err != nil {
        return Result{}, fmt.Errorf("origin: %w", err)
    }
    if err := destination.Validate(); err != nil {
        return Result{}, fmt.Errorf("destination: %w", err)
    }

    total, err := TotalWeight(req.Items, e.packaging)
    if err != nil {
        return Result{}, err
    }
    boxes, err := SplitIntoBoxes(total, e.maxBox, e.tiers)
    if err != nil {
        return Result{}, err
    }

    quotes, err := e.quote(ctx, origin, destination, boxes)
    if err != nil {
        return Result{}, err
    }
    return Result{
        Rates:       quotes,
        TotalWeight: RoundWeight(total),
        BoxCount:    len(boxes),
        BoxSummary:  BoxSummary(boxes),
    }, nil
}

func (e *Engine) quote(ctx context.Context, origin, destination Address, boxes []Box) ([]Quote, error) {
    key := shipmentKey(origin, destination, boxes)
    if e.cache != nil {
        cached, ok, err := e.cache.Get(ctx, key)
        if err != nil {
            e.logger.Warn("quote cache read failed", zap.Error(err))
        } else if ok && len(cached) > 0 {
            return cached, nil
        }
    }

    quotes, err := e.dispatch(ctx, origin, destination, boxes)
    if err != nil {
        return nil, err
    }
    for i := range quotes {
        quotes[i].ID = quoteID(key, quotes[i])
    }
    sortQuotes(quotes)

    if e.cache != nil {
        if err := e.cache.Set(ctx, key, quotes); err != nil {
            e.logger.Warn("quote cache write failed", zap.Error(err))
        }
    }
    return quotes, nil
}

// dispatch calls every provider concurrently and keeps whatever succeeded.
func (e *Engine) dispatch(ctx context.Context, origin, destination Address, boxes []Box) ([]Quote, error) {
    results := make([][]Quote, len(e.providers))
    failures := make([]error, len(e.providers))

    var g errgroup.Group
    for i, p := range e.providers {
        g.Go(func() error {
            results[i], failures[i] = e.call(ctx, p, origin, destination, slices.Clone(boxes))
            return nil
        })
    }
    _ = g.Wait()

    var merged []Quote
    var errs []error
    for i := range e.providers {
        if failures[i] != nil {
            errs = append(errs, failures[i])
            continue
        }
        merged = append(merged, results[i]...)
    }

    if len(merged) == 0 {
        if len(errs) == len(e.providers) {
            return nil, fmt.Errorf("%w: all %d carriers failed: %w", ErrNoRatesAvailable, len(errs), errors.Join(errs...))
        }
        return nil, fmt.Errorf("%w: no carrier serves %s %s", ErrNoRatesAvailable, destination.Country, destination.PostalCode)
    }
    return merged, nil
}

type callResult struct {
    quotes []Quote
    err    error
}

// call runs one provider under its own deadline. A provider that ignores the
// context is abandoned when the deadline passes.
func (e *Engine) call(ctx context.Context, p Provider, origin, destination Address, boxes []Box) ([]Quote, error) {
    ctx, cancel := context.WithTimeout(ctx, e.timeout)
    defer cancel()

    start := time.Now()
    done := make(chan callResult, 1)
    go func() {
        defer func() {
            if r := recover(); r != nil {
                done <- callResult{err: fmt.Errorf("provider panic: %v", r)}
            }
        }()
        q, err := p.Rates(ctx, origin, destination, boxes)
        done <- callResult{quotes: q, err: err}
    }()

    var res callResult
    select {
    case res = <-done:
    case <-ctx.Done():
        res = callResult{err: ctx.Err()}
    }
    elapsed := time.Since(start)

    if res.err != nil {
        outcome := OutcomeError
        if errors.Is(res.err, context.DeadlineExceeded) {
            outcome = OutcomeTimeout
        }
        e.observer.ObserveProvider(p.Carrier(), outcome, elapsed)
        e.logger.Warn("carrier rate request failed",
            zap.String("carrier", string(p.Carrier())),
            zap.String("outcome", string(outcome)),
            zap.Duration("duration", elapsed),
            zap.Error(res.err),
        )
        return nil, Unavailable(p.Carrier(), res.err)
    }
    if len(res.quotes) == 0 {
        e.observer.ObserveProvider(p.Carrier(), OutcomeEmpty, elapsed)
        return nil, nil
    }
    e.observer.ObserveProvider(p.Carrier(), OutcomeOK, elapsed)
    return res.quotes, nil
}

// sortQuotes orders by amount, then carrier, then service code.
func sortQuotes(quotes []Quote) {
    slices.SortStableFunc(quotes, func(a, b Quote) int {
        if c := a.Amount.Cmp(b.Amount); c != 0 {
            return c
        }
        if c := cmp.Compare(a.Carrier, b.Carrier); c != 0 {
            return c
        }
        return cmp.Compare(a.ServiceCode, b.ServiceCode)
    })
}

var quoteNamespace = uuid.MustParse("6f1c2a7e-3d4b-5c8e-9a1f-2b3c4d5e6f70")

// quoteID is stable for a given shipment and service so repeated requests
// return identical quotes.
func quoteID(key string, q Quote) string {
    return uuid.NewSHA1(quoteNamespace, []byte(key+"|"+string(q.Carrier)+"|"+q.ServiceCode)).String()
}

func shipmentKey(origin, destination Address, boxes []Box) string {
    b, _ := json.Marshal(struct {
        Origin      Address `json:"o"`
        Destination Address `json:"d"`
        Boxes       []Box   `json:"b"`
    }{origin, destination, boxes})
    sum := sha256.Sum256(b)
    return hex.EncodeToString(sum[:])
}
