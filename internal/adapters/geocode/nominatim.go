package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Consecutive upstream failures that open the breaker.
const breakerFailureThreshold = 5

type NominatimOptions struct {
	BaseURL     string
	UserAgent   string
	RatePerSec  float64
	MaxAttempts int
	HTTPTimeout time.Duration
	// How long the breaker stays open before letting a trial request through.
	BreakerCooldown time.Duration
	Logger          *slog.Logger
}

// NominatimGeocoder implements ports.Geocoder using the OpenStreetMap
// Nominatim search API.
//
// It coordinates:
//   - Address normalization
//   - A shared request rate limit (Nominatim allows about one request per second)
//   - A circuit breaker so an outage fails lookups fast instead of timing out each one;
//     local rate-limit queueing and caller cancellation never count against it
//   - Optional retry with backoff for transient failures
//
// The geocoder is safe for concurrent use.
type NominatimGeocoder struct {
	session     *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	logger      *slog.Logger
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// lookupResult distinguishes "no match" from upstream failure so that an
// unknown address does not count against the breaker.
type lookupResult struct {
	coords domain.Coordinates
	found  bool
}

// callerGoneError marks a lookup that failed because the caller's context
// ended, not because the upstream misbehaved.
type callerGoneError struct{ err error }

func (e *callerGoneError) Error() string { return e.err.Error() }

func (e *callerGoneError) Unwrap() error { return e.err }

func NewNominatimGeocoder(opts NominatimOptions) (*NominatimGeocoder, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("nominatim geocoder: base url is empty")
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		return nil, errors.New("nominatim geocoder: user agent is empty")
	}

	ratePerSec := opts.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	httpTimeout := opts.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		// Only upstream failures count. A caller that cancelled or ran out
		// of time says nothing about Nominatim's health.
		IsSuccessful: func(err error) bool {
			var gone *callerGoneError
			return err == nil || errors.As(err, &gone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &NominatimGeocoder{
		session:     &http.Client{Timeout: httpTimeout},
		baseURL:     baseURL,
		userAgent:   opts.UserAgent,
		maxAttempts: maxAttempts,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), 1),
		breaker:     breaker,
		logger:      logger,
	}, nil
}

// normalize collapses whitespace so equivalent addresses produce identical queries.
func (g *NominatimGeocoder) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves address to the coordinates of the best Nominatim match.
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	norm := g.normalize(address)
	if norm == "" {
		return domain.Coordinates{}, &ErrGeocodingFailed{Address: address, Reason: "empty address"}
	}

	// Queue for the shared rate limit outside the breaker: time spent
	// waiting locally is not an upstream failure.
	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Address: norm, Reason: "rate limit wait: " + err.Error()}
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		res, err := g.lookup(ctx, norm)
		if err != nil && ctx.Err() != nil {
			return res, &callerGoneError{err: err}
		}
		return res, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Coordinates{}, &ErrGeocodingFailed{Address: norm, Reason: "circuit breaker open"}
	}
	if err != nil {
		var gf *ErrGeocodingFailed
		if errors.As(err, &gf) {
			return domain.Coordinates{}, err
		}
		return domain.Coordinates{}, &ErrGeocodingFailed{Address: norm, Reason: err.Error()}
	}

	res := out.(lookupResult)
	if !res.found {
		return domain.Coordinates{}, &ErrGeocodingFailed{Address: norm, Reason: "no results found"}
	}

	return res.coords, nil
}

func (g *NominatimGeocoder) lookup(ctx context.Context, address string) (lookupResult, error) {
	endpoint := g.baseURL + "/search"

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", address)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return lookupResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return lookupResult{}, &ErrGeocodingFailed{Address: address, Reason: "decode response: " + err.Error()}
	}

	if len(decoded) == 0 {
		return lookupResult{found: false}, nil
	}

	lat, err := strconv.ParseFloat(decoded[0].Lat, 64)
	if err != nil {
		return lookupResult{}, &ErrGeocodingFailed{Address: address, Reason: "invalid latitude"}
	}
	lon, err := strconv.ParseFloat(decoded[0].Lon, 64)
	if err != nil {
		return lookupResult{}, &ErrGeocodingFailed{Address: address, Reason: "invalid longitude"}
	}

	g.logger.Debug("geocoded address", "address", address, "lat", lat, "lon", lon, "display_name", decoded[0].DisplayName)

	return lookupResult{coords: domain.Coordinates{Lat: lat, Lon: lon}, found: true}, nil
}
