// Package sunrisesunset implements the solar client against the
// sunrise-sunset.org API.
package sunrisesunset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/solar-day-service/internal/observability"
)

const defaultBaseURL = "https://api.sunrise-sunset.org/json"

// Client fetches computed solar times (sunrise, sunset, solar noon, twilight
// bounds) for a fixed location. It satisfies the solarday.SolarClient port.
type Client struct {
	baseURL  string
	lat, lon float64
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	metrics  *observability.Metrics
	log      zerolog.Logger
}

// New creates a Client for the given coordinates. An empty baseURL selects the
// public sunrise-sunset.org endpoint.
func New(
	httpClient *http.Client,
	baseURL string,
	lat, lon float64,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sunrise-sunset",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		lat:     lat,
		lon:     lon,
		httpCfg: HTTPClientConfig{
			Client: httpClient,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		metrics: metrics,
		log:     log,
	}
}

// TimesFor returns the provider's computed time values for the given date.
// Non-timestamp fields of the payload (such as day length) are skipped; a
// non-OK provider status or an empty result set is an error.
func (c *Client) TimesFor(ctx context.Context, date time.Time) (map[string]time.Time, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", c.lat))
		values.Set("lng", fmt.Sprintf("%f", c.lon))
		values.Set("date", date.Format(time.DateOnly))
		// formatted=0 selects RFC3339 timestamps instead of locale strings.
		values.Set("formatted", "0")

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		c.metrics.SolarRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results map[string]any `json:"results"`
		Status  string         `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.SolarRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode solar times response: %w", err)
	}

	if payload.Status != "OK" {
		c.metrics.SolarRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("solar times provider returned status %q", payload.Status)
	}

	times := make(map[string]time.Time, len(payload.Results))
	for kind, v := range payload.Results {
		s, ok := v.(string)
		if !ok {
			continue
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.log.Warn().Str("kind", kind).Str("value", s).Msg("skipping unparseable solar time value")
			continue
		}
		times[kind] = ts.UTC()
	}

	if len(times) == 0 {
		c.metrics.SolarRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("solar times provider returned no usable values for %s", date.Format(time.DateOnly))
	}

	c.metrics.SolarRequests.WithLabelValues("success").Inc()
	return times, nil
}
