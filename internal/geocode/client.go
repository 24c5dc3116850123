// Package geocode resolves coordinates into display names through the
// OSM nominatim reverse-geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reportes_backend/platform/logger"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

const userAgent = "reportes_backend/1.0 (+https://example.com)"

// ErrTransient marks network and upstream failures that the caller should
// retry rather than treat as terminal.
var ErrTransient = errors.New("transient geocode error")

// Client calls the nominatim reverse endpoint.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewClient creates a reverse-geocoding client. An empty baseURL selects the
// public nominatim instance. Outbound calls are rate limited to one per
// second per nominatim's usage policy.
func NewClient(baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		log:     log,
	}
}

// Reverse resolves lat/lon into a display name. Failures at the network or
// HTTP level wrap ErrTransient. An empty name with a nil error means the
// service had nothing useful; callers keep whatever name they already have.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Add("format", "jsonv2")
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("zoom", "18")
	params.Add("addressdetails", "1")

	reqURL := fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("nominatim request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("nominatim upstream error", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: upstream status %d", ErrTransient, resp.StatusCode)
	}

	var raw nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.log.Warn("failed to decode nominatim payload", "error", err)
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}

	if raw.DisplayName != "" {
		return raw.DisplayName, nil
	}

	return synthesizeName(raw.Address), nil
}

// synthesizeName joins the address components in fixed priority order,
// skipping empty and duplicate parts.
func synthesizeName(addr nominatimAddress) string {
	candidates := []string{
		addr.Road,
		addr.HouseNumber,
		addr.Neighbourhood,
		addr.Suburb,
		addr.City,
		addr.State,
		addr.Country,
	}

	var parts []string
	for _, candidate := range candidates {
		if candidate == "" || contains(parts, candidate) {
			continue
		}
		parts = append(parts, candidate)
	}

	return strings.Join(parts, ", ")
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
