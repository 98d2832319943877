package here

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

const defaultBaseURL = "https://transit.api.here.com"

// Client fetches public-transit travel durations from the HERE transit
// routing API. Each call is one GET with no retries; a failed attempt
// simply waits for the next scheduled update.
type Client struct {
	session *http.Client
	baseURL string
	appID   string
	appCode string
	now     func() time.Time
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("here api status %d: %s", e.Code, e.Body)
}

// routeResponse mirrors the parts of the routing response the sensor
// reads. Pointer fields distinguish absent substructures from empty ones.
type routeResponse struct {
	Res *struct {
		Connections *struct {
			Connection []struct {
				Duration string `json:"duration"`
			} `json:"Connection"`
		} `json:"Connections"`
	} `json:"Res"`
}

func NewClient(appID, appCode string) (*Client, error) {
	if appID == "" {
		return nil, errors.New("here client: app_id is empty")
	}
	if appCode == "" {
		return nil, errors.New("here client: app_code is empty")
	}
	return &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		appID:   appID,
		appCode: appCode,
		now:     time.Now,
	}, nil
}

// FetchDurationMinutes requests a single transit connection and extracts
// its duration, rounded to whole minutes (ties round away from zero).
// Responses missing any of Res, Res.Connections, the connection list or
// the duration field yield ok=false without an error.
func (c *Client) FetchDurationMinutes(ctx context.Context, origin, destination string) (int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v3/route.json", nil)
	if err != nil {
		return 0, false, fmt.Errorf("create route request: %w", err)
	}

	q := req.URL.Query()
	q.Set("app_id", c.appID)
	q.Set("app_code", c.appCode)
	q.Set("routing", "all")
	q.Set("dep", origin)
	q.Set("arr", destination)
	q.Set("time", c.now().Format("2006-01-02T15:04:05"))
	q.Set("max", "1")
	q.Set("details", "0")
	req.URL.RawQuery = q.Encode()

	resp, err := c.session.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("route request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return 0, false, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, false, fmt.Errorf("decode route response: %w", err)
	}

	if decoded.Res == nil || decoded.Res.Connections == nil || decoded.Res.Connections.Connection == nil {
		return 0, false, nil
	}
	connections := decoded.Res.Connections.Connection
	if len(connections) == 0 || connections[0].Duration == "" {
		return 0, false, nil
	}

	d, err := duration.Parse(connections[0].Duration)
	if err != nil {
		return 0, false, fmt.Errorf("parse duration %q: %w", connections[0].Duration, err)
	}

	minutes := int(math.Round(d.ToTimeDuration().Seconds() / 60))
	return minutes, true, nil
}
