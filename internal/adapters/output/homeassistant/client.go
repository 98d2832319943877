package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

// Client talks to the Home Assistant REST API with a long-lived access
// token. Bulk state reads are cached briefly because the zone matcher may
// scan all entities several times per update.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	mu         sync.RWMutex

	cacheStates []ports.HAEntity
	cacheTime   time.Time
}

func NewClient(url, token string) *Client {
	return &Client{
		url:        strings.TrimSuffix(url, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) GetState(ctx context.Context, entityID string) (*ports.HAEntity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url+"/api/states/"+entityID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", entityID, ports.ErrEntityNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HA API error: %d", resp.StatusCode)
	}

	var entity ports.HAEntity
	if err := json.NewDecoder(resp.Body).Decode(&entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

func (c *Client) ListStates(ctx context.Context) ([]ports.HAEntity, error) {
	c.mu.RLock()
	if time.Since(c.cacheTime) < 2*time.Second {
		res := c.cacheStates
		c.mu.RUnlock()
		return res, nil
	}
	c.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, "GET", c.url+"/api/states", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HA API error: %d", resp.StatusCode)
	}

	var states []ports.HAEntity
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cacheStates = states
	c.cacheTime = time.Now()
	c.mu.Unlock()

	return states, nil
}

func (c *Client) SetState(ctx context.Context, entityID, state string, attributes map[string]interface{}) error {
	payload := map[string]interface{}{
		"state":      state,
		"attributes": attributes,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/api/states/"+entityID, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HA API error: %d", resp.StatusCode)
	}
	return nil
}
