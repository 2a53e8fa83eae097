// Package remote talks to the CDC device API and reads the registered node inventory.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"cdc_zoning/internal/metrics"
	"cdc_zoning/internal/model"
)

const apiPrefix = "/cdc/api/v1"

// StatusError is a non-2xx answer from the device
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device returned status %d: %s", e.Status, e.Message)
}

// Client calls the device API. It implements zoning.Remote and zoning.Registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a client for the device at baseURL
func NewClient(baseURL string, timeout time.Duration, log *logrus.Entry) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithField("component", "remote"),
	}
}

// CreateAlias registers an alias on the device
func (c *Client) CreateAlias(ctx context.Context, a model.AliasRecord) error {
	body := map[string]string{"type": a.Type, "ip": a.IP, "nqn": a.NQN}
	return c.call(ctx, http.MethodPost, "alias", a.Name, body)
}

// DeleteAlias removes an alias from the device
func (c *Client) DeleteAlias(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, "alias", name, nil)
}

// CreateZone creates a zone on the device
func (c *Client) CreateZone(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodPost, "zone", name, nil)
}

// DeleteZone deletes a zone on the device
func (c *Client) DeleteZone(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, "zone", name, nil)
}

// CreateZoneGroup creates a zone group on the device
func (c *Client) CreateZoneGroup(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodPost, "zgrp", name, nil)
}

// DeleteZoneGroup deletes a zone group on the device
func (c *Client) DeleteZoneGroup(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, "zgrp", name, nil)
}

// Nodes fetches the registered node inventory
func (c *Client) Nodes(ctx context.Context) ([]model.RegisteredNode, error) {
	var inv model.NodeInventory
	err := c.do(ctx, http.MethodGet, apiPrefix+"/nvmenodes", nil, &inv)
	metrics.RemoteCallsTotal.WithLabelValues(http.MethodGet, "nvmenodes", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	return inv.Nodes, nil
}

func (c *Client) call(ctx context.Context, method, resource, name string, body interface{}) error {
	path := fmt.Sprintf("%s/%s/%s", apiPrefix, resource, url.PathEscape(name))
	err := c.do(ctx, method, path, body, nil)
	metrics.RemoteCallsTotal.WithLabelValues(method, resource, metrics.Result(err)).Inc()

	log := c.log.WithFields(logrus.Fields{"method": method, "resource": resource, "name": name})
	if err != nil {
		log.WithError(err).Warn("Device call failed")
		return err
	}
	log.Debug("Device call succeeded")
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach device: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &StatusError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
