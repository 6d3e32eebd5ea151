// Package client talks to a running dashboard over its JSON endpoints.
package client

import (
	"fmt"
	"strings"
	"time"

	"iris-app/internal/dashboard"
	"iris-app/internal/dataset"
	"iris-app/internal/ml"

	"github.com/go-resty/resty/v2"
)

// Client is a thin REST client for the dashboard API.
type Client struct {
	base string
	rest *resty.Client
}

// APIError is a non-2xx answer from the dashboard.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard: %d %s", e.Status, e.Message)
}

func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

// Predict asks the dashboard to classify in.
func (c *Client) Predict(in ml.Input) (ml.Prediction, error) {
	var out ml.Prediction
	apiErr := &APIError{}
	resp, err := c.rest.R().
		SetBody(in).
		SetResult(&out).
		SetError(apiErr).
		Post(c.base + "/api/predict")
	if err != nil {
		return ml.Prediction{}, fmt.Errorf("predict request: %w", err)
	}
	if resp.IsError() {
		return ml.Prediction{}, c.fail(resp, apiErr)
	}
	return out, nil
}

// Stats fetches the statistics table.
func (c *Client) Stats() (dataset.Summary, error) {
	var out dataset.Summary
	if err := c.get("/api/stats", &out); err != nil {
		return dataset.Summary{}, err
	}
	return out, nil
}

// Sliders fetches the slider specs.
func (c *Client) Sliders() ([]dashboard.Slider, error) {
	var out []dashboard.Slider
	if err := c.get("/api/sliders", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(path string, result any) error {
	apiErr := &APIError{}
	resp, err := c.rest.R().
		SetResult(result).
		SetError(apiErr).
		Get(c.base + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return c.fail(resp, apiErr)
	}
	return nil
}

func (c *Client) fail(resp *resty.Response, apiErr *APIError) error {
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode()
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(resp.String())
	}
	return apiErr
}
