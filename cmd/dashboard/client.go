package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

// ServerInfo is the answer of GET /.
type ServerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Status      string `json:"status"`
}

// SimulationAPI is the part of the REST API the dashboard uses.
type SimulationAPI interface {
	Info(ctx context.Context) (ServerInfo, error)
	Simulations(ctx context.Context) ([]types.Simulation, error)
	Status(ctx context.Context, id string) (types.SimulationReport, error)
	Stop(ctx context.Context, id string) (types.Simulation, error)
}

// Client calls the simulator REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL, e.g. http://localhost:8000.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var body apiError
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Message == "" {
			return fmt.Errorf("%s %s: %s", method, path, resp.Status)
		}

		return fmt.Errorf("%s (code %d)", body.Error.Message, body.Error.Code)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Info(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.do(ctx, http.MethodGet, "/", &info)

	return info, err
}

func (c *Client) Simulations(ctx context.Context) ([]types.Simulation, error) {
	var body struct {
		Simulations []types.Simulation `json:"simulations"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/simulation/list", &body)

	return body.Simulations, err
}

func (c *Client) Status(ctx context.Context, id string) (types.SimulationReport, error) {
	var report types.SimulationReport
	err := c.do(ctx, http.MethodGet, "/api/v1/simulation/status/"+url.PathEscape(id), &report)

	return report, err
}

func (c *Client) Stop(ctx context.Context, id string) (types.Simulation, error) {
	var body struct {
		Simulation types.Simulation `json:"simulation"`
	}
	err := c.do(ctx, http.MethodDelete, "/api/v1/simulation/"+url.PathEscape(id), &body)

	return body.Simulation, err
}
