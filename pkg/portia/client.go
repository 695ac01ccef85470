package portia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the hosted platform endpoint.
const DefaultBaseURL = "https://api.portialabs.ai"

const defaultPollInterval = 2 * time.Second

// Client talks to the platform's plan/run HTTP API. All heavy lifting
// (tool execution, OAuth clarifications, LLM calls) happens on the
// platform; the client only drives the run to a terminal state.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       zerolog.Logger
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
	Logger       zerolog.Logger
}

// NewClient creates a platform client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger.With().Str("component", "portia").Logger(),
	}, nil
}

// Plan submits a natural-language query and returns the generated plan.
func (c *Client) Plan(ctx context.Context, query string) (*Plan, error) {
	if query == "" {
		return nil, fmt.Errorf("plan query cannot be empty")
	}

	var plan Plan
	if err := c.do(ctx, http.MethodPost, "/api/v0/plans/", planRequest{Query: query}, &plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	c.logger.Info().Str("plan_id", plan.ID).Int("steps", len(plan.Steps)).Msg("Plan created")
	return &plan, nil
}

// RunPlan starts executing a plan. The structured output schema is
// forwarded so the platform returns the final output in that shape.
func (c *Client) RunPlan(ctx context.Context, plan *Plan, schema map[string]any) (*PlanRun, error) {
	if plan == nil || plan.ID == "" {
		return nil, fmt.Errorf("plan with ID is required")
	}

	var run PlanRun
	req := runRequest{PlanID: plan.ID, StructuredOutputSchema: schema}
	if err := c.do(ctx, http.MethodPost, "/api/v0/plan-runs/", req, &run); err != nil {
		return nil, fmt.Errorf("failed to start plan run: %w", err)
	}

	c.logger.Info().Str("run_id", run.ID).Str("state", string(run.State)).Msg("Plan run started")

	// The create call may return before execution finishes.
	if !run.State.Terminal() && run.State != StateNeedClarification {
		return c.poll(ctx, &run, func(s PlanRunState) bool {
			return s.Terminal() || s == StateNeedClarification
		})
	}
	return &run, nil
}

// WaitForReady blocks while the run waits on a clarification, such as
// an OAuth grant resolved in the user's browser, then rides the run to
// a terminal state.
func (c *Client) WaitForReady(ctx context.Context, run *PlanRun) (*PlanRun, error) {
	if run == nil || run.ID == "" {
		return nil, fmt.Errorf("plan run with ID is required")
	}

	c.logger.Info().Str("run_id", run.ID).Msg("Waiting for clarification to resolve")
	return c.poll(ctx, run, PlanRunState.Terminal)
}

// GetRun fetches the current state of a plan run.
func (c *Client) GetRun(ctx context.Context, runID string) (*PlanRun, error) {
	var run PlanRun
	if err := c.do(ctx, http.MethodGet, "/api/v0/plan-runs/"+runID+"/", nil, &run); err != nil {
		return nil, fmt.Errorf("failed to fetch plan run %s: %w", runID, err)
	}
	return &run, nil
}

// poll refetches the run until done reports true for its state.
func (c *Client) poll(ctx context.Context, run *PlanRun, done func(PlanRunState) bool) (*PlanRun, error) {
	current := run
	for !done(current.State) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		next, err := c.GetRun(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		if next.State != current.State {
			c.logger.Debug().Str("run_id", run.ID).
				Str("from", string(current.State)).
				Str("to", string(next.State)).
				Msg("Plan run state changed")
		}
		current = next
	}
	return current, nil
}

// do performs a JSON request against the platform API.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && (apiErr.Error != "" || apiErr.Message != "") {
			msg := apiErr.Message
			if msg == "" {
				msg = apiErr.Error
			}
			return fmt.Errorf("platform returned %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("platform returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
