package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Slack Web API endpoint.
const DefaultBaseURL = "https://slack.com/api"

// Message is a single channel message.
type Message struct {
	TS   string `json:"ts"`
	User string `json:"user"`
	Text string `json:"text"`
}

// Client is a minimal Slack Web API client covering the conversation
// history read the local pipeline needs.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// historyResponse is Slack's conversations.history envelope.
type historyResponse struct {
	OK       bool      `json:"ok"`
	Error    string    `json:"error"`
	Messages []Message `json:"messages"`
}

// NewClient creates a Slack client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack bot token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger.With().Str("component", "slack").Logger(),
	}, nil
}

// ConversationsHistory fetches the most recent messages of a channel,
// newest first, up to limit.
func (c *Client) ConversationsHistory(ctx context.Context, channelID string, limit int) ([]Message, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel ID is required")
	}
	if limit <= 0 {
		limit = 50
	}

	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/conversations.history?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slack returned %d", resp.StatusCode)
	}

	var history historyResponse
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !history.OK {
		return nil, fmt.Errorf("slack API error: %s", history.Error)
	}

	c.logger.Debug().Str("channel", channelID).Int("count", len(history.Messages)).
		Msg("Fetched conversation history")
	return history.Messages, nil
}
