package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kidonrage/ai-labs/internal/providers"
)

const completionPath = "/v1/responses"

// Client speaks the hosted responses endpoint: one POST per completion, no
// retries, no streaming.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a responses-endpoint client. The API key is held in
// memory only and travels exclusively in the Authorization header.
func NewClient(baseURL, apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}
}

// Complete submits one prompt and normalizes the reply. A reply without any
// usable assistant text is an error; absent usage or timestamps are not.
func (c *Client) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.Completion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to responses endpoint failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("responses endpoint returned %s: %s", httpResp.Status, strings.TrimSpace(string(respBody)))
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	answer, ok := ExtractAnswer(&resp)
	if !ok {
		return nil, fmt.Errorf("response contained no assistant message text")
	}

	completion := &providers.Completion{
		Text:  answer,
		Model: resp.Model,
	}
	if completion.Model == "" {
		completion.Model = req.Model
	}
	if usage, ok := ExtractUsage(&resp); ok {
		completion.Usage = usage
	}
	if duration, ok := ExtractDuration(&resp); ok {
		completion.DurationSeconds = &duration
	}

	if c.logger != nil {
		fields := logrus.Fields{"model": completion.Model}
		if completion.Usage != nil {
			fields["total_tokens"] = completion.Usage.TotalTokens
		}
		c.logger.WithFields(fields).Debug("Completion received")
	}

	return completion, nil
}
