package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// RemoteClassifier calls an external truth-classification service over HTTP.
type RemoteClassifier struct {
	Client   *http.Client
	Host     string
	ApiToken string
}

type remoteRequest struct {
	Content string `json:"content"`
}

type remoteResponse struct {
	Ratings []AreaRating `json:"ratings"`
}

func NewRemoteClassifier(host, token string) *RemoteClassifier {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(slog.Default().With("system", "classify"))
	client := retryClient.StandardClient()
	client.Timeout = 20 * time.Second
	return &RemoteClassifier{
		Client:   client,
		Host:     host,
		ApiToken: token,
	}
}

func (c *RemoteClassifier) Classify(ctx context.Context, content string) ([]AreaRating, error) {
	body, err := json.Marshal(remoteRequest{Content: content})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Host+"/v1/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ApiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.ApiToken)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, raw)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding classifier response: %w", err)
	}
	return out.Ratings, nil
}
