package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RunCompletion is the body sent to the completion API when a run ends.
type RunCompletion struct {
	RunID      string         `json:"runId"`
	Categories map[string]int `json:"categories"`
	Records    int            `json:"records"`
	Failed     []string       `json:"failed,omitempty"`
}

// APIClient notifies an external service that a run finished.
type APIClient struct {
	completionURL string
	httpClient    *http.Client
}

func NewAPIClient(completionURL string) *APIClient {
	return &APIClient{
		completionURL: completionURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CallRunCompletionAPI posts the payload. Failures are logged only: a missed
// notification must not turn a finished run into a failed one.
func (c *APIClient) CallRunCompletionAPI(ctx context.Context, payload RunCompletion) bool {
	log := zerolog.Ctx(ctx)

	if c.completionURL == "" {
		log.Debug().Msg("skipping run completion API call: no URL configured")

		return false
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionURL, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Error().Err(err).Msg("run completion API request")

		return false
	}

	req.Header.Set("Content-Type", "application/json")

	log.Info().Str("url", c.completionURL).Msg("calling run completion API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("run completion API call failed")

		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Error().Int("status", resp.StatusCode).Msg("run completion API rejected the call")

		return false
	}

	log.Info().Int("status", resp.StatusCode).Msg("run completion API response successful")

	return true
}

func (c *APIClient) CompletionURL() string {
	return c.completionURL
}
