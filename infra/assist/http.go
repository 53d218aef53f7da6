// Package assist provides the HTTP adapter for the external reasoning
// collaborator. It builds the coordinator prompt, posts it to a
// generate-content style endpoint and parses the JSON decision out of the
// model's text reply.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	coreassist "github.com/warebots/fleetsim/core/assist"
	"github.com/warebots/fleetsim/core/logger"
	"github.com/warebots/fleetsim/core/model"
)

// HTTPReasoner implements assist.Reasoner over a JSON HTTP endpoint.
type HTTPReasoner struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	log      logger.Logger
}

// NewHTTPReasoner creates an adapter for the configured endpoint. Returns
// nil when no endpoint is configured so the policy falls back to the
// deterministic heuristic.
func NewHTTPReasoner(cfg coreassist.Config, log logger.Logger) *HTTPReasoner {
	if cfg.Endpoint == "" {
		return nil
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &HTTPReasoner{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{},
		log:      log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Decide posts the prompt and parses the assignment decision. The caller's
// context carries the hard timeout.
func (r *HTTPReasoner) Decide(ctx context.Context, state model.AssistState, ev model.Event) (model.AssistResponse, error) {
	start := time.Now()
	body, err := json.Marshal(generateRequest{Model: r.model, Prompt: BuildPrompt(state, ev)})
	if err != nil {
		return model.AssistResponse{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.AssistResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return model.AssistResponse{}, fmt.Errorf("reasoning call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return model.AssistResponse{}, fmt.Errorf("reasoning call: unexpected status %d", resp.StatusCode)
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return model.AssistResponse{}, fmt.Errorf("decode response: %w", err)
	}

	var decision model.AssistResponse
	if err := json.Unmarshal([]byte(StripFences(gen.Text)), &decision); err != nil {
		return model.AssistResponse{}, fmt.Errorf("parse decision: %w", err)
	}
	decision.LatencyMs = time.Since(start).Milliseconds()
	return decision, nil
}
