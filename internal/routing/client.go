// Package routing estimates move routes through a generative model.
// Estimates are advisory: every failure degrades to a placeholder
// instead of surfacing an error to the caller.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// RouteEstimate is the model's reading of one origin/destination pair.
type RouteEstimate struct {
	Distance        string `json:"distance"`
	Duration        string `json:"duration"`
	PathDescription string `json:"path_description"`
	Suggestion      string `json:"suggestion"`
}

// fallbackEstimate is returned whenever the model cannot answer.
var fallbackEstimate = RouteEstimate{
	Distance:        "N/A",
	Duration:        "N/A",
	PathDescription: "N/A",
	Suggestion:      "Erro ao calcular rota via IA.",
}

const fallbackSummary = "Desculpe, não foi possível gerar o resumo no momento."

// Client talks to the generative language API behind a circuit breaker.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger, baseURL, apiKey, model string, timeout time.Duration) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "routing-ai",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// Enabled reports whether the client is configured to call the API.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// AnalyzeRoute asks the model for distance, duration and a driver tip
// between two addresses, optionally passing through intermediate stops.
// On any failure the placeholder estimate is returned with a nil error.
func (c *Client) AnalyzeRoute(ctx context.Context, origin, destination string, stops []string) RouteEstimate {
	route := fmt.Sprintf("de %q para %q", origin, destination)
	if len(stops) > 0 {
		route = fmt.Sprintf("de %q para %q, passando por %s", origin, destination, strings.Join(stops, ", "))
	}
	prompt := fmt.Sprintf(`Você é um assistente logístico de uma empresa de mudanças residenciais.
Analise a rota de mudança %s.
Responda SOMENTE com JSON no formato:
{"distance": "X km", "duration": "Y min", "path_description": "...", "suggestion": "..."}`,
		route)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.warn("route analysis failed", err)
		return fallbackEstimate
	}

	var estimate RouteEstimate
	if err := json.Unmarshal([]byte(extractJSON(text)), &estimate); err != nil {
		c.warn("route analysis returned malformed JSON", err)
		return fallbackEstimate
	}
	if estimate.Distance == "" && estimate.Duration == "" {
		return fallbackEstimate
	}
	return estimate
}

// Summarize produces a short operational narrative for a report period.
// Failures degrade to an apology string, never an error.
func (c *Client) Summarize(ctx context.Context, facts string) string {
	prompt := "Você é um analista operacional de uma empresa de mudanças residenciais. " +
		"Escreva um resumo executivo curto, em português, sobre os dados a seguir:\n\n" + facts

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.warn("summary generation failed", err)
		return fallbackSummary
	}
	if strings.TrimSpace(text) == "" {
		return fallbackSummary
	}
	return strings.TrimSpace(text)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("routing: client not configured")
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("routing: marshal request: %w", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("routing: api responded %d", resp.StatusCode)
		}
		return body, nil
	})
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(result.([]byte), &parsed); err != nil {
		return "", fmt.Errorf("routing: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("routing: empty response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// extractJSON strips markdown fences the model sometimes wraps around
// its JSON answer.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return trimmed[start : end+1]
		}
	}
	return trimmed
}

func (c *Client) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, slog.String("error", err.Error()))
	}
}
