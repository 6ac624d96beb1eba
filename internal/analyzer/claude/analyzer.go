package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scanno/internal/analyzer"
	"scanno/internal/config"
	"scanno/internal/domain"
	"scanno/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	providerName = "claude"

	maxTokens   = 1024
	temperature = 0.2
)

func init() {
	analyzer.RegisterProvider(providerName, func(cfg *config.AnalyzerProviderConfig) (port.ReportAnalyzer, error) {
		return NewAnalyzer(cfg), nil
	})
}

// Analyzer implements port.ReportAnalyzer using the Anthropic Messages API.
type Analyzer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnalyzer creates a Claude-based report analyzer from a provider config.
func NewAnalyzer(cfg *config.AnalyzerProviderConfig) *Analyzer {
	return newAnalyzer(cfg, apiURL)
}

// NewAnalyzerWithEndpoint creates an analyzer pointing at a custom API endpoint (for testing).
func NewAnalyzerWithEndpoint(cfg *config.AnalyzerProviderConfig, endpoint string) *Analyzer {
	return newAnalyzer(cfg, endpoint)
}

func newAnalyzer(cfg *config.AnalyzerProviderConfig, endpoint string) *Analyzer {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Analyzer{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*port.AnalysisReply, error) {
	contentBlocks, err := buildContentBlocks(req)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"model":       a.model,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"system":      analyzer.SystemPersona,
		"messages": []map[string]interface{}{
			{"role": "user", "content": contentBlocks},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := analyzer.ParseRetryAfterHeader(resp.Header.Get("retry-after"))
			baseErr := fmt.Errorf("anthropic API error (status %d)", resp.StatusCode)
			return nil, analyzer.NewRateLimitError(providerName, baseErr, retryAfter)
		}
		return nil, &analyzer.StatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return parseResponse(respBody, a.model)
}

func buildContentBlocks(req domain.AnalysisRequest) ([]map[string]interface{}, error) {
	switch req.Path {
	case domain.PathText:
		return []map[string]interface{}{
			{"type": "text", "text": analyzer.BuildTextAnalysisPrompt(req.ReportText)},
		}, nil

	case domain.PathVision:
		encoded := base64.StdEncoding.EncodeToString(req.FileBytes)
		source := map[string]interface{}{
			"type":       "base64",
			"media_type": req.ContentType,
			"data":       encoded,
		}

		var media map[string]interface{}
		switch req.ContentType {
		case "application/pdf":
			media = map[string]interface{}{"type": "document", "source": source}
		case "image/jpeg", "image/png":
			media = map[string]interface{}{"type": "image", "source": source}
		default:
			return nil, fmt.Errorf("unsupported content type for vision analysis: %s", req.ContentType)
		}

		return []map[string]interface{}{
			media,
			{"type": "text", "text": analyzer.BuildVisionAnalysisPrompt()},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported analysis path: %s", req.Path)
	}
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.AnalysisReply, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API: no content blocks")
	}

	return &port.AnalysisReply{
		Text:     strings.TrimSpace(resp.Content[0].Text),
		Provider: providerName,
		Model:    model,
	}, nil
}
