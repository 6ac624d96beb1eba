package gemini

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
	baseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	providerName = "gemini"

	maxOutputTokens = 800
	temperature     = 0.2
)

func init() {
	analyzer.RegisterProvider(providerName, func(cfg *config.AnalyzerProviderConfig) (port.ReportAnalyzer, error) {
		return NewAnalyzer(cfg), nil
	})
}

// Analyzer implements port.ReportAnalyzer using the Gemini generateContent API.
type Analyzer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnalyzer creates a Gemini-based report analyzer from a provider config.
func NewAnalyzer(cfg *config.AnalyzerProviderConfig) *Analyzer {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return newAnalyzer(cfg, model, fmt.Sprintf("%s/%s:generateContent", baseURL, model))
}

// NewAnalyzerWithEndpoint creates an analyzer pointing at a custom API endpoint (for testing).
func NewAnalyzerWithEndpoint(cfg *config.AnalyzerProviderConfig, endpoint string) *Analyzer {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return newAnalyzer(cfg, model, endpoint)
}

func newAnalyzer(cfg *config.AnalyzerProviderConfig, model, endpoint string) *Analyzer {
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
	parts, err := buildParts(req)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"system_instruction": map[string]interface{}{
			"parts": []map[string]interface{}{{"text": analyzer.SystemPersona}},
		},
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     temperature,
			"maxOutputTokens": maxOutputTokens,
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
	httpReq.Header.Set("x-goog-api-key", a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := analyzer.ParseRetryAfterHeader(resp.Header.Get("retry-after"))
			baseErr := fmt.Errorf("gemini API error (status %d)", resp.StatusCode)
			return nil, analyzer.NewRateLimitError(providerName, baseErr, retryAfter)
		}
		return nil, &analyzer.StatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return parseResponse(respBody, a.model)
}

func buildParts(req domain.AnalysisRequest) ([]map[string]interface{}, error) {
	switch req.Path {
	case domain.PathText:
		return []map[string]interface{}{
			{"text": analyzer.BuildTextAnalysisPrompt(req.ReportText)},
		}, nil

	case domain.PathVision:
		encoded := base64.StdEncoding.EncodeToString(req.FileBytes)
		return []map[string]interface{}{
			{
				"inline_data": map[string]interface{}{
					"mime_type": req.ContentType,
					"data":      encoded,
				},
			},
			{"text": analyzer.BuildVisionAnalysisPrompt()},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported analysis path: %s", req.Path)
	}
}

// apiResponse models the Gemini generateContent response.
type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.AnalysisReply, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}

	return &port.AnalysisReply{
		Text:     strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text),
		Provider: providerName,
		Model:    model,
	}, nil
}
