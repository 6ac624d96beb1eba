package openai

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
	apiURL       = "https://api.openai.com/v1/chat/completions"
	providerName = "openai"

	// visionMaxTokens bounds the vision reply; text replies are shaped by
	// response_format instead.
	visionMaxTokens = 800
	temperature     = 0.2
)

func init() {
	analyzer.RegisterProvider(providerName, func(cfg *config.AnalyzerProviderConfig) (port.ReportAnalyzer, error) {
		return NewAnalyzer(cfg), nil
	})
}

// Analyzer implements port.ReportAnalyzer using the OpenAI Chat Completions API.
type Analyzer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnalyzer creates an OpenAI-based report analyzer from a provider config.
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
		model = "gpt-4o"
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
	reqBody, err := a.buildRequestBody(req)
	if err != nil {
		return nil, err
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
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := analyzer.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			baseErr := fmt.Errorf("openai API error (status %d)", resp.StatusCode)
			return nil, analyzer.NewRateLimitError(providerName, baseErr, retryAfter)
		}
		return nil, &analyzer.StatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return parseResponse(respBody, a.model)
}

// buildRequestBody constructs the chat completion payload for either
// modality. The text path pins response_format to a JSON object; the
// vision path attaches the document as a data URI content block.
func (a *Analyzer) buildRequestBody(req domain.AnalysisRequest) (map[string]interface{}, error) {
	switch req.Path {
	case domain.PathText:
		return map[string]interface{}{
			"model":       a.model,
			"temperature": temperature,
			"messages": []map[string]interface{}{
				{"role": "system", "content": analyzer.SystemPersona},
				{"role": "user", "content": analyzer.BuildTextAnalysisPrompt(req.ReportText)},
			},
			"response_format": map[string]interface{}{
				"type": "json_object",
			},
		}, nil

	case domain.PathVision:
		blocks, err := buildContentBlocks(req)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"model":       a.model,
			"temperature": temperature,
			"max_tokens":  visionMaxTokens,
			"messages": []map[string]interface{}{
				{"role": "user", "content": blocks},
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported analysis path: %s", req.Path)
	}
}

func buildContentBlocks(req domain.AnalysisRequest) ([]map[string]interface{}, error) {
	encoded := base64.StdEncoding.EncodeToString(req.FileBytes)
	dataURI := fmt.Sprintf("data:%s;base64,%s", req.ContentType, encoded)

	var blocks []map[string]interface{}
	switch req.ContentType {
	case "application/pdf":
		blocks = append(blocks, map[string]interface{}{
			"type": "file",
			"file": map[string]interface{}{
				"filename":  "document.pdf",
				"file_data": dataURI,
			},
		})
	case "image/jpeg", "image/png":
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		})
	default:
		return nil, fmt.Errorf("unsupported content type for vision analysis: %s", req.ContentType)
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": analyzer.BuildVisionAnalysisPrompt(),
	})
	return blocks, nil
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.AnalysisReply, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	return &port.AnalysisReply{
		Text:     strings.TrimSpace(resp.Choices[0].Message.Content),
		Provider: providerName,
		Model:    model,
	}, nil
}
