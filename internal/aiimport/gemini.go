package aiimport

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"curriculo/internal/apperror"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the generateContent endpoint.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGemini returns a provider using apiKey. An empty baseURL selects the
// public endpoint.
func NewGemini(apiKey, baseURL string, client *http.Client) *GeminiProvider {
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiProvider{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"systemInstruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature      float64 `json:"temperature"`
		MaxOutputTokens  int     `json:"maxOutputTokens"`
		ResponseMimeType string  `json:"responseMimeType"`
		ThinkingConfig   struct {
			ThinkingBudget int `json:"thinkingBudget"`
		} `json:"thinkingConfig"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	parts := []geminiPart{{Text: req.Instruction}}
	if text, ok := req.File.inlineText(); ok && !req.File.isImage() {
		parts = append(parts, geminiPart{Text: text})
	} else {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: req.File.mime(), Data: req.File.base64()}})
	}

	var payload geminiRequest
	payload.SystemInstruction = geminiContent{Role: "system", Parts: []geminiPart{{Text: req.SystemPrompt}}}
	payload.Contents = []geminiContent{{Role: "user", Parts: parts}}
	payload.GenerationConfig.Temperature = 0.1
	payload.GenerationConfig.MaxOutputTokens = 4096
	payload.GenerationConfig.ResponseMimeType = "application/json"

	endpoint := p.baseURL + "/models/" + url.PathEscape(req.Model) + ":generateContent"
	body, err := postJSON(ctx, p.client, endpoint, map[string]string{"x-goog-api-key": p.apiKey}, payload)
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := decodeProviderBody(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", apperror.Upstream("AI blocked the response: "+resp.PromptFeedback.BlockReason, nil)
		}
		return "", apperror.Upstream("AI returned no candidates", nil)
	}

	var texts []string
	for _, c := range resp.Candidates {
		for _, part := range c.Content.Parts {
			texts = append(texts, part.Text)
		}
	}
	if out := joinTexts(texts); out != "" {
		return out, nil
	}
	return "", apperror.Upstream("AI returned no text", nil)
}
