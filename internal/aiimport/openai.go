package aiimport

import (
	"context"
	"net/http"
	"strings"

	"curriculo/internal/apperror"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider calls the Responses API.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAI(apiKey, baseURL string, client *http.Client) *OpenAIProvider {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIProvider{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (p *OpenAIProvider) Name() string { return ProviderChatGPT }

type openAIContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Filename string `json:"filename,omitempty"`
	FileData string `json:"file_data,omitempty"`
}

type openAIMessage struct {
	Role    string          `json:"role"`
	Content []openAIContent `json:"content"`
}

type openAIRequest struct {
	Model           string          `json:"model"`
	Temperature     float64         `json:"temperature"`
	MaxOutputTokens int             `json:"max_output_tokens"`
	Input           []openAIMessage `json:"input"`
}

type openAIResponse struct {
	OutputText *string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	content := []openAIContent{{Type: "input_text", Text: req.Instruction}}
	switch text, ok := req.File.inlineText(); {
	case req.File.isImage():
		content = append(content, openAIContent{Type: "input_image", ImageURL: req.File.dataURL(), Detail: "high"})
	case ok:
		content = append(content, openAIContent{Type: "input_text", Text: text})
	default:
		name := strings.TrimSpace(req.File.Name)
		if name == "" {
			name = "modelo-curriculo"
		}
		content = append(content, openAIContent{Type: "input_file", Filename: name, FileData: req.File.dataURL()})
	}

	payload := openAIRequest{
		Model:           req.Model,
		Temperature:     0.1,
		MaxOutputTokens: 4096,
		Input: []openAIMessage{
			{Role: "system", Content: []openAIContent{{Type: "input_text", Text: req.SystemPrompt}}},
			{Role: "user", Content: content},
		},
	}

	body, err := postJSON(ctx, p.client, p.baseURL+"/responses", map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}, payload)
	if err != nil {
		return "", err
	}

	var resp openAIResponse
	if err := decodeProviderBody(body, &resp); err != nil {
		return "", err
	}
	if resp.OutputText != nil && strings.TrimSpace(*resp.OutputText) != "" {
		return strings.TrimSpace(*resp.OutputText), nil
	}
	if resp.Output == nil {
		return "", apperror.Upstream("AI returned no content", nil)
	}

	var texts []string
	for _, item := range resp.Output {
		for _, c := range item.Content {
			texts = append(texts, c.Text)
		}
	}
	if out := joinTexts(texts); out != "" {
		return out, nil
	}
	return "", apperror.Upstream("AI returned no text", nil)
}
