package aiimport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"curriculo/internal/apperror"
)

const (
	ProviderGemini  = "gemini"
	ProviderChatGPT = "chatgpt"

	maxResponseBytes = 4 << 20
)

// Request is one generation call.
type Request struct {
	Model        string
	SystemPrompt string
	Instruction  string
	File         File
}

// Provider sends a request to a hosted model and returns its raw text answer.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// ResolveProvider maps user input to a provider name. Empty input selects
// gemini; "openai" is accepted as an alias of chatgpt.
func ResolveProvider(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderChatGPT, "openai":
		return ProviderChatGPT, nil
	default:
		return "", apperror.Validation("invalid AI provider")
	}
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// providerErrorMessage 从供应商错误体中提取 error.message。
func providerErrorMessage(body []byte) string {
	var pe providerError
	if err := json.Unmarshal(body, &pe); err != nil {
		return ""
	}
	return strings.TrimSpace(pe.Error.Message)
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.Internal("failed to encode provider request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperror.Internal("failed to build provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperror.UpstreamTimeout("AI provider request timed out", err)
		}
		return nil, apperror.Upstream("could not reach AI provider", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperror.UpstreamTimeout("AI provider request timed out", err)
		}
		return nil, apperror.Upstream("failed to read AI provider response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := providerErrorMessage(data); msg != "" {
			return nil, apperror.Upstream("AI analysis failed: "+msg, fmt.Errorf("provider status %d", resp.StatusCode))
		}
		return nil, apperror.Upstream(fmt.Sprintf("AI analysis failed (status %d)", resp.StatusCode), nil)
	}
	return data, nil
}

func decodeProviderBody(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return apperror.Upstream("invalid response from AI provider", err)
	}
	return nil
}

func joinTexts(texts []string) string {
	kept := texts[:0]
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
