package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rxlens/prescription-scanner/internal/llm"
)

// ExplainPrescription implements llm.Assistant using text-only chat/completions.
func (c *Client) ExplainPrescription(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, "llm.explain", llm.BuildExplainPrompt(text))
}

// AnswerQuestion implements llm.Assistant for one conversation turn.
func (c *Client) AnswerQuestion(ctx context.Context, question, contextText string) (string, error) {
	return c.complete(ctx, "llm.answer", llm.BuildAnswerPrompt(question, contextText))
}

func (c *Client) complete(ctx context.Context, op, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info(op+".start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": prompt},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error(op+".http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", llm.NewAssistError(llm.ProviderFailure, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error(op+".decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", llm.NewAssistError(llm.ProviderFailure, fmt.Errorf("decode response: %w", err))
	}
	if len(cc.Choices) == 0 {
		c.log.Error(op+".no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return "", llm.NewAssistError(llm.EmptyResponse, fmt.Errorf("no choices in response"))
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		return "", llm.NewAssistError(llm.EmptyResponse, fmt.Errorf("blank message content"))
	}

	c.log.Info(op+".ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// post sends one chat-completions request, retrying transient failures with a
// fixed backoff. 4xx responses are not retried.
func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.Backoff):
			}
		}

		raw, status, err := c.send(ctx, url, b)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if status >= 400 && status < 500 {
			return nil, err
		}
		c.log.Warn("llm.http.retry", "attempt", attempt, "status", status, "error", err)
	}
	return nil, fmt.Errorf("chat completion failed after %d attempts: %w", c.cfg.Attempts, lastErr)
}

func (c *Client) send(ctx context.Context, url string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, resp.StatusCode, fmt.Errorf("openai status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, resp.StatusCode, nil
}
