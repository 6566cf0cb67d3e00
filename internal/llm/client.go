package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client is a client for an OpenAI-compatible chat completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient creates a new LLM client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

// ChatChoiceMessage represents the message in a chat choice.
type ChatChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int               `json:"index"`
	Message      ChatChoiceMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []ChatChoice `json:"choices"`
}

// buildMessages converts a system prompt plus conversation into API messages.
func buildMessages(systemPrompt string, messages []Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, ChatMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range messages {
		out = append(out, ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// Chat sends a single-message chat completion request to the LLM API.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.ChatWithMessages(ctx, "", []Message{{Role: "user", Content: message}}, ChatParams{})
}

// ChatWithMessages sends a chat completion request with a full message list
// and optional system prompt, returning the complete reply.
func (c *Client) ChatWithMessages(ctx context.Context, systemPrompt string, messages []Message, params ChatParams) (string, error) {
	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)

	model := params.Model
	if model == "" {
		model = c.Model
	}

	payload := ChatRequest{
		Model:       model,
		Messages:    buildMessages(systemPrompt, messages),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// StreamChat sends a streaming chat completion request to the LLM API.
// It reads Server-Sent Events (SSE) from the response and calls the callback
// for each token as it arrives. The stream ends on the API's done signal, a
// finish reason, or context cancellation; a cancelled context stops token
// consumption immediately.
func (c *Client) StreamChat(ctx context.Context, systemPrompt string, messages []Message, params ChatParams, callback func(token string) error) error {
	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)

	model := params.Model
	if model == "" {
		model = c.Model
	}

	payload := ChatRequest{
		Model:       model,
		Messages:    buildMessages(systemPrompt, messages),
		Stream:      true,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	// Read Server-Sent Events
	scanner := bufio.NewScanner(resp.Body)
	const dataPrefix = "data: "
	const doneMarker = "[DONE]"

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		data := strings.TrimPrefix(line, dataPrefix)
		if data == doneMarker {
			break
		}

		var streamResp struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
				FinishReason string `json:"finish_reason"`
			} `json:"choices"`
		}

		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			// Skip malformed JSON chunks
			continue
		}

		if len(streamResp.Choices) > 0 {
			token := streamResp.Choices[0].Delta.Content
			if token != "" {
				if err := callback(token); err != nil {
					return fmt.Errorf("callback error: %w", err)
				}
			}

			// Check if stream is finished
			if streamResp.Choices[0].FinishReason != "" {
				break
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}

	return nil
}
