// Package anthropic is the streaming client for the Anthropic Messages
// API. It is the only external collaborator of the service; the
// circuit breaker and retry protect the connection handshake, while an
// established stream is consumed without retrying (the caller surfaces
// mid-stream failures inline).
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/infra/resilience"
)

var tracer = otel.Tracer("infra/anthropic")

const (
	apiVersion = "2023-06-01"

	// systemPrompt binds the assistant to the supplied report context.
	systemPrompt = "You are a helpful financial analysis assistant. You must answer ONLY using the provided JSON context (analysis/insights/actions) derived from an uploaded CSV. If the context does not contain the information needed, say you cannot determine it from the uploaded data. Be concise and use bullet points when helpful."
)

// Client calls POST {baseURL}/v1/messages with stream enabled.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewClient creates the Anthropic streaming client.
func NewClient(httpClient *http.Client, baseURL, apiKey, model string, maxTokens int, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		cb:         cb,
		cfg:        cfg,
	}
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Stream      bool      `json:"stream"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamEvent is the subset of SSE payloads the client cares about.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Message struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StreamChat sends the chat exchange and forwards text deltas to
// onDelta as they arrive. The handshake goes through the breaker and
// retry; once the stream is open, failures are returned to the caller
// along with any usage collected so far.
func (c *Client) StreamChat(ctx context.Context, req *domain.ChatRequest, onDelta func(text string) error) (*domain.TokenUsage, error) {
	ctx, span := tracer.Start(ctx, "anthropic.StreamChat")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	body, err := c.buildBody(req)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	result, err := c.cb.Execute(func() (any, error) {
		var inner *http.Response
		connErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("create request: %w", err)
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("X-Api-Key", c.apiKey)
			httpReq.Header.Set("Anthropic-Version", apiVersion)
			httpReq.Header.Set("Accept", "text/event-stream")

			r, err := c.httpClient.Do(httpReq)
			if err != nil {
				return fmt.Errorf("http call to anthropic: %w", err)
			}
			if r.StatusCode != http.StatusOK {
				msg, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
				r.Body.Close()
				return fmt.Errorf("anthropic /v1/messages returned status %d: %s", r.StatusCode, strings.TrimSpace(string(msg)))
			}
			inner = r
			return nil
		})
		if connErr != nil {
			return nil, connErr
		}
		return inner, nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "anthropic", Err: err}
	}
	resp = result.(*http.Response)
	defer resp.Body.Close()

	return c.consumeStream(resp.Body, onDelta)
}

func (c *Client) buildBody(req *domain.ChatRequest) ([]byte, error) {
	contextJSON, err := json.MarshalIndent(req.Context, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal chat context: %w", err)
	}

	return json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0.2,
		System:      systemPrompt,
		Stream:      true,
		Messages: []message{
			{
				Role:    "user",
				Content: fmt.Sprintf("CONTEXT (JSON):\n%s\n\nUSER QUESTION:\n%s", contextJSON, req.Message),
			},
		},
	})
}

// consumeStream reads SSE lines until the stream ends, forwarding text
// deltas and collecting token usage from message_start/message_delta.
func (c *Client) consumeStream(r io.Reader, onDelta func(text string) error) (*domain.TokenUsage, error) {
	usage := &domain.TokenUsage{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue // tolerate unknown payloads
		}

		switch ev.Type {
		case "message_start":
			usage.InputTokens = ev.Message.Usage.InputTokens
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
				if err := onDelta(ev.Delta.Text); err != nil {
					return usage, err
				}
			}
		case "message_delta":
			if ev.Usage.OutputTokens > 0 {
				usage.OutputTokens = ev.Usage.OutputTokens
			}
		case "error":
			return usage, fmt.Errorf("anthropic stream error: %s", ev.Error.Message)
		case "message_stop":
			return usage, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return usage, fmt.Errorf("read anthropic stream: %w", err)
	}
	return usage, nil
}
