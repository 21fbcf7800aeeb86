package assistant

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/portfolioproxy/gateway/external"
	"github.com/portfolioproxy/gateway/internal/config"
)

// ProviderName labels assistant calls in logs and metrics.
const ProviderName = "openai"

// listLimit caps the message page; a fresh thread holds one user message
// and the assistant's replies.
const listLimit = 20

// OpenAIClient implements API over the OpenAI Assistants v2 endpoints.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates the client. httpClient may be nil; either way the
// per-call timeout from cfg is applied and calls are metered.
func NewOpenAIClient(cfg config.ProviderConfig, httpClient *http.Client) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = external.MeteredClient(ProviderName, cfg.Timeout, httpClient)
	return &OpenAIClient{client: openai.NewClientWithConfig(oc)}
}

// CreateThread implements API.
func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	th, err := c.client.CreateThread(ctx, openai.ThreadRequest{Metadata: map[string]any{}})
	if err != nil {
		return "", convertError(err)
	}
	return th.ID, nil
}

// AddMessage implements API.
func (c *OpenAIClient) AddMessage(ctx context.Context, threadID, content string) error {
	_, err := c.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    RoleUser,
		Content: content,
	})
	return convertError(err)
}

// CreateRun implements API.
func (c *OpenAIClient) CreateRun(ctx context.Context, threadID string, opts RunOptions) (Run, error) {
	run, err := c.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID:  opts.AssistantID,
		Model:        opts.Model,
		Instructions: opts.Instructions,
	})
	if err != nil {
		return Run{}, convertError(err)
	}
	return toRun(run), nil
}

// GetRun implements API.
func (c *OpenAIClient) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	run, err := c.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return Run{}, convertError(err)
	}
	return toRun(run), nil
}

// ListMessages implements API.
func (c *OpenAIClient) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	limit, order := listLimit, "desc"
	list, err := c.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, convertError(err)
	}

	out := make([]Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		msg := Message{Role: m.Role}
		for _, content := range m.Content {
			if content.Text != nil {
				msg.Texts = append(msg.Texts, content.Text.Value)
			}
		}
		out = append(out, msg)
	}
	return out, nil
}

// GetAssistant implements API.
func (c *OpenAIClient) GetAssistant(ctx context.Context, assistantID string) (Info, error) {
	a, err := c.client.RetrieveAssistant(ctx, assistantID)
	if err != nil {
		return Info{}, convertError(err)
	}
	info := Info{ID: a.ID, Model: a.Model}
	if a.Name != nil {
		info.Name = *a.Name
	}
	return info, nil
}

func toRun(r openai.Run) Run {
	run := Run{ID: r.ID, Status: RunStatus(r.Status)}
	if r.LastError != nil {
		run.LastError = r.LastError.Message
	}
	return run
}

// convertError maps SDK errors onto *external.StatusError so retry and
// classification treat the assistant like any other provider.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &external.StatusError{
			Provider:   ProviderName,
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
			Message:    apiErr.Message,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		se := &external.StatusError{
			Provider:   ProviderName,
			StatusCode: reqErr.HTTPStatusCode,
		}
		if reqErr.Err != nil {
			se.Body = reqErr.Err.Error()
		}
		return se
	}

	return err
}
