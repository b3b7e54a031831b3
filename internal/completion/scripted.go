package completion

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// ScriptedModel is a canned llms.Model: each call consumes the next entry of
// Replies and Errs. Tests across the module use it to stand in for a live
// backend without any network.
type ScriptedModel struct {
	Replies     []string
	Errs        []error
	JSONModeErr error // returned whenever a request asks for JSON mode
	Calls       int
	Seen        [][]llms.MessageContent
}

func (m *ScriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	idx := m.Calls
	m.Calls++
	m.Seen = append(m.Seen, messages)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if m.JSONModeErr != nil {
		opts := llms.CallOptions{}
		for _, o := range options {
			o(&opts)
		}
		if opts.JSONMode {
			return nil, m.JSONModeErr
		}
	}

	if idx < len(m.Errs) && m.Errs[idx] != nil {
		return nil, m.Errs[idx]
	}
	reply := ""
	if idx < len(m.Replies) {
		reply = m.Replies[idx]
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: reply}},
	}, nil
}

func (m *ScriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}
