// Package llmtest provides an in-memory llms.Model for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// Call records one GenerateContent invocation.
type Call struct {
	Messages []llms.MessageContent
	Options  llms.CallOptions
}

// Model replies from a queue of canned responses. When the queue is empty it
// returns Err if set, otherwise an empty reply.
type Model struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Calls   []Call
	// Block, when set, is waited on before replying.
	Block chan struct{}
}

func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Messages: messages, Options: opts})
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Replies) == 0 {
		if m.Err != nil {
			return nil, m.Err
		}
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: ""}}}, nil
	}
	reply := m.Replies[0]
	m.Replies = m.Replies[1:]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply}}}, nil
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// CallCount is safe to use while a call is blocked.
func (m *Model) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent invocation.
func (m *Model) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[len(m.Calls)-1]
}

// Text flattens the text parts of a message.
func Text(mc llms.MessageContent) string {
	var out string
	for _, p := range mc.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			out += tc.Text
		}
	}
	return out
}
