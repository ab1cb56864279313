package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeChatClient struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
	}}
}

type fakeAdapter struct {
	out   string
	err   error
	delay time.Duration
}

func (f fakeAdapter) Process(ctx context.Context, text string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.out, f.err
}

func TestBuildSystemPrompt(t *testing.T) {
	assert.Contains(t, BuildSystemPrompt(""), "paragraphs")
	assert.Contains(t, BuildSystemPrompt("   "), "do not translate")
	assert.Equal(t, "Summarize.", BuildSystemPrompt(" Summarize. "))
}

func TestBuildUserPrompt(t *testing.T) {
	assert.Equal(t, "Text to process:\nhello", BuildUserPrompt("hello"))
}

func TestNewAdapter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "sk"}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"groq", Config{Provider: "groq", APIKey: "gsk"}, false},
		{"groq without key", Config{Provider: "groq"}, true},
		{"unknown", Config{Provider: "anthropic", APIKey: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdapter(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenAIAdapterProcess(t *testing.T) {
	client := &fakeChatClient{resp: reply("  First paragraph.\n\nSecond paragraph.  ")}
	adapter := NewOpenAIAdapter(Config{APIKey: "sk"})
	adapter.client = client

	out, err := adapter.Process(context.Background(), "First paragraph. Second paragraph.")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", out)
	assert.Equal(t, "gpt-4o-mini", client.req.Model)
	require.Len(t, client.req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, client.req.Messages[0].Role)
	assert.Contains(t, client.req.Messages[1].Content, "First paragraph. Second paragraph.")
}

func TestOpenAIAdapterEmptyInput(t *testing.T) {
	client := &fakeChatClient{err: errors.New("should not be called")}
	adapter := NewOpenAIAdapter(Config{APIKey: "sk"})
	adapter.client = client

	out, err := adapter.Process(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "  ", out)
}

func TestOpenAIAdapterErrors(t *testing.T) {
	adapter := NewGroqAdapter(Config{APIKey: "gsk", Model: "custom"})

	client := &fakeChatClient{resp: openai.ChatCompletionResponse{}}
	adapter.client = client
	_, err := adapter.Process(context.Background(), "text")
	assert.ErrorContains(t, err, "groq chat completion: no response choices")
	assert.Equal(t, "custom", client.req.Model)

	client.resp = reply("")
	_, err = adapter.Process(context.Background(), "text")
	assert.ErrorContains(t, err, "empty response")

	client.err = errors.New("rate limited")
	_, err = adapter.Process(context.Background(), "text")
	assert.ErrorContains(t, err, "rate limited")
}

func TestRefinerFallsBackToRawText(t *testing.T) {
	logger := zaptest.NewLogger(t)

	r := NewRefiner(fakeAdapter{out: "reflowed"}, 0, logger)
	out, ok := r.Refine(context.Background(), "raw")
	assert.True(t, ok)
	assert.Equal(t, "reflowed", out)

	r = NewRefiner(fakeAdapter{err: errors.New("down")}, 0, logger)
	out, ok = r.Refine(context.Background(), "raw")
	assert.False(t, ok)
	assert.Equal(t, "raw", out)

	r = NewRefiner(fakeAdapter{out: "late", delay: time.Second}, 10*time.Millisecond, logger)
	out, ok = r.Refine(context.Background(), "raw")
	assert.False(t, ok)
	assert.Equal(t, "raw", out)

	var nilRefiner *Refiner
	out, ok = nilRefiner.Refine(context.Background(), "raw")
	assert.False(t, ok)
	assert.Equal(t, "raw", out)
}
