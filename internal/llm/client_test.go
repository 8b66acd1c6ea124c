package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-query-lab/internal/config"
)

type fakeChatModel struct {
	reply    string
	err      error
	delay    time.Duration
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestEinoClient_Complete(t *testing.T) {
	fake := &fakeChatModel{reply: "  SOL trades at $150.  "}
	c := NewEinoClient(fake, time.Second)

	out, err := c.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "SOL trades at $150.", out)

	require.Len(t, fake.received, 2)
	assert.Equal(t, schema.System, fake.received[0].Role)
	assert.Equal(t, "system prompt", fake.received[0].Content)
	assert.Equal(t, schema.User, fake.received[1].Role)
}

func TestEinoClient_Errors(t *testing.T) {
	_, err := NewEinoClient(&fakeChatModel{err: errors.New("503")}, time.Second).Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "503")

	_, err = NewEinoClient(&fakeChatModel{reply: "   "}, time.Second).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestEinoClient_Timeout(t *testing.T) {
	c := NewEinoClient(&fakeChatModel{reply: "late", delay: time.Second}, 20*time.Millisecond)

	start := time.Now()
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNewOpenAI_InactiveWithoutKey(t *testing.T) {
	c, err := NewOpenAI(context.Background(), config.Default().LLM)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`Here you go: {"a":{"b":2}} hope it helps`, `{"a":{"b":2}}`},
		{`no json`, `no json`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanJSON(tt.in))
	}
}
