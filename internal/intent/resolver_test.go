package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/observability"
)

type fakeModel struct {
	reply string
	err   error
	calls int
}

func (f *fakeModel) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestResolve_ParsedFromModel(t *testing.T) {
	model := &fakeModel{reply: "```json\n" + `{"category":"defi-yield","metric":"apy","threshold":10,"timeframe_hours":24,
		"symbols":["sol"],"chain":"Solana","include_news":false,"include_sentiment":true,"comparison":false}` + "\n```"}
	rec := &observability.Recorder{}

	res := NewResolver(model, rec).Resolve(context.Background(), "best SOL yields above 10%")

	parsed, ok := res.(Parsed)
	require.True(t, ok, "expected model path, got %T", res)
	got := parsed.Intent()
	assert.Equal(t, domain.CategoryDefiYield, got.Category)
	assert.Equal(t, []string{"SOL"}, got.Symbols())
	assert.Equal(t, "Solana", got.Chain)
	assert.True(t, got.IncludeSentiment)
	assert.Equal(t, domain.IntentPathParsed, res.Path())

	events := rec.Named(observability.EventIntentResolved)
	require.Len(t, events, 1)
	assert.Equal(t, "parsed", events[0].Path)
	assert.NoError(t, events[0].Err)
}

func TestResolve_FallbackOnModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("timeout")}
	res := NewResolver(model, nil).Resolve(context.Background(), "What's the SOL price?")

	fb, ok := res.(FallbackUsed)
	require.True(t, ok)
	assert.EqualError(t, fb.Reason, "timeout")
	assert.Equal(t, domain.CategoryPrice, fb.Intent().Category)
	assert.Equal(t, domain.IntentPathFallback, res.Path())
}

func TestResolve_FallbackOnMalformedReply(t *testing.T) {
	replies := []string{
		`not json at all`,
		`{"category":"moon-mission"}`,
		`{"metric":"price"}`,
		`{"category":"price","metric":"vibes"}`,
		`{"category":"price","threshold":-5}`,
		`{"category":"price","unexpected":true}`,
		`{"category":"price","threshold":"19k"}`,
	}
	for _, reply := range replies {
		t.Run(reply, func(t *testing.T) {
			res := NewResolver(&fakeModel{reply: reply}, nil).Resolve(context.Background(), "What's the SOL price?")
			fb, ok := res.(FallbackUsed)
			require.True(t, ok, "expected fallback for %q", reply)
			assert.Error(t, fb.Reason)
		})
	}
}

func TestResolve_NilModelUsesFallback(t *testing.T) {
	res := NewResolver(nil, nil).Resolve(context.Background(), "pumpfun vs bonk")
	fb, ok := res.(FallbackUsed)
	require.True(t, ok)
	assert.ErrorIs(t, fb.Reason, ErrModelDisabled)
	assert.Equal(t, domain.CategoryCombined, fb.Intent().Category)
}

func TestResolve_FallbackDeterminism(t *testing.T) {
	query := "How many tokens reached over $19,000 mcap on pumpfun in the last hour?"
	r := NewResolver(&fakeModel{err: errors.New("down")}, nil)

	first := r.Resolve(context.Background(), query)
	second := r.Resolve(context.Background(), query)

	require.IsType(t, FallbackUsed{}, first)
	require.IsType(t, FallbackUsed{}, second)
	assert.True(t, first.Intent().Equal(second.Intent()))
	assert.Equal(t, first.Intent(), second.Intent())
}
