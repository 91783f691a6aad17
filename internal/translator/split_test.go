package translator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/robalyx/deeplweb/internal/translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errUnavailable = errors.New("service unavailable")

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "three sentences",
			input:    "Hello. How are you? Bye.",
			expected: []string{"Hello.", "How are you?", "Bye."},
		},
		{
			name:     "mixed whitespace",
			input:    "  Wow!  Really?\nYes  ",
			expected: []string{"Wow!", "Really?", "Yes"},
		},
		{
			name:     "colon boundary",
			input:    "Note: 10:30 works.",
			expected: []string{"Note:", "10:30 works."},
		},
		{
			name:     "no punctuation",
			input:    "just words",
			expected: []string{"just words"},
		},
		{
			name:     "punctuation without whitespace",
			input:    "v1.2.3 released",
			expected: []string{"v1.2.3 released"},
		},
		{
			name:     "blank",
			input:    " \n\t",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, translator.SplitSentences(tt.input))
		})
	}
}

func TestRemoteSplitter(t *testing.T) {
	t.Parallel()

	caller := newFakeCaller()
	caller.results[translator.MethodSplitIntoSentences] = splitResponse("EN", "Hello.", "Bye.")

	splitter := translator.NewRemoteSplitter(caller, []string{"EN", "FR"})
	sentences, computed, err := splitter.Split(t.Context(), "  Hello. Bye.\n", "DE", translator.Auto)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello.", "Bye."}, sentences)
	assert.Equal(t, "EN", computed)

	calls := caller.recorded(translator.MethodSplitIntoSentences)
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"Hello. Bye."}, calls[0].Params["texts"])
	assert.Equal(t, map[string]any{
		"lang_user_selected":   translator.Auto,
		"user_preferred_langs": []any{"EN", "FR", "DE"},
	}, calls[0].Params["lang"])
}

func TestRemoteSplitterNullLanguage(t *testing.T) {
	t.Parallel()

	caller := newFakeCaller()
	caller.results[translator.MethodSplitIntoSentences] = splitResponse(nil, "Hallo.")

	splitter := translator.NewRemoteSplitter(caller, nil)
	sentences, computed, err := splitter.Split(t.Context(), "Hallo.", "EN", "DE")
	require.NoError(t, err)

	assert.Equal(t, []string{"Hallo."}, sentences)
	assert.Empty(t, computed)
}

func TestRemoteSplitterNoSentences(t *testing.T) {
	t.Parallel()

	caller := newFakeCaller()
	caller.results[translator.MethodSplitIntoSentences] = map[string]any{"splitted_texts": []any{}}

	splitter := translator.NewRemoteSplitter(caller, nil)
	_, _, err := splitter.Split(t.Context(), "Hello.", "FR", "EN")
	require.ErrorIs(t, err, translator.ErrNoSentences)
}

func TestFallbackSplitter(t *testing.T) {
	t.Parallel()

	t.Run("uses remote result", func(t *testing.T) {
		t.Parallel()

		caller := newFakeCaller()
		caller.results[translator.MethodSplitIntoSentences] = splitResponse("EN", "Hello. Bye.")

		splitter := translator.NewFallbackSplitter(translator.NewRemoteSplitter(caller, nil), zaptest.NewLogger(t))
		sentences, computed, err := splitter.Split(t.Context(), "Hello. Bye.", "FR", translator.Auto)
		require.NoError(t, err)

		assert.Equal(t, []string{"Hello. Bye."}, sentences)
		assert.Equal(t, "EN", computed)
	})

	t.Run("falls back on error", func(t *testing.T) {
		t.Parallel()

		caller := newFakeCaller()
		caller.errs[translator.MethodSplitIntoSentences] = errUnavailable

		splitter := translator.NewFallbackSplitter(translator.NewRemoteSplitter(caller, nil), zaptest.NewLogger(t))
		sentences, computed, err := splitter.Split(t.Context(), "Hello. Bye.", "FR", translator.Auto)
		require.NoError(t, err)

		assert.Equal(t, []string{"Hello.", "Bye."}, sentences)
		assert.Empty(t, computed)
	})

	t.Run("does not mask cancellation", func(t *testing.T) {
		t.Parallel()

		caller := newFakeCaller()
		caller.errs[translator.MethodSplitIntoSentences] = context.Canceled

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		splitter := translator.NewFallbackSplitter(translator.NewRemoteSplitter(caller, nil), zaptest.NewLogger(t))
		_, _, err := splitter.Split(ctx, "Hello.", "FR", translator.Auto)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: translator.Auto},
		{input: "auto", expected: translator.Auto},
		{input: "AUTO", expected: translator.Auto},
		{input: "en", expected: "EN"},
		{input: "en-US", expected: "EN"},
		{input: "pt_BR", expected: "PT"},
		{input: "zh-CN", expected: "ZH"},
		{input: " fr ", expected: "FR"},
		{input: "not a language", expected: "NOT A LANGUAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, translator.NormalizeLanguage(tt.input))
		})
	}
}
