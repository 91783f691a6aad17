package batch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/robalyx/deeplweb/internal/batch"
	"github.com/robalyx/deeplweb/internal/rpc"
	"github.com/robalyx/deeplweb/internal/translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errUnavailable = errors.New("service unavailable")

// upperTranslator upper-cases texts and fails on texts containing "fail".
type upperTranslator struct {
	err error
}

func (u *upperTranslator) Translate(_ context.Context, req translator.Request) (*translator.Result, error) {
	if strings.Contains(req.Text, "fail") {
		return nil, u.err
	}

	return &translator.Result{SourceLanguage: req.SourceLanguage, Text: strings.ToUpper(req.Text)}, nil
}

func factory(err error) batch.Factory {
	return func(context.Context, int) batch.Translator {
		return &upperTranslator{err: err}
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	texts := []string{"one", "two", "fail three", "four", "five", "six"}

	items, err := batch.Run(t.Context(), texts, batch.Options{
		SourceLanguage: "EN",
		TargetLanguage: "FR",
		Workers:        3,
	}, factory(errUnavailable), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, items, len(texts))

	for i, item := range items {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, texts[i], item.Text)

		if i == 2 {
			require.ErrorIs(t, item.Err, errUnavailable)
			assert.Nil(t, item.Result)
			continue
		}

		require.NoError(t, item.Err)
		assert.Equal(t, strings.ToUpper(texts[i]), item.Result.Text)
	}
}

func TestRunConfigErrorStopsBatch(t *testing.T) {
	t.Parallel()

	texts := []string{"fail", "two", "three"}

	_, err := batch.Run(t.Context(), texts, batch.Options{TargetLanguage: "FR", Workers: 1},
		factory(rpc.NewError(rpc.CodeGlossaryLanguageMismatch, "")), zaptest.NewLogger(t))

	require.ErrorIs(t, err, rpc.ErrGlossaryLanguageMismatch)
}

func TestRunWorkers(t *testing.T) {
	t.Parallel()

	items, err := batch.Run(t.Context(), nil, batch.Options{TargetLanguage: "FR", Workers: 4},
		factory(nil), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = batch.Run(t.Context(), []string{"one"}, batch.Options{TargetLanguage: "FR"},
		factory(nil), zaptest.NewLogger(t))
	require.ErrorIs(t, err, batch.ErrNoWorkers)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := batch.Run(ctx, []string{"one", "two"}, batch.Options{TargetLanguage: "FR", Workers: 1},
		factory(nil), zaptest.NewLogger(t))
	require.ErrorIs(t, err, context.Canceled)
}
