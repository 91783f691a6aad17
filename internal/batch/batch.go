// Package batch translates many texts in parallel, one session per worker.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/deeplweb/internal/glossary"
	"github.com/robalyx/deeplweb/internal/rpc"
	"github.com/robalyx/deeplweb/internal/translator"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrNoWorkers is returned when a batch is started without workers.
var ErrNoWorkers = errors.New("at least one worker is required")

// Translator is what a worker translates with.
type Translator interface {
	Translate(ctx context.Context, req translator.Request) (*translator.Result, error)
}

// Factory opens the session of one worker.
type Factory func(ctx context.Context, worker int) Translator

// Options describe the translation applied to every text of a batch.
type Options struct {
	SourceLanguage string
	TargetLanguage string
	Formality      string
	Glossary       *glossary.Glossary
	Workers        int
}

// Item is the outcome for one input text. Err is set when the text could not
// be translated; the rest of the batch is unaffected.
type Item struct {
	Index  int
	Text   string
	Result *translator.Result
	Err    error
}

// Run translates texts with opts.Workers workers and returns the items in
// input order. Each worker owns its translator, so workers never share a
// session or its rate limit. Glossary configuration errors abort the batch.
func Run(ctx context.Context, texts []string, opts Options, factory Factory, logger *zap.Logger) ([]Item, error) {
	if opts.Workers <= 0 {
		return nil, ErrNoWorkers
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make([]Item, len(texts))
	queue := make(chan int)

	p := pool.New().WithContext(ctx)

	for worker := range min(opts.Workers, max(len(texts), 1)) {
		p.Go(func(ctx context.Context) error {
			tr := factory(ctx, worker)

			for index := range queue {
				result, err := tr.Translate(ctx, translator.Request{
					Text:           texts[index],
					SourceLanguage: opts.SourceLanguage,
					TargetLanguage: opts.TargetLanguage,
					Formality:      opts.Formality,
					Glossary:       opts.Glossary,
				})

				items[index] = Item{Index: index, Text: texts[index], Result: result, Err: err}

				if err != nil {
					logger.Warn("Failed to translate text",
						zap.Int("worker", worker),
						zap.Int("index", index),
						zap.Error(err))

					if errors.Is(err, context.Canceled) || rpc.IsConfigError(err) {
						cancel()
						return err
					}
				}
			}

			return nil
		})
	}

	// Feed the workers until the texts run out or the batch is cancelled
	var feedErr error
feed:
	for index := range texts {
		select {
		case queue <- index:
		case <-ctx.Done():
			feedErr = ctx.Err()
			break feed
		}
	}
	close(queue)

	if err := p.Wait(); err != nil {
		return items, fmt.Errorf("batch stopped: %w", err)
	}

	if feedErr != nil {
		return items, fmt.Errorf("batch stopped: %w", feedErr)
	}

	return items, nil
}
