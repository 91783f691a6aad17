package cache

import (
	"context"
	"strings"

	"github.com/robalyx/deeplweb/internal/glossary"
	"github.com/robalyx/deeplweb/internal/translator"
	"go.uber.org/zap"
)

// Translator serves repeated requests from the store and only calls the
// underlying translator on a miss. Failed calls are never cached.
type Translator struct {
	inner  *translator.Translator
	store  *Store
	logger *zap.Logger
}

// NewTranslator wraps inner with store.
func NewTranslator(inner *translator.Translator, store *Store, logger *zap.Logger) *Translator {
	return &Translator{
		inner:  inner,
		store:  store,
		logger: logger.Named("cache"),
	}
}

// Translate returns the cached result of req or translates it.
func (t *Translator) Translate(ctx context.Context, req translator.Request) (*translator.Result, error) {
	key := Key("translate",
		t.inner.Profile(),
		req.Text,
		translator.NormalizeLanguage(req.SourceLanguage),
		translator.NormalizeLanguage(req.TargetLanguage),
		req.Formality,
		glossaryFingerprint(req.Glossary))

	var cached translator.Result
	if t.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	v, err := t.share(ctx, key, func(ctx context.Context) (any, error) {
		return t.inner.Translate(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	result := *v.(*translator.Result)
	return &result, nil
}

// Detect returns the cached language of text or detects it.
func (t *Translator) Detect(ctx context.Context, text string) (string, error) {
	key := Key("detect", t.inner.Profile(), text)

	var cached string
	if t.lookup(ctx, key, &cached) {
		return cached, nil
	}

	v, err := t.share(ctx, key, func(ctx context.Context) (any, error) {
		return t.inner.Detect(ctx, text)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// share runs fn once for all concurrent misses on key and caches its result.
// The call is detached from the cancellation of whichever caller started it;
// every caller stops waiting when its own context ends.
func (t *Translator) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := t.store.flight.DoChan(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)

		v, err := fn(callCtx)
		if err != nil {
			return nil, err
		}

		t.save(callCtx, key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			t.logger.Debug("Shared result with a concurrent request")
		}
		return res.Val, res.Err
	}
}

// lookup treats store failures as misses.
func (t *Translator) lookup(ctx context.Context, key string, v any) bool {
	found, err := t.store.Get(ctx, key, v)
	if err != nil {
		t.logger.Warn("Cache lookup failed", zap.Error(err))
		return false
	}
	return found
}

func (t *Translator) save(ctx context.Context, key string, v any) {
	if err := t.store.Set(ctx, key, v); err != nil {
		t.logger.Warn("Failed to cache result", zap.Error(err))
	}
}

// glossaryFingerprint identifies the content of a glossary. Different term
// tables must never share cached translations.
func glossaryFingerprint(g *glossary.Glossary) string {
	if g == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(g.SourceLanguage)
	b.WriteByte('>')
	b.WriteString(g.TargetLanguage)
	for _, entry := range g.Entries {
		b.WriteByte('\n')
		b.WriteString(entry.Source)
		b.WriteByte('\t')
		b.WriteString(entry.Target)
	}
	return b.String()
}
