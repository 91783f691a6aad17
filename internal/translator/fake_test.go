package translator_test

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/robalyx/deeplweb/internal/translator"
)

// call is a recorded method call with its params decoded as generic JSON.
type call struct {
	Method string
	Params map[string]any
}

// fakeCaller answers method calls from a table of canned results.
type fakeCaller struct {
	mu      sync.Mutex
	results map[string]any
	errs    map[string]error
	calls   []call
}

var _ translator.Caller = (*fakeCaller)(nil)

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		results: make(map[string]any),
		errs:    make(map[string]error),
	}
}

func (f *fakeCaller) Call(_ context.Context, method string, params, result any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := sonic.Marshal(params)
	if err != nil {
		return err
	}

	var decoded map[string]any
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	f.calls = append(f.calls, call{Method: method, Params: decoded})

	if err := f.errs[method]; err != nil {
		return err
	}

	data, err := sonic.Marshal(f.results[method])
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, result)
}

func (f *fakeCaller) recorded(method string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []call
	for _, c := range f.calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

func splitResponse(lang any, sentences ...string) map[string]any {
	return map[string]any{
		"splitted_texts": [][]string{sentences},
		"lang":           lang,
	}
}

func jobsResponse(sourceLang string, texts ...string) map[string]any {
	translations := make([]any, 0, len(texts))
	for _, text := range texts {
		translations = append(translations, map[string]any{
			"beams": []any{
				map[string]any{"sentences": []any{map[string]any{"text": text}}},
			},
		})
	}
	return map[string]any{
		"source_lang":  sourceLang,
		"translations": translations,
	}
}
