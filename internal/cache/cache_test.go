package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"github.com/robalyx/deeplweb/internal/cache"
	"github.com/robalyx/deeplweb/internal/glossary"
	"github.com/robalyx/deeplweb/internal/translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupStore(t *testing.T) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return cache.NewStore(client, client, time.Hour, zaptest.NewLogger(t)), mr
}

// countingCaller answers every job batch with the same translation.
type countingCaller struct {
	calls atomic.Int32
}

func (c *countingCaller) Call(_ context.Context, method string, _, result any) error {
	c.calls.Add(1)

	var body string
	switch method {
	case translator.MethodHandleJobs:
		body = `{"source_lang":"EN","translations":[{"beams":[{"sentences":[{"text":"Bonjour."}]}]}]}`
	default:
		body = `{"splitted_texts":[["Hello."]],"lang":"EN"}`
	}
	return sonic.UnmarshalString(body, result)
}

// blockingCaller holds every job batch until release is closed.
type blockingCaller struct {
	countingCaller
	entered chan struct{}
	release chan struct{}
}

func (c *blockingCaller) Call(ctx context.Context, method string, params, result any) error {
	if method == translator.MethodHandleJobs {
		c.entered <- struct{}{}
		<-c.release
	}
	return c.countingCaller.Call(ctx, method, params, result)
}

func TestKey(t *testing.T) {
	t.Parallel()

	a := cache.Key("translate", "Hello.", "EN", "FR")
	b := cache.Key("translate", "Hello.", "EN", "DE")
	c := cache.Key("translate", "Hello.E", "N", "FR")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, cache.Key("translate", "Hello.", "EN", "FR"))
	assert.Len(t, a, len("deeplweb:translate:")+64)
}

func TestStore(t *testing.T) {
	t.Parallel()

	store, mr := setupStore(t)
	ctx := t.Context()

	var value translator.Result
	found, err := store.Get(ctx, "deeplweb:test", &value)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "deeplweb:test", translator.Result{SourceLanguage: "EN", Text: "Bonjour."}))
	assert.Equal(t, time.Hour, mr.TTL("deeplweb:test"))

	found, err = store.Get(ctx, "deeplweb:test", &value)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, translator.Result{SourceLanguage: "EN", Text: "Bonjour."}, value)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, cache.Stats{Hits: 1, Misses: 1}, stats)
}

func TestStoreEmptyStats(t *testing.T) {
	t.Parallel()

	store, _ := setupStore(t)

	stats, err := store.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, cache.Stats{}, stats)
}

func TestTranslator(t *testing.T) {
	t.Parallel()

	store, _ := setupStore(t)
	caller := &countingCaller{}
	tr := cache.NewTranslator(
		translator.New(caller, zaptest.NewLogger(t), translator.WithSplitter(translator.LocalSplitter{})),
		store, zaptest.NewLogger(t))

	req := translator.Request{Text: "Hello.", SourceLanguage: "en", TargetLanguage: "fr"}

	first, err := tr.Translate(t.Context(), req)
	require.NoError(t, err)
	second, err := tr.Translate(t.Context(), translator.Request{Text: "Hello.", SourceLanguage: "EN", TargetLanguage: "FR"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), caller.calls.Load())

	g, err := glossary.New("EN", "FR", []glossary.Entry{{Source: "Hello", Target: "Salut"}})
	require.NoError(t, err)

	req.Glossary = g
	_, err = tr.Translate(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), caller.calls.Load())

	for range 2 {
		lang, err := tr.Detect(t.Context(), "Hello.")
		require.NoError(t, err)
		assert.Equal(t, "EN", lang)
	}
	assert.Equal(t, int32(3), caller.calls.Load())
}

func TestTranslatorSharesConcurrentMisses(t *testing.T) {
	t.Parallel()

	store, _ := setupStore(t)
	caller := &blockingCaller{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	logger := zaptest.NewLogger(t)

	// Two sessions sharing one store, as batch workers do
	first := cache.NewTranslator(
		translator.New(caller, logger, translator.WithSplitter(translator.LocalSplitter{})), store, logger)
	second := cache.NewTranslator(
		translator.New(caller, logger, translator.WithSplitter(translator.LocalSplitter{})), store, logger)

	req := translator.Request{Text: "Hello.", SourceLanguage: "EN", TargetLanguage: "FR"}

	var wg sync.WaitGroup
	results := make([]*translator.Result, 2)
	for i, tr := range []*cache.Translator{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := tr.Translate(t.Context(), req)
			assert.NoError(t, err)
			results[i] = result
		}()
	}

	<-caller.entered
	time.Sleep(100 * time.Millisecond)
	close(caller.release)
	wg.Wait()

	assert.Equal(t, int32(1), caller.calls.Load())
	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, "Bonjour.", results[0].Text)
	assert.Equal(t, results[0], results[1])
	assert.NotSame(t, results[0], results[1])
}

func TestTranslatorSharedCallOutlivesCancelledCaller(t *testing.T) {
	t.Parallel()

	store, _ := setupStore(t)
	caller := &blockingCaller{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	logger := zaptest.NewLogger(t)
	tr := cache.NewTranslator(
		translator.New(caller, logger, translator.WithSplitter(translator.LocalSplitter{})), store, logger)

	req := translator.Request{Text: "Hello.", SourceLanguage: "EN", TargetLanguage: "FR"}

	firstCtx, cancel := context.WithCancel(t.Context())
	firstErr := make(chan error, 1)
	go func() {
		_, err := tr.Translate(firstCtx, req)
		firstErr <- err
	}()
	<-caller.entered

	secondResult := make(chan *translator.Result, 1)
	go func() {
		result, err := tr.Translate(t.Context(), req)
		assert.NoError(t, err)
		secondResult <- result
	}()
	time.Sleep(100 * time.Millisecond)

	// The caller that started the call gives up, the other one keeps waiting
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(caller.release)
	result := <-secondResult
	require.NotNil(t, result)
	assert.Equal(t, "Bonjour.", result.Text)
	assert.Equal(t, int32(1), caller.calls.Load())

	// The detached call was cached for later requests
	cached, err := tr.Translate(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, result, cached)
	assert.Equal(t, int32(1), caller.calls.Load())
}

func TestTranslatorKeysIncludeProfile(t *testing.T) {
	t.Parallel()

	store, _ := setupStore(t)
	caller := &countingCaller{}
	logger := zaptest.NewLogger(t)
	local := translator.WithSplitter(translator.LocalSplitter{})

	translators := []*cache.Translator{
		cache.NewTranslator(translator.New(caller, logger, local), store, logger),
		cache.NewTranslator(translator.New(caller, logger, local, translator.WithQuality("fast")), store, logger),
		cache.NewTranslator(translator.New(caller, logger, local, translator.WithPreferredLanguages("DE")), store, logger),
		cache.NewTranslator(translator.New(caller, logger), store, logger),
	}

	req := translator.Request{Text: "Hello.", SourceLanguage: "EN", TargetLanguage: "FR"}
	for _, tr := range translators {
		_, err := tr.Translate(t.Context(), req)
		require.NoError(t, err)
	}

	// Three local splits go straight to the job call, the remote splitter adds a split call
	assert.Equal(t, int32(5), caller.calls.Load())

	// Same options share the entries
	again := cache.NewTranslator(translator.New(caller, logger, local, translator.WithQuality("fast")), store, logger)
	_, err := again.Translate(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(5), caller.calls.Load())
}
