// Package translator turns texts into job batches for the web translator and
// reads the translations back.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalyx/deeplweb/internal/glossary"
	"go.uber.org/zap"
)

var (
	// ErrMissingTarget is returned when a request names no target language.
	ErrMissingTarget = errors.New("target language is required")
	// ErrNoLanguage is returned when the service reports no source language.
	ErrNoLanguage = errors.New("no language detected")
	// ErrEmptyText is returned when there is nothing to detect a language of.
	ErrEmptyText = errors.New("text is empty")
)

// Languages used for language detection.
const (
	detectSplitTarget = "EN"
	detectTarget      = "FR"
)

// Request describes one translation.
type Request struct {
	Text           string
	SourceLanguage string // empty or Auto to detect
	TargetLanguage string
	Formality      string // empty to leave unset
	Glossary       *glossary.Glossary
}

// Result is the outcome of a translation.
type Result struct {
	SourceLanguage string
	Text           string
}

// Option configures a Translator.
type Option func(*Translator)

// WithSplitter replaces the default remote splitter with local fallback.
func WithSplitter(splitter Splitter) Option {
	return func(t *Translator) {
		t.splitter = splitter
	}
}

// WithQuality sets the quality hint attached to every job.
func WithQuality(quality string) Option {
	return func(t *Translator) {
		t.quality = quality
	}
}

// WithPreferredLanguages sets the languages reported as preferred by the user.
func WithPreferredLanguages(languages ...string) Option {
	return func(t *Translator) {
		normalized := make([]string, 0, len(languages))
		for _, lang := range languages {
			normalized = append(normalized, NormalizeLanguage(lang))
		}
		t.preferred = mergeLanguages(normalized)
	}
}

// WithClock sets the clock used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Translator) {
		t.now = now
	}
}

// Translator translates texts over one caller. It holds no per-call state, so
// sharing it shares the caller's serialization and rate limit.
type Translator struct {
	caller    Caller
	splitter  Splitter
	quality   string
	preferred []string
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a Translator dispatching through caller.
func New(caller Caller, logger *zap.Logger, opts ...Option) *Translator {
	t := &Translator{
		caller:    caller,
		preferred: []string{"EN", "FR"},
		now:       time.Now,
		logger:    logger.Named("translator"),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.splitter == nil {
		t.splitter = NewFallbackSplitter(NewRemoteSplitter(caller, t.preferred), t.logger)
	}

	return t
}

// Profile identifies the options that shape what the translator returns.
// Translators with different profiles may answer the same request
// differently.
func (t *Translator) Profile() string {
	return fmt.Sprintf("%T|%s|%s", t.splitter, t.quality, strings.Join(t.preferred, ","))
}

// Translate translates the request text. Glossary configuration errors are
// reported before anything is sent.
func (t *Translator) Translate(ctx context.Context, req Request) (*Result, error) {
	target := NormalizeLanguage(req.TargetLanguage)
	if target == Auto {
		return nil, ErrMissingTarget
	}
	source := NormalizeLanguage(req.SourceLanguage)

	dictionary, warnings, err := glossary.BuildTermbase(req.Glossary, req.Text, source, target)
	if err != nil {
		return nil, err
	}
	for _, warning := range warnings {
		t.logger.Warn("Glossary entry ignored", zap.Stringer("entry", warning))
	}

	if strings.TrimSpace(req.Text) == "" {
		return &Result{SourceLanguage: source}, nil
	}

	sentences, computed, err := t.splitter.Split(ctx, req.Text, target, source)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	params := handleJobsParams{
		Jobs: BuildJobs(sentences, t.quality),
		Lang: jobsLang{
			Preference:         defaultPreference(),
			TargetLang:         target,
			UserPreferredLangs: mergeLanguages(t.preferred, target),
		},
		Priority: 1,
		CommonJobParams: &commonJobParams{
			BrowserType: 1,
			Mode:        "translate",
			Termbase:    termbase{Dictionary: dictionary},
		},
		Timestamp: Timestamp(t.now(), sentences),
	}

	if req.Formality != "" {
		params.CommonJobParams.Formality = &req.Formality
	}

	switch {
	case source != Auto:
		params.Lang.SourceLangComputed = source
		params.Lang.SourceLangUserSelected = source
	case computed != "":
		params.Lang.SourceLangComputed = computed
		params.Lang.UserPreferredLangs = mergeLanguages(params.Lang.UserPreferredLangs, computed)
	default:
		params.Lang.SourceLangUserSelected = Auto
	}

	var result handleJobsResult
	if err := t.caller.Call(ctx, MethodHandleJobs, params, &result); err != nil {
		return nil, err
	}

	detected := result.SourceLang
	if detected == "" {
		detected = source
		if source == Auto && computed != "" {
			detected = computed
		}
	}

	t.logger.Debug("Translated text",
		zap.String("source", detected),
		zap.String("target", target),
		zap.Int("sentences", len(sentences)))

	return &Result{SourceLanguage: detected, Text: result.text()}, nil
}

// Detect returns the language the service detects for text.
func (t *Translator) Detect(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	sentences, computed, err := t.splitter.Split(ctx, text, detectSplitTarget, Auto)
	if err != nil {
		return "", fmt.Errorf("failed to split text: %w", err)
	}

	params := handleJobsParams{
		Jobs: BuildJobs(sentences, t.quality),
		Lang: jobsLang{
			Preference:         defaultPreference(),
			TargetLang:         detectTarget,
			UserPreferredLangs: []string{detectTarget},
		},
		Priority:  1,
		Timestamp: Timestamp(t.now(), sentences),
	}

	if computed != "" {
		params.Lang.SourceLangComputed = computed
		params.Lang.UserPreferredLangs = mergeLanguages(params.Lang.UserPreferredLangs, computed)
	} else {
		params.Lang.SourceLangUserSelected = Auto
	}

	var result handleJobsResult
	if err := t.caller.Call(ctx, MethodHandleJobs, params, &result); err != nil {
		return "", err
	}

	if result.SourceLang == "" {
		return "", ErrNoLanguage
	}

	return result.SourceLang, nil
}

// TranslateText translates text without a glossary and reports failures as
// ok == false instead of an error, letting the caller move on to another
// provider.
func (t *Translator) TranslateText(ctx context.Context, text, target, source string) (sourceLang, translated string, ok bool) {
	result, err := t.Translate(ctx, Request{
		Text:           text,
		SourceLanguage: source,
		TargetLanguage: target,
	})
	if err != nil {
		t.logger.Warn("Translation failed", zap.String("target", target), zap.Error(err))
		return "", "", false
	}

	return result.SourceLanguage, result.Text, true
}

// DetectLanguage detects the language of text and reports failures as
// ok == false instead of an error.
func (t *Translator) DetectLanguage(ctx context.Context, text string) (string, bool) {
	lang, err := t.Detect(ctx, text)
	if err != nil {
		t.logger.Warn("Language detection failed", zap.Error(err))
		return "", false
	}

	return lang, true
}
