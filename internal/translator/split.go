package translator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// MethodSplitIntoSentences is the remote sentence splitting method.
const MethodSplitIntoSentences = "LMT_split_into_sentences"

// ErrNoSentences is returned when the remote splitter answers without any
// sentence list.
var ErrNoSentences = errors.New("splitter returned no sentences")

// sentenceBoundary matches sentence-ending punctuation and the whitespace
// after it. The punctuation stays with the preceding sentence.
var sentenceBoundary = regexp.MustCompile(`[.!:?]\s+`)

// Caller dispatches one method call of the JSON-RPC dialect.
type Caller interface {
	Call(ctx context.Context, method string, params, result any) error
}

// Splitter breaks a text into sentence units. The computed language is the
// source language the splitter inferred, or empty when it inferred none.
type Splitter interface {
	Split(ctx context.Context, text, target, source string) (sentences []string, computed string, err error)
}

type splitParams struct {
	Texts []string  `json:"texts"`
	Lang  splitLang `json:"lang"`
}

type splitLang struct {
	LangUserSelected   string   `json:"lang_user_selected"`
	UserPreferredLangs []string `json:"user_preferred_langs"`
}

type splitResult struct {
	SplittedTexts [][]string `json:"splitted_texts"`
	Lang          *string    `json:"lang"`
}

// RemoteSplitter asks the service to split the text.
type RemoteSplitter struct {
	caller    Caller
	preferred []string
}

// NewRemoteSplitter creates a splitter calling the service with the given
// preferred languages.
func NewRemoteSplitter(caller Caller, preferred []string) *RemoteSplitter {
	return &RemoteSplitter{caller: caller, preferred: preferred}
}

// Split implements Splitter.
func (s *RemoteSplitter) Split(ctx context.Context, text, target, source string) ([]string, string, error) {
	params := splitParams{
		Texts: []string{strings.TrimSpace(text)},
		Lang: splitLang{
			LangUserSelected:   source,
			UserPreferredLangs: mergeLanguages(s.preferred, target),
		},
	}

	var result splitResult
	if err := s.caller.Call(ctx, MethodSplitIntoSentences, params, &result); err != nil {
		return nil, "", err
	}

	if len(result.SplittedTexts) == 0 {
		return nil, "", ErrNoSentences
	}

	var computed string
	if result.Lang != nil {
		computed = *result.Lang
	}

	return result.SplittedTexts[0], computed, nil
}

// LocalSplitter splits on sentence-ending punctuation followed by whitespace.
// It never computes a language.
type LocalSplitter struct{}

// Split implements Splitter.
func (LocalSplitter) Split(_ context.Context, text, _, _ string) ([]string, string, error) {
	return SplitSentences(text), "", nil
}

// SplitSentences splits text locally. Blank pieces are dropped.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}

	sentences := make([]string, 0, 4)
	start := 0

	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// Keep the punctuation mark, drop the whitespace.
		if sentence := strings.TrimSpace(text[start : loc[0]+1]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = loc[1]
	}

	if sentence := strings.TrimSpace(text[start:]); sentence != "" {
		sentences = append(sentences, sentence)
	}

	return sentences
}

// FallbackSplitter tries the primary splitter and falls back to the local
// splitter when it fails. Cancellation is never masked.
type FallbackSplitter struct {
	primary Splitter
	local   LocalSplitter
	logger  *zap.Logger
}

// NewFallbackSplitter wraps primary with a local fallback.
func NewFallbackSplitter(primary Splitter, logger *zap.Logger) *FallbackSplitter {
	return &FallbackSplitter{primary: primary, logger: logger}
}

// Split implements Splitter.
func (s *FallbackSplitter) Split(ctx context.Context, text, target, source string) ([]string, string, error) {
	sentences, computed, err := s.primary.Split(ctx, text, target, source)
	if err == nil && len(sentences) > 0 {
		return sentences, computed, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, "", ctxErr
	}

	s.logger.Warn("Remote sentence splitting failed, splitting locally", zap.Error(err))

	return s.local.Split(ctx, text, target, source)
}
