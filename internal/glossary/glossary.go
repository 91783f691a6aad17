// Package glossary validates user-supplied term tables and turns the terms
// found in a text into the termbase override sent with a translation call.
package glossary

import (
	"slices"
	"strings"

	"github.com/robalyx/deeplweb/internal/rpc"
)

// pairing lists the targets a glossary source language can be combined with,
// and the error code raised when the target is not one of them.
type pairing struct {
	code    int
	targets []string
}

var pairings = map[string]pairing{
	"EN": {rpc.CodeGlossaryCombinationEN, []string{"FR", "DE", "ES", "IT", "PL", "JA", "NL"}},
	"FR": {rpc.CodeGlossaryCombinationFR, []string{"EN", "DE", "ES", "IT", "PL", "JA", "NL"}},
	"DE": {rpc.CodeGlossaryCombinationDE, []string{"EN", "FR", "ES", "IT", "PL", "JA", "NL"}},
	"ES": {rpc.CodeGlossaryCombinationES, []string{"EN", "FR", "DE", "IT", "PL", "JA", "NL"}},
	"IT": {rpc.CodeGlossaryCombinationIT, []string{"EN", "FR", "DE", "ES", "PL", "JA", "NL"}},
	"PL": {rpc.CodeGlossaryCombinationPL, []string{"EN", "FR", "DE", "ES", "IT", "JA", "NL"}},
	"JA": {rpc.CodeGlossaryCombinationJA, []string{"EN", "FR", "DE", "ES", "IT", "PL", "NL"}},
	"NL": {rpc.CodeGlossaryCombinationNL, []string{"EN", "FR", "DE", "ES", "IT", "PL", "JA"}},
}

// Entry is a single source term and its forced translation.
type Entry struct {
	Source string
	Target string
}

// Glossary is a validated term table for one language pair.
type Glossary struct {
	SourceLanguage string
	TargetLanguage string
	Entries        []Entry
	// Duplicates counts source terms that appeared more than once. Only the
	// last occurrence of each is kept.
	Duplicates int
}

// New validates the language pair and returns a glossary whose entries are
// sorted by source term.
func New(sourceLanguage, targetLanguage string, entries []Entry) (*Glossary, error) {
	source := strings.ToUpper(strings.TrimSpace(sourceLanguage))
	target := strings.ToUpper(strings.TrimSpace(targetLanguage))

	if err := ValidatePair(source, target); err != nil {
		return nil, err
	}

	// Keep the last occurrence of every source term
	last := make(map[string]int, len(entries))
	for i, entry := range entries {
		last[entry.Source] = i
	}

	kept := make([]Entry, 0, len(last))
	for i, entry := range entries {
		if last[entry.Source] == i {
			kept = append(kept, entry)
		}
	}

	slices.SortStableFunc(kept, func(a, b Entry) int {
		return strings.Compare(a.Source, b.Source)
	})

	return &Glossary{
		SourceLanguage: source,
		TargetLanguage: target,
		Entries:        kept,
		Duplicates:     len(entries) - len(kept),
	}, nil
}

// ValidatePair checks that a glossary may translate from source to target.
// Both codes are expected in upper case.
func ValidatePair(source, target string) error {
	p, ok := pairings[source]
	if !ok {
		return rpc.NewError(rpc.CodeGlossaryLanguage, "")
	}

	if source == target {
		return rpc.NewError(rpc.CodeGlossarySameLanguage, "")
	}

	if !slices.Contains(p.targets, target) {
		return rpc.NewError(p.code, "")
	}

	return nil
}

// Matches reports whether the glossary was declared for the given call languages.
func (g *Glossary) Matches(source, target string) bool {
	return strings.EqualFold(g.SourceLanguage, source) && strings.EqualFold(g.TargetLanguage, target)
}
