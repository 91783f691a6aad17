package glossary

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robalyx/deeplweb/internal/rpc"
)

// ErrNotFound is returned when the glossary file cannot be read.
var ErrNotFound = errors.New("could not read glossary file")

// File is the on-disk layout of a glossary:
//
//	source_language = "EN"
//	target_language = "FR"
//
//	[[terms]]
//	source = "cloud"
//	target = "nuage"
type File struct {
	SourceLanguage string `koanf:"source_language"`
	TargetLanguage string `koanf:"target_language"`
	Terms          []Term `koanf:"terms"`
}

// Term is a single row of a glossary file.
type Term struct {
	Source string `koanf:"source"`
	Target string `koanf:"target"`
}

// Load reads and validates a glossary file. Files missing their language
// header or holding incomplete rows are rejected as malformed.
func Load(path string) (*Glossary, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}

	var gf File
	if err := k.Unmarshal("", &gf); err != nil {
		return nil, fmt.Errorf("error unmarshaling glossary: %w", err)
	}

	if strings.TrimSpace(gf.SourceLanguage) == "" || strings.TrimSpace(gf.TargetLanguage) == "" {
		return nil, rpc.NewError(rpc.CodeGlossaryHeader, "")
	}

	entries := make([]Entry, 0, len(gf.Terms))
	for i, term := range gf.Terms {
		if term.Source == "" || term.Target == "" {
			return nil, rpc.NewError(rpc.CodeGlossaryHeader,
				fmt.Sprintf("Invalid glossary: term %d is missing its source or target.", i+1))
		}

		entries = append(entries, Entry{Source: term.Source, Target: term.Target})
	}

	return New(gf.SourceLanguage, gf.TargetLanguage, entries)
}
