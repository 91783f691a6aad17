package glossary

import (
	"fmt"
	"strings"

	"github.com/robalyx/deeplweb/internal/rpc"
)

// MaxTerms is the number of glossary pairs the service accepts per call.
const MaxTerms = 10

// quote cannot appear in a termbase pair.
const quote = `"`

// Warning describes a glossary entry that was left out of a termbase.
type Warning struct {
	Source string
	Target string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (%q -> %q)", w.Reason, w.Source, w.Target)
}

// Reasons reported in warnings.
const (
	WarnQuoted       = "pair contains a quote and was ignored"
	WarnLimitReached = "termbase limit reached, remaining pairs were ignored"
)

// BuildTermbase serializes the glossary entries whose source term occurs in
// text as tab separated lines. A nil glossary yields an empty termbase. The
// glossary must have been declared for the source and target of the call.
func BuildTermbase(g *Glossary, text, source, target string) (string, []Warning, error) {
	if g == nil {
		return "", nil, nil
	}

	if !g.Matches(source, target) {
		return "", nil, rpc.NewError(rpc.CodeGlossaryLanguageMismatch, "")
	}

	var (
		b        strings.Builder
		warnings []Warning
		count    int
	)

	for _, entry := range g.Entries {
		if entry.Source == "" || !strings.Contains(text, entry.Source) {
			continue
		}

		if count == MaxTerms {
			warnings = append(warnings, Warning{Source: entry.Source, Target: entry.Target, Reason: WarnLimitReached})
			break
		}

		if strings.Contains(entry.Source, quote) || strings.Contains(entry.Target, quote) {
			warnings = append(warnings, Warning{Source: entry.Source, Target: entry.Target, Reason: WarnQuoted})
			continue
		}

		b.WriteString(entry.Source)
		b.WriteByte('\t')
		b.WriteString(entry.Target)
		b.WriteByte('\n')
		count++
	}

	termbase := strings.ReplaceAll(b.String(), "\"\t\"\n", "")
	termbase = strings.TrimSuffix(termbase, "\n")

	return termbase, warnings, nil
}
