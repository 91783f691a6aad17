package translator

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Auto asks the service to detect the source language.
const Auto = "AUTO"

// NormalizeLanguage turns a language code into the upper case base language
// the service expects, so "zh-CN" becomes "ZH" and "en_us" becomes "EN".
// Empty codes and "auto" in any case normalize to Auto. Codes that do not parse are
// upper cased as they are.
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, Auto) {
		return Auto
	}

	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return strings.ToUpper(code)
	}

	base, _ := tag.Base()
	return strings.ToUpper(base.String())
}

// mergeLanguages appends every extra language missing from base. Empty codes
// and Auto are skipped.
func mergeLanguages(base []string, extra ...string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	for _, code := range slices.Concat(base, extra) {
		if code == "" || strings.EqualFold(code, Auto) || slices.Contains(merged, code) {
			continue
		}
		merged = append(merged, code)
	}
	return merged
}
