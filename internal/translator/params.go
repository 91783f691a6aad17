package translator

import (
	"strings"
)

// MethodHandleJobs is the job batch translation method.
const MethodHandleJobs = "LMT_handle_jobs"

type handleJobsParams struct {
	Jobs            []Job            `json:"jobs"`
	Lang            jobsLang         `json:"lang"`
	Priority        int              `json:"priority"`
	CommonJobParams *commonJobParams `json:"commonJobParams,omitempty"`
	Timestamp       int64            `json:"timestamp"`
}

type jobsLang struct {
	Preference             preference `json:"preference"`
	SourceLangComputed     string     `json:"source_lang_computed,omitempty"`
	SourceLangUserSelected string     `json:"source_lang_user_selected,omitempty"`
	TargetLang             string     `json:"target_lang"`
	UserPreferredLangs     []string   `json:"user_preferred_langs"`
}

type preference struct {
	Weight  map[string]float64 `json:"weight"`
	Default string             `json:"default"`
}

func defaultPreference() preference {
	return preference{Weight: map[string]float64{}, Default: "default"}
}

type commonJobParams struct {
	BrowserType int      `json:"browserType"`
	Formality   *string  `json:"formality"`
	Mode        string   `json:"mode"`
	Termbase    termbase `json:"termbase"`
}

type termbase struct {
	Dictionary string `json:"dictionary"`
}

type handleJobsResult struct {
	SourceLang   string        `json:"source_lang"`
	Translations []translation `json:"translations"`
}

type translation struct {
	Beams []beam `json:"beams"`
}

type beam struct {
	Sentences []struct {
		Text string `json:"text"`
	} `json:"sentences"`
}

// text joins the top ranked translation of every job with single spaces.
// Empty translations are skipped.
func (r *handleJobsResult) text() string {
	parts := make([]string, 0, len(r.Translations))
	for _, t := range r.Translations {
		if len(t.Beams) == 0 || len(t.Beams[0].Sentences) == 0 {
			continue
		}
		if text := t.Beams[0].Sentences[0].Text; text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
