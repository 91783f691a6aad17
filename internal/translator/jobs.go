package translator

// Job layout constants.
const (
	// MaxContextBefore is the number of preceding sentences sent with a job.
	MaxContextBefore = 5
	// DefaultBeamCount is the number of candidate translations requested per job.
	DefaultBeamCount = 4
)

// JobSentence is the sentence a job translates.
type JobSentence struct {
	Text   string `json:"text"`
	ID     int    `json:"id"`
	Prefix string `json:"prefix"`
}

// Job is one sentence along with the sentences around it.
type Job struct {
	Kind              string        `json:"kind"`
	PreferredNumBeams int           `json:"preferred_num_beams"`
	ContextAfter      []string      `json:"raw_en_context_after"`
	ContextBefore     []string      `json:"raw_en_context_before"`
	Sentences         []JobSentence `json:"sentences"`
	Quality           string        `json:"quality,omitempty"`
}

// BuildJobs creates one job per sentence in a single pass. Each job carries up
// to MaxContextBefore preceding sentences, oldest first, and the sentence that
// follows it, if any. A non-empty quality hint is set on every job.
func BuildJobs(sentences []string, quality string) []Job {
	jobs := make([]Job, 0, len(sentences))
	window := make([]string, 0, MaxContextBefore)

	for i, sentence := range sentences {
		if i > 0 {
			if len(window) == MaxContextBefore {
				window = window[1:]
			}
			window = append(window, sentences[i-1])
		}

		after := []string{}
		if i+1 < len(sentences) {
			after = []string{sentences[i+1]}
		}

		jobs = append(jobs, Job{
			Kind:              "default",
			PreferredNumBeams: DefaultBeamCount,
			ContextAfter:      after,
			ContextBefore:     append([]string{}, window...),
			Sentences:         []JobSentence{{Text: sentence}},
			Quality:           quality,
		})
	}

	return jobs
}
