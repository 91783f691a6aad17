package translator

import (
	"strings"
	"time"
)

// Timestamp computes the timestamp of a job batch. The service checks it
// against the number of "i" characters in the batch: the result is the next
// multiple of that count (plus one) after a 100ms-granular clock reading.
func Timestamp(now time.Time, sentences []string) int64 {
	count := int64(1)
	for _, sentence := range sentences {
		count += int64(strings.Count(sentence, "i"))
	}

	ts := now.UnixMilli()/100*100 + 1000
	return ts + (count - ts%count)
}
