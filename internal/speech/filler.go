package speech

import (
	"strings"
	"unicode"
)

// fillers are the hesitation tokens counted against delivery.
var fillers = map[string]struct{}{
	"um": {}, "uh": {}, "uhm": {}, "umm": {}, "erm": {},
	"er": {}, "ah": {}, "hmm": {}, "mm": {}, "mhm": {},
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	}))
}

// IsFiller reports whether a token is a filler word, ignoring case and
// surrounding punctuation.
func IsFiller(word string) bool {
	_, ok := fillers[normalizeWord(word)]
	return ok
}

// CountFillers counts filler tokens in a whitespace-separated transcript.
func CountFillers(words []string) int {
	n := 0
	for _, w := range words {
		if IsFiller(w) {
			n++
		}
	}
	return n
}

// CleanTranscript drops filler words and collapses whitespace.
func CleanTranscript(raw string) string {
	fields := strings.Fields(raw)
	kept := fields[:0]
	for _, w := range fields {
		if !IsFiller(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
