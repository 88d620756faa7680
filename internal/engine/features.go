// Package engine scores startup ideas with deterministic text heuristics:
// a submission validator, an eight-part evaluator, a SWOT generator and a
// keyword similarity ranker. Every function is pure and safe for concurrent use.
package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	nonWordRe       = regexp.MustCompile(`[^\w\s]`)
	sentenceBreakRe = regexp.MustCompile(`[.!?]+`)
	wordRe          = regexp.MustCompile(`\b\w+\b`)
	urlPrefixRe     = regexp.MustCompile(`(?i)^https?://`)
	digitRe         = regexp.MustCompile(`\d`)

	placeholderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)lorem\s+ipsum`),
		regexp.MustCompile(`(?i)^test$`),
		regexp.MustCompile(`(?i)^asdf$`),
		regexp.MustCompile(`(?i)^qwerty$`),
		regexp.MustCompile(`^12345+$`),
	}
)

// Keywords lowercases text, strips punctuation and returns up to limit
// tokens longer than two characters that are not stop words. Input order and
// duplicates are kept.
func Keywords(text string, limit int) []string {
	if text == "" || limit <= 0 {
		return nil
	}
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(text), " ")

	var out []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := StopWords[word]; stop {
			continue
		}
		out = append(out, word)
		if len(out) == limit {
			break
		}
	}
	return out
}

// SentenceCount counts non-empty segments between runs of '.', '!' and '?'.
func SentenceCount(s string) int {
	if s == "" {
		return 0
	}
	n := 0
	for _, seg := range sentenceBreakRe.Split(s, -1) {
		if seg != "" {
			n++
		}
	}
	return n
}

// WordCount counts runs of ASCII word characters.
func WordCount(s string) int {
	return len(wordRe.FindAllStringIndex(s, -1))
}

// AvgSentenceLength is words per sentence; text without sentences counts as
// a single unit.
func AvgSentenceLength(s string) float64 {
	sc := SentenceCount(s)
	wc := WordCount(s)
	if sc == 0 {
		return float64(wc)
	}
	return float64(wc) / float64(sc)
}

// HasRepeatedChars reports a run of four or more identical ASCII letters or digits.
func HasRepeatedChars(s string) bool {
	run := 0
	var prev byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isASCIIAlnum(c) {
			run = 0
			continue
		}
		if run > 0 && c == prev {
			run++
		} else {
			run = 1
		}
		prev = c
		if run >= 4 {
			return true
		}
	}
	return false
}

func isASCIIAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// IsURLOnly reports a bare http(s) link with fewer than three tokens.
func IsURLOnly(s string) bool {
	t := strings.TrimSpace(s)
	return urlPrefixRe.MatchString(t) && len(strings.Fields(t)) < 3
}

// IsPlaceholder reports lorem ipsum, test, asdf, qwerty or 12345-style filler.
func IsPlaceholder(s string) bool {
	t := strings.TrimSpace(s)
	for _, re := range placeholderPatterns {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

// AlphaRatio is the fraction of runes that are ASCII Latin letters. Letters
// and the total are both counted in runes.
func AlphaRatio(s string) float64 {
	letters, total := 0, 0
	for _, r := range s {
		total++
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// LengthQuality buckets the trimmed length of text: empty 0, below min 0.2,
// below good 0.7, otherwise 1.
func LengthQuality(text string, min, good int) float64 {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n <= 0:
		return 0
	case n < min:
		return 0.2
	case n < good:
		return 0.7
	default:
		return 1
	}
}

func hasDigit(s string) bool {
	return digitRe.MatchString(s)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
